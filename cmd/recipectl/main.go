package main

import (
	"fmt"
	"os"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/infrastructure/store"
	"recipe-finder/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "recipectl",
	Short: "Operator tooling for the recipe finder",
	Long: `recipectl runs offline jobs against the configured recipe store:
a full diet classification run with snapshot export, and data quality audits
written as xlsx reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if err := common.InitLogger(loaded.LogLevel, loaded.LogDir); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		common.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// openSource 開啟設定中的資料來源，呼叫端負責關閉
func openSource() (recipe.Source, func(), error) {
	source, closeStore, err := store.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open record source: %w", err)
	}
	return source, func() {
		if err := closeStore(); err != nil {
			common.LogWarn("Failed to close record source", zap.Error(err))
		}
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
