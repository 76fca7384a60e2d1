package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"recipe-finder/internal/core/diet"
	"recipe-finder/internal/core/diet/wikidata"

	"github.com/spf13/cobra"
)

var classifyOut string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label every recipe as vegetarian or non vegetarian and export a snapshot",
	Long: `Runs one classification pass over the record store using the external knowledge
base and writes name,_id,diet_web_verified to a CSV snapshot.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyOut, "out", "o", "", "snapshot path (defaults to <output_dir>/"+diet.DefaultFilename+")")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	path := classifyOut
	if path == "" {
		if err := os.MkdirAll(cfg.Classification.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		path = filepath.Join(cfg.Classification.OutputDir, diet.DefaultFilename)
	}

	pipeline := diet.NewPipeline(source, func() diet.KnowledgeBase {
		return wikidata.NewClient(cfg.Wikidata)
	}, cfg.Classification)

	report, err := pipeline.Run(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s in %s\n", report.Rows, report.Path, report.Duration.Round(time.Millisecond))
	for _, label := range []diet.Label{diet.LabelVegetarian, diet.LabelNonVegetarian, diet.LabelUnknown} {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-15s %d\n", label, report.Labels[label])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  external calls  %d (failures %d, cache hits %d)\n",
		report.Stats.ExternalCalls, report.Stats.Failures, report.Stats.Cache.Hits)
	return nil
}
