package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recipe-finder/internal/core/audit"
	"recipe-finder/internal/core/recipe"

	"github.com/spf13/cobra"
)

var (
	auditColumn    string
	auditThreshold int
	auditLimit     int
	auditOutDir    string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Data quality reports over the record store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if auditOutDir == "" {
			auditOutDir = cfg.Audit.OutputDir
		}
		return os.MkdirAll(auditOutDir, 0o755)
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List rows sharing the exact same value in a column",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		dups, err := audit.ExactDuplicates(ds, auditColumn)
		if err != nil {
			return err
		}
		path := filepath.Join(auditOutDir, audit.DuplicatesFile)
		if err := audit.WriteDuplicates(path, ds.Columns, dups); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d duplicate rows written to %s\n", len(dups), path)
		return nil
	},
}

var closeMatchesCmd = &cobra.Command{
	Use:   "close-matches",
	Short: "List near duplicate names scored by token set similarity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		if missing := ds.MissingColumns(auditColumn); len(missing) > 0 {
			return &recipe.SchemaError{Missing: missing}
		}

		values := make([]string, len(ds.Rows))
		for i, row := range ds.Rows {
			values[i] = recipe.Text(row[auditColumn])
		}

		threshold, limit := auditThreshold, auditLimit
		if !cmd.Flags().Changed("threshold") {
			threshold = cfg.Audit.Threshold
		}
		if !cmd.Flags().Changed("limit") {
			limit = cfg.Audit.Limit
		}

		matches := audit.CloseMatches(values, threshold, limit)
		path := filepath.Join(auditOutDir, audit.CloseMatchesFile)
		if err := audit.WriteCloseMatches(path, matches); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d close matches written to %s\n", len(matches), path)
		return nil
	},
}

var foreignCmd = &cobra.Command{
	Use:   "foreign",
	Short: "List rows whose name or ingredients contain non latin letters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		flagged, err := audit.DetectForeign(ds)
		if err != nil {
			return err
		}
		path := filepath.Join(auditOutDir, audit.ForeignFile)
		if err := audit.WriteForeign(path, ds.Columns, flagged); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows flagged, written to %s\n", len(flagged), path)
		return nil
	},
}

func init() {
	auditCmd.PersistentFlags().StringVar(&auditOutDir, "out-dir", "", "report directory (defaults to audit.output_dir)")
	duplicatesCmd.Flags().StringVar(&auditColumn, "column", recipe.ColumnName, "column to compare")
	closeMatchesCmd.Flags().StringVar(&auditColumn, "column", recipe.ColumnName, "column to compare")
	closeMatchesCmd.Flags().IntVar(&auditThreshold, "threshold", audit.DefaultThreshold, "minimum similarity score (0-100)")
	closeMatchesCmd.Flags().IntVar(&auditLimit, "limit", audit.DefaultLimit, "number of leading rows to compare")

	auditCmd.AddCommand(duplicatesCmd, closeMatchesCmd, foreignCmd)
	rootCmd.AddCommand(auditCmd)
}

func loadDataset() (recipe.Dataset, error) {
	source, closeSource, err := openSource()
	if err != nil {
		return recipe.Dataset{}, err
	}
	defer closeSource()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return source.Load(ctx)
}
