package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/healthbite/backend/internal/recommender"
	"github.com/healthbite/backend/internal/seeder"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	recipesTable      string
	recipesOut        string
	recipesDryRun     bool
	recipesDelay      time.Duration
	recipesConcurrent int
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Fill empty recipe descriptions from their linked pages",
	Long: `Visit every recipe link in the table and fill empty descriptions from the
page's og:description, meta description or first paragraph. The enriched
table is written to --out (the input file when --out is empty).`,
	RunE: runRecipes,
}

func init() {
	rootCmd.AddCommand(recipesCmd)

	recipesCmd.Flags().StringVarP(&recipesTable, "table", "t", "data/food_recommendations.json", "Recommendation table to enrich")
	recipesCmd.Flags().StringVarP(&recipesOut, "out", "o", "", "Output path (default: overwrite --table)")
	recipesCmd.Flags().BoolVar(&recipesDryRun, "dry-run", false, "Fetch pages and report, but don't write the table")
	recipesCmd.Flags().DurationVar(&recipesDelay, "delay", 2*time.Second, "Delay between requests")
	recipesCmd.Flags().IntVar(&recipesConcurrent, "concurrent", 2, "Number of concurrent requests")
}

func runRecipes(cmd *cobra.Command, args []string) error {
	logger := utils.GetLogger()

	table, err := recommender.LoadTable(cmd.Context(), recipesTable, 30*time.Second, logger)
	if err != nil {
		return err
	}

	enricher := seeder.NewEnricher(seeder.Options{
		Concurrent: recipesConcurrent,
		Delay:      recipesDelay,
	}, logger)

	enriched, report, err := enricher.Enrich(table)
	if err != nil {
		return fmt.Errorf("failed to enrich recipes: %w", err)
	}

	for _, link := range report.BrokenLinks {
		logger.WithField("link", link).Warn("Broken recipe link")
	}

	if recipesDryRun {
		logger.WithFields(logrus.Fields{
			"visited": report.Visited,
			"filled":  report.Filled,
		}).Info("DRY RUN: table not written")
		return nil
	}

	out := recipesOut
	if out == "" {
		out = recipesTable
	}
	if err := writeTable(out, enriched); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"path":   out,
		"filled": report.Filled,
	}).Info("Recommendation table written")
	return nil
}

func writeTable(path string, table recommender.Table) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
