package main

import (
	"fmt"
	"time"

	"github.com/healthbite/backend/internal/recommender"
	"github.com/healthbite/backend/internal/seeder"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/spf13/cobra"
)

var validateTable string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report problems in a recommendation table",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateTable, "table", "t", "data/food_recommendations.json", "Table file or URL to check")
}

func runValidate(cmd *cobra.Command, args []string) error {
	table, err := recommender.LoadTable(cmd.Context(), validateTable, 30*time.Second, utils.GetLogger())
	if err != nil {
		return err
	}

	issues := seeder.Validate(table, recommender.DefaultRules())
	if len(issues) == 0 {
		fmt.Printf("%s: %d tags, no issues\n", validateTable, len(table))
		return nil
	}

	for _, issue := range issues {
		fmt.Println(issue)
	}
	return fmt.Errorf("found %d issues in %s", len(issues), validateTable)
}
