package main

import (
	"os"

	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Maintain the food recommendation table",
	Long: `seed checks and enriches the recommendation table served by the backend.
It can fill missing recipe descriptions from the linked recipe pages and
report entries that the recommender would never reach.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			utils.GetLogger().SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
