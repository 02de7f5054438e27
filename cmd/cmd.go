// Package cmd defines the command-line interface for evotrack.
package cmd

import (
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(authorsCmd)
	rootCmd.AddCommand(churnCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Int("batch-size", contract.DefaultBatchSize, "Number of commits persisted per batch")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of repositories extracted in parallel")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("period", string(schema.PeriodDay), "Bucketing period: day or week or month")
	rootCmd.PersistentFlags().Int("window", contract.DefaultChurnWindow, "Rolling churn window in buckets")
	rootCmd.PersistentFlags().String("since", "", "Inclusive lower bound (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("until", "", "Inclusive upper bound (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("author", "", "Restrict queries to one resolved author id")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("precision", 2, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().StringSlice("noreply-domains", contract.DefaultNoreplyDomains, "Forge noreply domains for the identity heuristic")
	rootCmd.PersistentFlags().Bool("name-heuristic", true, "Merge identities on matching display name plus noreply username")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
