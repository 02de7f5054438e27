package cmd

import (
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeCmd groups persistence-layer maintenance commands.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the persistence store.",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// storeStatusCmd reports row counts and the last extraction time.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show store backend, row counts, and last update time.",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := dataStore.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot read store status", err)
		}
		if err := outw.WriteStoreStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot write store status", err)
		}
	},
}

// storeClearCmd wipes all extracted data.
var storeClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Delete all extracted commits, identities, and cached results.",
	Long:    `Remove every row from the store. The next extract rebuilds everything from the repository's full history.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := dataStore.Clear(rootCtx); err != nil {
			contract.LogFatal("Cannot clear store", err)
		}
		contract.LogInfo("Store cleared")
	},
}

// storeMigrateCmd applies schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Apply store schema migrations.",
	Long:    `Migrate the store schema to the target version using the embedded migration files. The default target is the latest version.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := store.Migrate(cfg.Backend, cfg.DBConnect, targetVersion); err != nil {
			contract.LogFatal("Cannot migrate store", err)
		}
		contract.LogInfo("Store migrated")
	},
}
