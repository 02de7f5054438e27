package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/internal/gitclient"
	"github.com/Dhyanesh27/evotrack/internal/outwriter"
	"github.com/Dhyanesh27/evotrack/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// dataStore is the global persistence layer instance.
var dataStore *store.Store

// manager owns extraction runs for the lifetime of the process.
var manager *core.Manager

// outw renders results in the configured output format.
var outw = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "evotrack",
	Short:              "Extract and analyze Git commit history incrementally.",
	Long:               `EvoTrack walks Git history once, resolves author identities across aliases, and serves activity, contributor, and churn analytics from its own store.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".evotrack") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("EVOTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match
}

// sharedSetup unmarshals config, runs validation, and opens the store.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	validated, err := contract.Validate(input)
	if err != nil {
		return err
	}
	*cfg = *validated

	// 4. Initialize the persistence layer with the validated config.
	// An empty connection string falls back to the default SQLite path
	// inside store.New.
	dataStore, err = store.New(cfg.Backend, cfg.DBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	// 5. Wire the extraction pipeline on top of the store.
	coord := core.NewCoordinator(dataStore, gitclient.NewOpener(), cfg)
	manager = core.NewManager(coord)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if dataStore != nil {
			_ = dataStore.Close()
		}
	}()
	return rootCmd.Execute()
}
