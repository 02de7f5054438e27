package cmd

import (
	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/core/agg"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/spf13/cobra"
)

// churnCmd shows the rolling churn trend.
var churnCmd = &cobra.Command{
	Use:   "churn <repo>",
	Short: "Show the churn trend with a rolling window.",
	Long: `Render total line churn (insertions plus deletions) per bucket with a
moving sum over a trailing window, making churn spikes visible even when
individual buckets are noisy.

Examples:
  # Weekly churn with the default window
  evotrack churn ~/src/api --period week

  # Monthly churn smoothed over six months
  evotrack churn ~/src/api --period month --window 6`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repo := core.RepositoryFromLocator(args[0])
		result, err := agg.CachedQuery(rootCtx, dataStore, dataStore, repo.ID, cfg.Filter())
		if err != nil {
			contract.LogFatal("Cannot query churn", err)
		}
		result.Activity = nil
		result.Authors = nil
		if err := outw.WriteChurn(result, cfg); err != nil {
			contract.LogFatal("Cannot write churn", err)
		}
	},
}
