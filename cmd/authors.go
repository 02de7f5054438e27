package cmd

import (
	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/core/agg"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/spf13/cobra"
)

// authorsCmd shows contributor totals with resolved identities.
var authorsCmd = &cobra.Command{
	Use:   "authors <repo>",
	Short: "Show contributors ranked by commit count.",
	Long: `Rank contributors of an extracted repository by commit count, with
insertions, deletions, and first/last activity alongside.

Contributors are resolved identities, not raw commit signatures: commits
signed with different name/email aliases of the same person count toward
one row. Ties in commit count rank deterministically by author id.

Examples:
  # Top contributors
  evotrack authors ~/src/api

  # Full ranking as JSON
  evotrack authors ~/src/api --limit 1000 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repo := core.RepositoryFromLocator(args[0])
		result, err := agg.CachedQuery(rootCtx, dataStore, dataStore, repo.ID, cfg.Filter())
		if err != nil {
			contract.LogFatal("Cannot query authors", err)
		}
		result.Activity = nil
		result.Churn = nil
		if err := outw.WriteAuthors(result, cfg); err != nil {
			contract.LogFatal("Cannot write authors", err)
		}
	},
}
