package cmd

import (
	"github.com/Dhyanesh27/evotrack/core"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/spf13/cobra"
)

// commitsCmd lists normalized commits from the store.
var commitsCmd = &cobra.Command{
	Use:   "commits <repo>",
	Short: "List extracted commits in chronological order.",
	Long: `List the normalized commits stored for a repository, oldest first.
The listing reflects the store, not the working tree: run extract first
to pick up new commits.

Examples:
  # All commits by one author in a date range
  evotrack commits ~/src/api --author a1b2c3 --since 2024-01-01 --until 2024-06-30

  # Recent commits as CSV
  evotrack commits ~/src/api --since 2024-06-01 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repo := core.RepositoryFromLocator(args[0])
		commits, err := dataStore.QueryCommits(rootCtx, repo.ID, cfg.Filter())
		if err != nil {
			contract.LogFatal("Cannot query commits", err)
		}
		if err := outw.WriteCommits(commits, cfg); err != nil {
			contract.LogFatal("Cannot write commits", err)
		}
	},
}
