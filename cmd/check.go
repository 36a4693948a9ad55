package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verifies the GitHub token and shows the remaining API budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		githubGateway, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}

		budget, err := githubGateway.CheckBudget(cmd.Context())
		if err != nil {
			return fmt.Errorf("token check failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Authenticated as %s\n", budget.Login)
		fmt.Fprintf(out, "GraphQL: %d/%d remaining, resets %s\n",
			budget.GraphQLRemaining, budget.GraphQLLimit, budget.GraphQLResetAt.Local().Format(time.DateTime))
		fmt.Fprintf(out, "Search:  %d/%d remaining, resets %s\n",
			budget.SearchRemaining, budget.SearchLimit, budget.SearchResetAt.Local().Format(time.DateTime))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
