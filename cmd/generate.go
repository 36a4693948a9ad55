package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
	"github.com/naka-gawa/pr-leaderboard/internal/gateway"
	"github.com/naka-gawa/pr-leaderboard/internal/output"
	"github.com/naka-gawa/pr-leaderboard/internal/project"
	"github.com/naka-gawa/pr-leaderboard/internal/usecase"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Builds the contributor leaderboard and writes it as JSON",
	Long: `Reads the participating projects, searches every repository for merged
pull requests carrying one of the program labels inside the date window,
scores them and writes the ranked leaderboard. Use --output - to print the
JSON to standard output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		baseLogger, err := newLogger(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger := baseLogger.WithField("run_id", uuid.NewString())

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		window, err := cfg.DateWindow()
		if err != nil {
			return err
		}

		// The project list must be readable before any scanning begins.
		repos, err := project.NewLoader(nil).Load(ctx, cfg.Projects)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"projects": len(repos), "source": cfg.Projects}).Info("Project list loaded")

		githubGateway, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}
		if budget, err := githubGateway.CheckBudget(ctx); err != nil {
			logger.WithError(err).Warn("Could not read API budget, continuing")
		} else {
			logger.WithFields(budgetFields(budget)).Info("API budget")
		}

		scanner := usecase.NewScanner(githubGateway, cfg.Labels, window, logger)
		aggregator := usecase.NewAggregator(scanner, cfg.ScoringPolicy(),
			gateway.SleepWaiter{Delay: cfg.Delays.Repository}, cfg.CutoffNote(), logger)

		lb, report, err := aggregator.Aggregate(ctx, repos)
		if err != nil {
			return fmt.Errorf("failed to generate leaderboard: %w", err)
		}
		for _, repo := range report.Skipped {
			logger.WithField("repo", repo.String()).Warn("Repository was skipped")
		}
		if summary, err := usecase.Summarize(lb); err != nil {
			logger.WithError(err).Warn("Could not summarize scores")
		} else {
			logger.WithFields(summaryFields(summary)).Info("Score summary")
		}

		if err := writeLeaderboard(cmd.OutOrStdout(), cfg.Output, lb); err != nil {
			return err
		}
		logger.WithField("output", cfg.Output).Info("Leaderboard written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("projects", "p", "", "Project list: a JSON file or an http(s) URL")
	generateCmd.Flags().StringP("output", "o", "", "Output file, or - for standard output")
	generateCmd.Flags().String("from", "", "Start of the closed-date window (YYYY-MM-DD)")
	generateCmd.Flags().String("to", "", "End of the closed-date window (YYYY-MM-DD)")
	generateCmd.Flags().Duration("request-delay", 0, "Pause after every API request")
	generateCmd.Flags().Duration("repo-delay", 0, "Pause after every repository")
}

func writeLeaderboard(stdout io.Writer, path string, lb *domain.Leaderboard) error {
	if path == "-" {
		return output.Write(stdout, lb)
	}
	return output.WriteFile(path, lb)
}

func budgetFields(b *gateway.Budget) logrus.Fields {
	return logrus.Fields{
		"login":             b.Login,
		"graphql_remaining": b.GraphQLRemaining,
		"search_remaining":  b.SearchRemaining,
		"search_limit":      b.SearchLimit,
	}
}

func summaryFields(s domain.ScoreSummary) logrus.Fields {
	return logrus.Fields{
		"contributors": s.Contributors,
		"mean":         s.Mean,
		"median":       s.Median,
		"p90":          s.P90,
		"max":          s.Max,
	}
}
