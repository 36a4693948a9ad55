// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
	"github.com/naka-gawa/pr-leaderboard/internal/gateway"
)

// Report summarizes what a run scanned.
type Report struct {
	Repositories int
	Skipped      []domain.RepositoryID
	Credited     int
}

// Aggregator is the use case for building the contributor leaderboard.
// It orchestrates scanning every repository and scoring what was found.
type Aggregator struct {
	scanner    *Scanner
	policy     domain.ScoringPolicy
	repoWaiter gateway.Waiter
	note       string
	now        func() time.Time
	logger     logrus.FieldLogger
}

// NewAggregator creates a new Aggregator instance. repoWaiter runs after each
// repository; note is the cutoff text attached to the leaderboard.
func NewAggregator(scanner *Scanner, policy domain.ScoringPolicy, repoWaiter gateway.Waiter, note string, logger logrus.FieldLogger) *Aggregator {
	if repoWaiter == nil {
		repoWaiter = gateway.NoopWaiter{}
	}
	return &Aggregator{
		scanner:    scanner,
		policy:     policy,
		repoWaiter: repoWaiter,
		note:       note,
		now:        time.Now,
		logger:     logger,
	}
}

// Aggregate scans repos one after the other, in order, and ranks the contributors.
// A repository that cannot be queried is skipped; only context cancellation
// aborts the run.
func (a *Aggregator) Aggregate(ctx context.Context, repos []domain.RepositoryID) (*domain.Leaderboard, *Report, error) {
	a.logger.WithField("repositories", len(repos)).Info("Generating leaderboard...")

	ledger := NewLedger(a.policy)
	report := &Report{Repositories: len(repos)}

	for i, repo := range repos {
		log := a.logger.WithFields(logrus.Fields{"repo": repo.String(), "index": i + 1, "of": len(repos)})
		log.Info("Processing repository")

		prs, err := a.scanner.ScanRepository(ctx, repo, NewSeenSet())
		switch {
		case errors.Is(err, ErrRepositorySkipped):
			report.Skipped = append(report.Skipped, repo)
		case err != nil:
			return nil, nil, err
		default:
			added := ledger.Fold(prs)
			log.WithField("prs", added).Debug("Repository scored")
		}

		if err := a.repoWaiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}
	report.Credited = ledger.Credited()

	lb := BuildLeaderboard(ledger.Contributors(), a.now(), a.note)
	a.logger.WithFields(logrus.Fields{
		"contributors": len(lb.Entries),
		"prs":          report.Credited,
		"skipped":      len(report.Skipped),
	}).Info("Leaderboard generation complete")
	return lb, report, nil
}
