package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
	"github.com/naka-gawa/pr-leaderboard/internal/gateway"
)

// ErrRepositorySkipped is returned when the first query of a repository fails.
var ErrRepositorySkipped = errors.New("repository skipped")

// SeenSet holds the pull request ids already returned during one repository scan.
type SeenSet map[int64]struct{}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() SeenSet {
	return make(SeenSet)
}

// add reports whether id was not yet in the set, adding it.
func (s SeenSet) add(id int64) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Scanner collects the merged pull requests of a repository, querying each
// identifying label variant in turn.
type Scanner struct {
	searcher gateway.Searcher
	labels   []string
	window   domain.DateWindow
	logger   logrus.FieldLogger
}

// NewScanner creates a new Scanner instance.
func NewScanner(searcher gateway.Searcher, labels []string, window domain.DateWindow, logger logrus.FieldLogger) *Scanner {
	return &Scanner{
		searcher: searcher,
		labels:   labels,
		window:   window,
		logger:   logger,
	}
}

// ScanRepository returns the pull requests of repo matching any label variant.
// Pull requests already in seen are dropped; every returned one is added to seen.
//
// If the very first query fails the whole repository is skipped and
// ErrRepositorySkipped is returned. Later failures only drop the affected page.
func (s *Scanner) ScanRepository(ctx context.Context, repo domain.RepositoryID, seen SeenSet) ([]domain.PullRequest, error) {
	log := s.logger.WithField("repo", repo.String())
	var found []domain.PullRequest

	collect := func(prs []domain.PullRequest) {
		for _, pr := range prs {
			if seen.add(pr.ID) {
				found = append(found, pr)
			}
		}
	}

	for i, label := range s.labels {
		labelLog := log.WithField("label", label)
		query := gateway.BuildSearchQuery(repo, []string{label}, s.window)

		first, err := s.searcher.SearchMergedPRs(ctx, query, 1)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if i == 0 {
				labelLog.WithError(err).Warn("PRs not found, skipping repository")
				return nil, fmt.Errorf("%w: %s: %w", ErrRepositorySkipped, repo, err)
			}
			labelLog.WithError(err).Warn("PRs not found for label")
			continue
		}
		collect(first.PullRequests)

		pages := pageCount(first.Total)
		for page := 2; page <= pages; page++ {
			result, err := s.searcher.SearchMergedPRs(ctx, query, page)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				labelLog.WithError(err).WithField("page", page).Warn("Failed to fetch page")
				continue
			}
			collect(result.PullRequests)
		}
		labelLog.WithFields(logrus.Fields{"total": first.Total, "pages": pages}).Debug("Label scanned")
	}
	return found, nil
}

// pageCount is ceil(total/PageSize), at least 1.
func pageCount(total int) int {
	if total <= gateway.PageSize {
		return 1
	}
	return (total + gateway.PageSize - 1) / gateway.PageSize
}
