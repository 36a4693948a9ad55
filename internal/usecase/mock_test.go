package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
	"github.com/naka-gawa/pr-leaderboard/internal/gateway"
)

// mockSearcher is a mock implementation of the gateway.Searcher interface.
// It allows us to simulate the GitHub search API without making real API calls.
type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchMergedPRs(ctx context.Context, query string, page int) (*domain.SearchPage, error) {
	args := m.Called(ctx, query, page)
	// The returned page is nil when an error occurs.
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchPage), args.Error(1)
}

var testWindow = domain.DateWindow{
	From: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
}

func queryFor(repo domain.RepositoryID, label string) string {
	return gateway.BuildSearchQuery(repo, []string{label}, testWindow)
}

func newPR(id, userID int64, labels ...string) domain.PullRequest {
	return domain.PullRequest{
		ID:      id,
		HTMLURL: fmt.Sprintf("https://github.com/o/r/pull/%d", id),
		Author: domain.Author{
			ID:        userID,
			Login:     fmt.Sprintf("user%d", userID),
			AvatarURL: fmt.Sprintf("https://avatars.githubusercontent.com/u/%d", userID),
			HTMLURL:   fmt.Sprintf("https://github.com/user%d", userID),
		},
		Labels: labels,
	}
}

// prRange returns count pull requests with ids starting at first, all by userID.
func prRange(first int64, count int, userID int64, labels ...string) []domain.PullRequest {
	prs := make([]domain.PullRequest, 0, count)
	for i := 0; i < count; i++ {
		prs = append(prs, newPR(first+int64(i), userID, labels...))
	}
	return prs
}
