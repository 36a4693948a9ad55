package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
	"github.com/naka-gawa/pr-leaderboard/internal/gateway"
)

var repo = domain.RepositoryID{Owner: "o", Name: "r"}

func TestScanner_DeduplicatesAcrossLabelVariants(t *testing.T) {
	logger, _ := test.NewNullLogger()
	searcher := new(mockSearcher)
	shared := newPR(1, 10, "level2")

	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc25"), 1).
		Return(&domain.SearchPage{Total: 2, PullRequests: []domain.PullRequest{shared, newPR(2, 11)}}, nil)
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc 25"), 1).
		Return(&domain.SearchPage{Total: 2, PullRequests: []domain.PullRequest{shared, newPR(3, 10)}}, nil)

	scanner := NewScanner(searcher, []string{"gssoc25", "gssoc 25"}, testWindow, logger)
	seen := NewSeenSet()
	prs, err := scanner.ScanRepository(context.Background(), repo, seen)

	require.NoError(t, err)
	ids := make([]int64, 0, len(prs))
	for _, pr := range prs {
		ids = append(ids, pr.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Len(t, seen, 3)
	searcher.AssertExpectations(t)
}

func TestScanner_SkipsAlreadySeen(t *testing.T) {
	logger, _ := test.NewNullLogger()
	searcher := new(mockSearcher)
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc25"), 1).
		Return(&domain.SearchPage{Total: 2, PullRequests: []domain.PullRequest{newPR(1, 10), newPR(2, 10)}}, nil)

	seen := SeenSet{1: {}}
	prs, err := NewScanner(searcher, []string{"gssoc25"}, testWindow, logger).ScanRepository(context.Background(), repo, seen)

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, int64(2), prs[0].ID)
}

func TestScanner_Pagination(t *testing.T) {
	testCases := []struct {
		name          string
		total         int
		expectedPages int
	}{
		{name: "empty result", total: 0, expectedPages: 1},
		{name: "exactly one page", total: 100, expectedPages: 1},
		{name: "one item overflow", total: 101, expectedPages: 2},
		{name: "two and a half pages", total: 250, expectedPages: 3},
		{name: "search api maximum", total: 1000, expectedPages: 10},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			searcher := new(mockSearcher)
			query := queryFor(repo, "gssoc25")

			remaining := tc.total
			for page := 1; page <= tc.expectedPages; page++ {
				n := min(remaining, gateway.PageSize)
				remaining -= n
				searcher.On("SearchMergedPRs", mock.Anything, query, page).
					Return(&domain.SearchPage{Total: tc.total, PullRequests: prRange(int64(page*1000), n, 10)}, nil).
					Once()
			}

			prs, err := NewScanner(searcher, []string{"gssoc25"}, testWindow, logger).
				ScanRepository(context.Background(), repo, NewSeenSet())

			require.NoError(t, err)
			assert.Len(t, prs, tc.total)
			// 1 + ceil((N - pageSize) / pageSize) requests for N > pageSize.
			searcher.AssertNumberOfCalls(t, "SearchMergedPRs", tc.expectedPages)
			searcher.AssertExpectations(t)
		})
	}
}

func TestScanner_FirstQueryFailureSkipsRepository(t *testing.T) {
	logger, hook := test.NewNullLogger()
	searcher := new(mockSearcher)
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc25"), 1).
		Return(nil, gateway.ErrNotFound)

	prs, err := NewScanner(searcher, []string{"gssoc25", "gssoc 25"}, testWindow, logger).
		ScanRepository(context.Background(), repo, NewSeenSet())

	assert.ErrorIs(t, err, ErrRepositorySkipped)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Nil(t, prs)
	// No further label variants are queried.
	searcher.AssertNumberOfCalls(t, "SearchMergedPRs", 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "o/r", hook.LastEntry().Data["repo"])
}

func TestScanner_LaterLabelFailureContinues(t *testing.T) {
	logger, hook := test.NewNullLogger()
	searcher := new(mockSearcher)
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc25"), 1).
		Return(&domain.SearchPage{Total: 1, PullRequests: []domain.PullRequest{newPR(1, 10)}}, nil)
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "GSSoC'25"), 1).
		Return(nil, errors.New("boom"))
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc 25"), 1).
		Return(&domain.SearchPage{Total: 1, PullRequests: []domain.PullRequest{newPR(2, 10)}}, nil)

	prs, err := NewScanner(searcher, []string{"gssoc25", "GSSoC'25", "gssoc 25"}, testWindow, logger).
		ScanRepository(context.Background(), repo, NewSeenSet())

	require.NoError(t, err)
	assert.Len(t, prs, 2)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
	assert.Equal(t, "GSSoC'25", hook.Entries[0].Data["label"])
	searcher.AssertExpectations(t)
}

func TestScanner_FailedOverflowPageIsDropped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	searcher := new(mockSearcher)
	query := queryFor(repo, "gssoc25")
	searcher.On("SearchMergedPRs", mock.Anything, query, 1).
		Return(&domain.SearchPage{Total: 250, PullRequests: prRange(1, 100, 10)}, nil)
	searcher.On("SearchMergedPRs", mock.Anything, query, 2).
		Return(nil, gateway.ErrRateLimited)
	searcher.On("SearchMergedPRs", mock.Anything, query, 3).
		Return(&domain.SearchPage{Total: 250, PullRequests: prRange(201, 50, 10)}, nil)

	prs, err := NewScanner(searcher, []string{"gssoc25"}, testWindow, logger).
		ScanRepository(context.Background(), repo, NewSeenSet())

	require.NoError(t, err)
	assert.Len(t, prs, 150)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, 2, hook.Entries[0].Data["page"])
	searcher.AssertExpectations(t)
}

func TestScanner_ContextCancelled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	searcher := new(mockSearcher)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	searcher.On("SearchMergedPRs", mock.Anything, queryFor(repo, "gssoc25"), 1).
		Return(nil, context.Canceled)

	_, err := NewScanner(searcher, []string{"gssoc25", "gssoc 25"}, testWindow, logger).
		ScanRepository(ctx, repo, NewSeenSet())

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRepositorySkipped)
}
