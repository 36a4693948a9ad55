// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

// PageSize is the maximum number of items the search API returns per page.
const PageSize = 100

// Sentinel errors for classifying failed API calls.
var (
	ErrNotFound      = errors.New("github resource not found")
	ErrUnauthorized  = errors.New("github credential rejected")
	ErrInvalidQuery  = errors.New("github rejected search query")
	ErrRateLimited   = errors.New("github rate limit exceeded")
	ErrMissingToken  = errors.New("github token is empty")
	errWaitCancelled = errors.New("request delay interrupted")
)

// Searcher fetches one page of merged pull requests matching a search query.
type Searcher interface {
	SearchMergedPRs(ctx context.Context, query string, page int) (*domain.SearchPage, error)
}

// Budget is the remaining API quota of the configured credential.
type Budget struct {
	Login            string
	GraphQLLimit     int
	GraphQLRemaining int
	GraphQLResetAt   time.Time
	SearchLimit      int
	SearchRemaining  int
	SearchResetAt    time.Time
}

// Options configures a GitHubGateway.
type Options struct {
	Token string
	// APIEndpoint and GraphQLEndpoint default to github.com when empty.
	APIEndpoint     string
	GraphQLEndpoint string
	// Waiter runs after every request. Defaults to NoopWaiter.
	Waiter Waiter
	// SecondaryLimitSleep caps a single sleep on a secondary rate limit.
	SecondaryLimitSleep time.Duration
}

// GitHubGateway talks to GitHub with a single bearer credential.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	waiter        Waiter
	logger        logrus.FieldLogger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger logrus.FieldLogger) (*GitHubGateway, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	sleepLimit := opts.SecondaryLimitSleep
	if sleepLimit <= 0 {
		sleepLimit = time.Hour
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(sleepLimit, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.APIEndpoint != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.APIEndpoint, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid api endpoint %q: %w", opts.APIEndpoint, err)
		}
		restClient.BaseURL = baseURL
	}
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLEndpoint != "" {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLEndpoint, httpClient)
	}

	waiter := opts.Waiter
	if waiter == nil {
		waiter = NoopWaiter{}
	}
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		waiter:        waiter,
		logger:        logger,
	}, nil
}

// SearchMergedPRs runs one search request for the given page (1-based) with the
// maximum page size. The configured Waiter always runs after the request,
// whether it succeeded or not.
func (g *GitHubGateway) SearchMergedPRs(ctx context.Context, query string, page int) (*domain.SearchPage, error) {
	log := g.logger.WithFields(logrus.Fields{"query": query, "page": page})
	log.Debug("Searching pull requests...")

	opts := &github.SearchOptions{ListOptions: github.ListOptions{Page: page, PerPage: PageSize}}
	result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
	if waitErr := g.waiter.Wait(ctx); waitErr != nil {
		return nil, fmt.Errorf("%w: %w", errWaitCancelled, waitErr)
	}
	if err != nil {
		return nil, classifyError("search issues", err, resp)
	}

	searchPage := &domain.SearchPage{
		Total:        result.GetTotal(),
		PullRequests: make([]domain.PullRequest, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		user := issue.GetUser()
		if user == nil {
			log.WithField("pr", issue.GetHTMLURL()).Debug("Skipping pull request without author")
			continue
		}
		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labels = append(labels, label.GetName())
		}
		searchPage.PullRequests = append(searchPage.PullRequests, domain.PullRequest{
			ID:      issue.GetID(),
			HTMLURL: issue.GetHTMLURL(),
			Author: domain.Author{
				ID:        user.GetID(),
				Login:     user.GetLogin(),
				AvatarURL: user.GetAvatarURL(),
				HTMLURL:   user.GetHTMLURL(),
			},
			Labels: labels,
		})
	}
	log.WithFields(logrus.Fields{"total": searchPage.Total, "items": len(searchPage.PullRequests)}).Debug("Search page fetched")
	return searchPage, nil
}

// budgetQuery reads the viewer and its GraphQL rate limit in one round trip.
type budgetQuery struct {
	Viewer struct {
		Login githubv4.String
	}
	RateLimit struct {
		Limit     githubv4.Int
		Remaining githubv4.Int
		ResetAt   githubv4.DateTime
	}
}

// CheckBudget verifies the credential and reports the remaining GraphQL and
// search quota.
func (g *GitHubGateway) CheckBudget(ctx context.Context) (*Budget, error) {
	var q budgetQuery
	err := g.graphqlClient.Query(ctx, &q, nil)
	if waitErr := g.waiter.Wait(ctx); waitErr != nil {
		return nil, fmt.Errorf("%w: %w", errWaitCancelled, waitErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for viewer: %w", err)
	}

	limits, resp, err := g.restClient.RateLimit.Get(ctx)
	if waitErr := g.waiter.Wait(ctx); waitErr != nil {
		return nil, fmt.Errorf("%w: %w", errWaitCancelled, waitErr)
	}
	if err != nil {
		return nil, classifyError("get rate limits", err, resp)
	}

	budget := &Budget{
		Login:            string(q.Viewer.Login),
		GraphQLLimit:     int(q.RateLimit.Limit),
		GraphQLRemaining: int(q.RateLimit.Remaining),
		GraphQLResetAt:   q.RateLimit.ResetAt.Time,
	}
	if search := limits.Search; search != nil {
		budget.SearchLimit = search.Limit
		budget.SearchRemaining = search.Remaining
		budget.SearchResetAt = search.Reset.Time
	}
	return budget, nil
}

// classifyError maps a failed REST call of operation op onto the package sentinels.
func classifyError(op string, err error, resp *github.Response) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}
	return fmt.Errorf("failed to %s with REST API: %w", op, err)
}
