// Package project loads the list of participating repositories.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

// ErrMalformedProject is returned when the project list cannot be used as is.
var ErrMalformedProject = errors.New("malformed project list")

// Loader reads project lists from local files or http(s) URLs.
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a Loader. A nil client means http.DefaultClient.
func NewLoader(httpClient *http.Client) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Loader{httpClient: httpClient}
}

// Load reads the project list at source and returns the repositories in list order.
func (l *Loader) Load(ctx context.Context, source string) ([]domain.RepositoryID, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read project list %s: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build project list request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project list %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch project list %s: status %d", source, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read project list response: %w", err)
	}
	return data, nil
}

// Parse decodes a JSON array of project entries. Every entry must carry a
// link with an owner/name path.
func Parse(data []byte) ([]domain.RepositoryID, error) {
	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProject, err)
	}
	if projects == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedProject)
	}

	repos := make([]domain.RepositoryID, 0, len(projects))
	for i, p := range projects {
		repo, err := domain.ParseRepositoryURL(p.Link)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformedProject, i, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}
