package project

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

const projectsJSON = `[
	{"project_link": "https://github.com/octo/hello", "project_name": "Hello"},
	{"project_link": "https://github.com/acme/tools/"}
]`

var expectedRepos = []domain.RepositoryID{
	{Owner: "octo", Name: "hello"},
	{Owner: "acme", Name: "tools"},
}

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(projectsJSON), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sheet":
			fmt.Fprint(w, projectsJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	testCases := []struct {
		name        string
		source      string
		expected    []domain.RepositoryID
		expectedErr string
	}{
		{name: "local file", source: path, expected: expectedRepos},
		{name: "remote sheet", source: server.URL + "/sheet", expected: expectedRepos},
		{name: "missing file", source: filepath.Join(t.TempDir(), "nope.json"), expectedErr: "failed to read project list"},
		{name: "remote not found", source: server.URL + "/missing", expectedErr: "status 404"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repos, err := NewLoader(server.Client()).Load(context.Background(), tc.source)
			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, repos)
		})
	}
}

func TestParse(t *testing.T) {
	repos, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, repos)

	_, err = Parse([]byte(`{"project_link": "https://github.com/a/b"}`))
	assert.ErrorIs(t, err, ErrMalformedProject)

	repos, err = Parse([]byte(`null`))
	assert.ErrorIs(t, err, ErrMalformedProject)
	assert.Contains(t, err.Error(), "expected a JSON array")
	assert.Nil(t, repos)

	_, err = Parse([]byte(`[{"project_link": "https://github.com/a/b"}, {"project_link": "https://github.com/a"}]`))
	assert.ErrorIs(t, err, ErrMalformedProject)
	assert.ErrorIs(t, err, domain.ErrInvalidRepositoryURL)
	assert.Contains(t, err.Error(), "entry 1")
}
