package gateway

import (
	"strings"
	"unicode"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

// BuildSearchQuery builds the issue search query for merged pull requests of repo
// carrying the given label(s) and closed inside window.
//
// A single label yields "label:x"; several labels are rendered as an OR-list
// ("label:a,b"). Labels containing whitespace are quoted.
func BuildSearchQuery(repo domain.RepositoryID, labels []string, window domain.DateWindow) string {
	parts := []string{
		"repo:" + repo.String(),
		"is:pr",
	}
	if len(labels) > 0 {
		quoted := make([]string, 0, len(labels))
		for _, label := range labels {
			quoted = append(quoted, quoteLabel(label))
		}
		parts = append(parts, "label:"+strings.Join(quoted, ","))
	}
	parts = append(parts, "is:merged", window.Qualifier())
	return strings.Join(parts, " ")
}

func quoteLabel(label string) string {
	if strings.IndexFunc(label, unicode.IsSpace) >= 0 {
		return `"` + label + `"`
	}
	return label
}
