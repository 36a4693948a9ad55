// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRepositoryURL is returned when a project link does not carry an owner/name path.
var ErrInvalidRepositoryURL = errors.New("invalid repository url")

// RepositoryID identifies a GitHub repository by owner and name.
type RepositoryID struct {
	Owner string
	Name  string
}

// String returns the "owner/name" form used in search qualifiers.
func (r RepositoryID) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepositoryURL derives a RepositoryID from a project link such as
// "https://github.com/owner/name". The owner and name are taken positionally
// from the 4th and 5th "/"-separated segments.
func ParseRepositoryURL(rawURL string) (RepositoryID, error) {
	parts := strings.Split(strings.TrimSpace(rawURL), "/")
	if len(parts) < 5 {
		return RepositoryID{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryURL, rawURL)
	}
	owner := parts[3]
	name := strings.TrimSuffix(parts[4], ".git")
	if owner == "" || name == "" {
		return RepositoryID{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryURL, rawURL)
	}
	return RepositoryID{Owner: owner, Name: name}, nil
}

// Project is a single entry of the participating project list.
type Project struct {
	Link string `json:"project_link"`
}

// DateWindow is the inclusive closed-date range a pull request must fall into.
type DateWindow struct {
	From time.Time
	To   time.Time
}

const searchDateLayout = "2006-01-02"

// Qualifier renders the window as a search qualifier, e.g. "closed:2025-07-15..2025-10-20".
func (w DateWindow) Qualifier() string {
	return fmt.Sprintf("closed:%s..%s", w.From.Format(searchDateLayout), w.To.Format(searchDateLayout))
}

// CutoffNote is the human readable note attached to a generated leaderboard.
func (w DateWindow) CutoffNote() string {
	return fmt.Sprintf("No new PRs merged after %s 11:59 p.m will be counted", w.To.Format("2 Jan 2006"))
}
