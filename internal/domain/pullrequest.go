package domain

// Author is the GitHub user who opened a pull request.
type Author struct {
	ID        int64
	Login     string
	AvatarURL string
	HTMLURL   string
}

// PullRequest is a merged pull request as returned by the search API.
// ID is stable across the label variants it was found under.
type PullRequest struct {
	ID      int64
	HTMLURL string
	Author  Author
	Labels  []string
}

// SearchPage is one page of search results together with the total the API reported.
type SearchPage struct {
	Total        int
	PullRequests []PullRequest
}
