package domain

// Contributor is the running score of a single GitHub user.
// It is the core domain entity of this application.
type Contributor struct {
	ID           int64    `json:"-"`
	AvatarURL    string   `json:"avatar_url"`
	Login        string   `json:"login"`
	URL          string   `json:"url"`
	Score        int      `json:"score"`
	PRURLs       []string `json:"pr_urls"`
	BonusApplied bool     `json:"postManTag"`

	credited map[string]struct{}
}

// NewContributor creates an empty contributor from the author of a pull request.
func NewContributor(a Author) *Contributor {
	return &Contributor{
		ID:        a.ID,
		AvatarURL: a.AvatarURL,
		Login:     a.Login,
		URL:       a.HTMLURL,
		PRURLs:    []string{},
		credited:  make(map[string]struct{}),
	}
}

// AddPRURL records a pull request URL, keeping insertion order.
// It reports whether the URL was new.
func (c *Contributor) AddPRURL(url string) bool {
	if c.credited == nil {
		c.credited = make(map[string]struct{}, len(c.PRURLs))
		for _, u := range c.PRURLs {
			c.credited[u] = struct{}{}
		}
	}
	if _, ok := c.credited[url]; ok {
		return false
	}
	c.credited[url] = struct{}{}
	c.PRURLs = append(c.PRURLs, url)
	return true
}

// Leaderboard is the serializable ranking written at the end of a run.
type Leaderboard struct {
	Entries           []*Contributor `json:"leaderboard"`
	Success           bool           `json:"success"`
	UpdatedAt         int64          `json:"updatedAt"`
	Generated         bool           `json:"generated"`
	UpdatedTimestring string         `json:"updatedTimestring"`
}

// ScoreSummary describes the score distribution of a leaderboard.
type ScoreSummary struct {
	Contributors int
	Mean         float64
	Median       float64
	P90          float64
	Max          float64
}
