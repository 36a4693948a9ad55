package usecase

import (
	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

// Ledger accumulates contributor scores for one run.
// It is not safe for concurrent use.
type Ledger struct {
	policy       domain.ScoringPolicy
	contributors map[int64]*domain.Contributor
	order        []int64
	credited     map[int64]struct{}
}

// NewLedger creates an empty ledger scoring with policy.
func NewLedger(policy domain.ScoringPolicy) *Ledger {
	return &Ledger{
		policy:       policy,
		contributors: make(map[int64]*domain.Contributor),
		credited:     make(map[int64]struct{}),
	}
}

// Fold credits a batch of pull requests to their authors and returns how many
// of them were new to the ledger. A pull request id is credited at most once,
// so folding overlapping batches is safe.
func (l *Ledger) Fold(prs []domain.PullRequest) int {
	added := 0
	for _, pr := range prs {
		if _, ok := l.credited[pr.ID]; ok {
			continue
		}
		l.credited[pr.ID] = struct{}{}
		added++

		c := l.contributor(pr.Author)
		for _, label := range pr.Labels {
			if l.policy.IsBonus(label) && !c.BonusApplied {
				c.BonusApplied = true
				c.Score += l.policy.BonusPoints
			}
			c.Score += l.policy.LabelPoints(label)
		}
		c.AddPRURL(pr.HTMLURL)
	}
	return added
}

func (l *Ledger) contributor(author domain.Author) *domain.Contributor {
	if c, ok := l.contributors[author.ID]; ok {
		return c
	}
	c := domain.NewContributor(author)
	l.contributors[author.ID] = c
	l.order = append(l.order, author.ID)
	return c
}

// Contributors returns the contributors in first-seen order.
func (l *Ledger) Contributors() []*domain.Contributor {
	out := make([]*domain.Contributor, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.contributors[id])
	}
	return out
}

// Credited is the number of distinct pull requests folded so far.
func (l *Ledger) Credited() int {
	return len(l.credited)
}
