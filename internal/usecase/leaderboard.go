package usecase

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

const timestringLayout = "1/2/2006, 3:04:05 PM"

// BuildLeaderboard ranks contributors by score, highest first. Equal scores
// are ordered by contributor id ascending.
func BuildLeaderboard(contributors []*domain.Contributor, now time.Time, note string) *domain.Leaderboard {
	entries := make([]*domain.Contributor, len(contributors))
	copy(entries, contributors)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})

	timestring := now.Format(timestringLayout)
	if note != "" {
		timestring += " - " + note
	}
	return &domain.Leaderboard{
		Entries:           entries,
		Success:           true,
		UpdatedAt:         now.UnixMilli(),
		Generated:         true,
		UpdatedTimestring: timestring,
	}
}

// Summarize computes the score distribution of a leaderboard.
func Summarize(lb *domain.Leaderboard) (domain.ScoreSummary, error) {
	summary := domain.ScoreSummary{Contributors: len(lb.Entries)}
	if len(lb.Entries) == 0 {
		return summary, nil
	}
	scores := make(stats.Float64Data, 0, len(lb.Entries))
	for _, c := range lb.Entries {
		scores = append(scores, float64(c.Score))
	}

	var err error
	if summary.Mean, err = stats.Mean(scores); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(scores); err != nil {
		return summary, err
	}
	if summary.P90, err = stats.Percentile(scores, 90); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(scores); err != nil {
		return summary, err
	}
	return summary, nil
}
