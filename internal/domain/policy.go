package domain

import (
	"strings"
	"unicode"
)

// ScoringPolicy maps labels to points and defines the one-time bonus label.
type ScoringPolicy struct {
	// Points is keyed by normalized label name.
	Points      map[string]int
	BonusLabel  string
	BonusPoints int
}

// NewScoringPolicy builds a policy, normalizing the keys of points.
func NewScoringPolicy(points map[string]int, bonusLabel string, bonusPoints int) ScoringPolicy {
	normalized := make(map[string]int, len(points))
	for label, p := range points {
		normalized[NormalizeLabel(label)] = p
	}
	return ScoringPolicy{
		Points:      normalized,
		BonusLabel:  strings.TrimSpace(bonusLabel),
		BonusPoints: bonusPoints,
	}
}

// DefaultScoringPolicy returns the level1/level2/level3 table with the postman bonus.
func DefaultScoringPolicy() ScoringPolicy {
	return NewScoringPolicy(map[string]int{
		"level1": 3,
		"level2": 7,
		"level3": 10,
	}, "postman", 500)
}

// NormalizeLabel lowercases a label and strips whitespace and hyphens,
// so "Level 1", "level-1" and "LEVEL1" all become "level1".
func NormalizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToLower(r)
	}, label)
}

// LabelPoints returns the points a label is worth; unknown labels are worth 0.
func (p ScoringPolicy) LabelPoints(label string) int {
	return p.Points[NormalizeLabel(label)]
}

// IsBonus reports whether label is the bonus label, ignoring case.
func (p ScoringPolicy) IsBonus(label string) bool {
	return p.BonusLabel != "" && strings.EqualFold(strings.TrimSpace(label), p.BonusLabel)
}
