// internal/scoring/scorecard.go
package scoring

import "fmt"

// NumCategories is the number of slots on a full scorecard.
const NumCategories = 13

// Scorecard is one player's score ledger. A category absent from Scores is
// unfilled; once present it never changes. The derived totals are recomputed
// on every fill and never stored stale.
type Scorecard struct {
	Scores map[Category]int `json:"scores"`

	UpperSectionTotal int `json:"upperSectionTotal"`
	UpperSectionBonus int `json:"upperSectionBonus"`
	LowerSectionTotal int `json:"lowerSectionTotal"`
	YahtzeeCount      int `json:"yahtzeeCount"`
	GrandTotal        int `json:"grandTotal"`
}

// NewScorecard returns an empty card.
func NewScorecard() *Scorecard {
	return &Scorecard{Scores: make(map[Category]int, NumCategories)}
}

// Get returns the filled value for category and whether it has been filled.
func (sc *Scorecard) Get(category Category) (int, bool) {
	v, ok := sc.Scores[category]
	return v, ok
}

// CanScore reports whether category is open for scoring.
func (sc *Scorecard) CanScore(category Category) bool {
	if !Valid(category) {
		return false
	}
	_, filled := sc.Scores[category]
	return !filled
}

// Fill commits score into category. Filling a category twice is an error; the
// first value is immutable for the rest of the game. A scored Yahtzee bumps
// the bonus counter.
func (sc *Scorecard) Fill(category Category, score int) error {
	if !Valid(category) {
		return fmt.Errorf("unknown category %q", category)
	}
	if _, filled := sc.Scores[category]; filled {
		return fmt.Errorf("category %q already scored", category)
	}

	sc.Scores[category] = score
	if category == Yahtzee && score > 0 {
		sc.YahtzeeCount++
	}
	sc.recompute()
	return nil
}

// IsComplete reports whether all 13 categories are filled.
func (sc *Scorecard) IsComplete() bool {
	return len(sc.Scores) == NumCategories
}

// recompute rebuilds every derived total from the filled scores.
func (sc *Scorecard) recompute() {
	upper := 0
	for _, c := range upperCategories {
		upper += sc.Scores[c]
	}
	lower := 0
	for _, c := range lowerCategories {
		lower += sc.Scores[c]
	}

	bonus := 0
	if upper >= UpperBonusThreshold {
		bonus = UpperBonusPoints
	}

	yahtzeeBonus := 0
	if sc.YahtzeeCount > 1 {
		yahtzeeBonus = (sc.YahtzeeCount - 1) * YahtzeeBonusPoints
	}

	sc.UpperSectionTotal = upper
	sc.UpperSectionBonus = bonus
	sc.LowerSectionTotal = lower
	sc.GrandTotal = upper + bonus + lower + yahtzeeBonus
}
