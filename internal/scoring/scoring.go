// internal/scoring/scoring.go
package scoring

import "github.com/cpether/mobile-yahtzee/internal/dice"

// Category identifies one of the 13 scorecard slots. The string values double
// as the wire names used by clients.
type Category string

const (
	Ones   Category = "ones"
	Twos   Category = "twos"
	Threes Category = "threes"
	Fours  Category = "fours"
	Fives  Category = "fives"
	Sixes  Category = "sixes"

	ThreeOfAKind  Category = "threeOfAKind"
	FourOfAKind   Category = "fourOfAKind"
	FullHouse     Category = "fullHouse"
	SmallStraight Category = "smallStraight"
	LargeStraight Category = "largeStraight"
	Yahtzee       Category = "yahtzee"
	Chance        Category = "chance"
)

const (
	// FullHousePoints through YahtzeePoints are the fixed combination values.
	FullHousePoints     = 25
	SmallStraightPoints = 30
	LargeStraightPoints = 40
	YahtzeePoints       = 50

	// UpperBonusThreshold is the upper-section total at which the bonus kicks in.
	UpperBonusThreshold = 63
	UpperBonusPoints    = 35
	YahtzeeBonusPoints  = 100
)

// upperFace maps upper-section categories to the face value they count.
var upperFace = map[Category]int{
	Ones: 1, Twos: 2, Threes: 3, Fours: 4, Fives: 5, Sixes: 6,
}

var upperCategories = []Category{Ones, Twos, Threes, Fours, Fives, Sixes}

var lowerCategories = []Category{
	ThreeOfAKind, FourOfAKind, FullHouse, SmallStraight, LargeStraight, Yahtzee, Chance,
}

// Categories returns all 13 categories in scorecard order.
func Categories() []Category {
	out := make([]Category, 0, len(upperCategories)+len(lowerCategories))
	out = append(out, upperCategories...)
	out = append(out, lowerCategories...)
	return out
}

// UpperCategories returns the six face-value categories.
func UpperCategories() []Category { return append([]Category(nil), upperCategories...) }

// LowerCategories returns the seven combination categories.
func LowerCategories() []Category { return append([]Category(nil), lowerCategories...) }

// Valid reports whether c names a real category.
func Valid(c Category) bool {
	if _, ok := upperFace[c]; ok {
		return true
	}
	for _, lc := range lowerCategories {
		if c == lc {
			return true
		}
	}
	return false
}

// Score computes the point value of values for category. It is a pure, total
// function: an unknown category scores 0.
func Score(values [dice.NumDice]int, category Category) int {
	counts := faceCounts(values)

	if face, ok := upperFace[category]; ok {
		return counts[face] * face
	}

	switch category {
	case ThreeOfAKind:
		if hasNOfAKind(counts, 3) {
			return sum(values)
		}
		return 0
	case FourOfAKind:
		if hasNOfAKind(counts, 4) {
			return sum(values)
		}
		return 0
	case FullHouse:
		if isFullHouse(counts) {
			return FullHousePoints
		}
		return 0
	case SmallStraight:
		if hasRun(counts, 4) {
			return SmallStraightPoints
		}
		return 0
	case LargeStraight:
		if hasRun(counts, 5) {
			return LargeStraightPoints
		}
		return 0
	case Yahtzee:
		if hasNOfAKind(counts, 5) {
			return YahtzeePoints
		}
		return 0
	case Chance:
		return sum(values)
	}
	return 0
}

// faceCounts tallies how many dice show each face, indexed 1..6.
func faceCounts(values [dice.NumDice]int) [dice.Faces + 1]int {
	var counts [dice.Faces + 1]int
	for _, v := range values {
		if v >= 1 && v <= dice.Faces {
			counts[v]++
		}
	}
	return counts
}

func hasNOfAKind(counts [dice.Faces + 1]int, n int) bool {
	for _, c := range counts {
		if c >= n {
			return true
		}
	}
	return false
}

// isFullHouse requires exactly a triple and a pair of distinct faces; five of
// a kind does not qualify.
func isFullHouse(counts [dice.Faces + 1]int) bool {
	hasThree, hasTwo := false, false
	for _, c := range counts {
		switch c {
		case 3:
			hasThree = true
		case 2:
			hasTwo = true
		}
	}
	return hasThree && hasTwo
}

// hasRun reports whether the dice cover length consecutive faces.
func hasRun(counts [dice.Faces + 1]int, length int) bool {
	run := 0
	for face := 1; face <= dice.Faces; face++ {
		if counts[face] > 0 {
			run++
			if run >= length {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

func sum(values [dice.NumDice]int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// IsYahtzeeJoker reports whether a rolled Yahtzee would fall under the joker
// rule: five of a kind with the yahtzee category already filled for points.
// The authoritative score path does not enforce joker scoring; this helper
// exists so a client or a future rule variant can surface the option.
func IsYahtzeeJoker(values [dice.NumDice]int, sc *Scorecard) bool {
	if !hasNOfAKind(faceCounts(values), 5) {
		return false
	}
	v, filled := sc.Get(Yahtzee)
	return filled && v > 0
}

// JokerOptions lists the categories a joker Yahtzee could be forced into, in
// priority order: the matching upper category first, then open lower
// categories other than yahtzee itself.
func JokerOptions(values [dice.NumDice]int, sc *Scorecard) []Category {
	if !IsYahtzeeJoker(values, sc) {
		return nil
	}

	var opts []Category
	for _, c := range upperCategories {
		if upperFace[c] == values[0] && sc.CanScore(c) {
			opts = append(opts, c)
		}
	}
	for _, c := range lowerCategories {
		if c == Yahtzee {
			continue
		}
		if sc.CanScore(c) {
			opts = append(opts, c)
		}
	}
	return opts
}
