// internal/scoring/scoring_test.go
package scoring

import (
	"testing"

	"github.com/cpether/mobile-yahtzee/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreUpperSection(t *testing.T) {
	tests := []struct {
		name     string
		values   [dice.NumDice]int
		category Category
		want     int
	}{
		{"three ones", [5]int{1, 1, 1, 4, 5}, Ones, 3},
		{"no twos", [5]int{1, 3, 4, 5, 6}, Twos, 0},
		{"all sixes", [5]int{6, 6, 6, 6, 6}, Sixes, 30},
		{"two fours", [5]int{4, 4, 1, 2, 3}, Fours, 8},
		{"single five", [5]int{5, 1, 2, 3, 6}, Fives, 5},
		{"two threes", [5]int{3, 3, 1, 1, 2}, Threes, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.values, tt.category))
		})
	}
}

func TestScoreLowerSection(t *testing.T) {
	tests := []struct {
		name     string
		values   [dice.NumDice]int
		category Category
		want     int
	}{
		{"three of a kind hits", [5]int{3, 3, 3, 1, 2}, ThreeOfAKind, 12},
		{"three of a kind misses", [5]int{3, 3, 2, 1, 4}, ThreeOfAKind, 0},
		{"four of a kind counts fives", [5]int{5, 5, 5, 5, 2}, FourOfAKind, 22},
		{"four of a kind misses", [5]int{5, 5, 5, 2, 2}, FourOfAKind, 0},
		{"full house", [5]int{2, 2, 3, 3, 3}, FullHouse, 25},
		{"full house rejects yahtzee", [5]int{4, 4, 4, 4, 4}, FullHouse, 0},
		{"full house rejects two pair", [5]int{2, 2, 3, 3, 5}, FullHouse, 0},
		{"small straight low", [5]int{1, 2, 3, 4, 6}, SmallStraight, 30},
		{"small straight high", [5]int{3, 4, 5, 6, 6}, SmallStraight, 30},
		{"small straight inside large", [5]int{1, 2, 3, 4, 5}, SmallStraight, 30},
		{"small straight misses", [5]int{1, 2, 3, 5, 6}, SmallStraight, 0},
		{"large straight low", [5]int{1, 2, 3, 4, 5}, LargeStraight, 40},
		{"large straight high", [5]int{2, 3, 4, 5, 6}, LargeStraight, 40},
		{"large straight with pair", [5]int{2, 3, 4, 5, 5}, LargeStraight, 0},
		{"yahtzee", [5]int{6, 6, 6, 6, 6}, Yahtzee, 50},
		{"not yahtzee", [5]int{6, 6, 6, 6, 5}, Yahtzee, 0},
		{"chance sums everything", [5]int{1, 2, 3, 4, 5}, Chance, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.values, tt.category))
		})
	}
}

func TestScoreIsPureAndTotal(t *testing.T) {
	values := [dice.NumDice]int{2, 2, 3, 3, 3}
	for _, c := range Categories() {
		first := Score(values, c)
		assert.Equal(t, first, Score(values, c), "Score must be deterministic for %s", c)
	}
	assert.Len(t, Categories(), NumCategories)
	assert.Equal(t, 0, Score(values, Category("bogus")))
}

func TestScorecardFillImmutable(t *testing.T) {
	sc := NewScorecard()
	require.NoError(t, sc.Fill(Ones, 3))
	assert.Error(t, sc.Fill(Ones, 5), "filled category must stay immutable")
	v, ok := sc.Get(Ones)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Error(t, sc.Fill(Category("nope"), 1))
}

func TestScorecardCanScore(t *testing.T) {
	sc := NewScorecard()
	assert.True(t, sc.CanScore(Chance))
	require.NoError(t, sc.Fill(Chance, 20))
	assert.False(t, sc.CanScore(Chance))
	assert.False(t, sc.CanScore(Category("bogus")))
}

func TestUpperBonusBoundary(t *testing.T) {
	// Exactly 63: three of each face.
	sc := NewScorecard()
	require.NoError(t, sc.Fill(Ones, 3))
	require.NoError(t, sc.Fill(Twos, 6))
	require.NoError(t, sc.Fill(Threes, 9))
	require.NoError(t, sc.Fill(Fours, 12))
	require.NoError(t, sc.Fill(Fives, 15))
	require.NoError(t, sc.Fill(Sixes, 18))
	assert.Equal(t, 63, sc.UpperSectionTotal)
	assert.Equal(t, UpperBonusPoints, sc.UpperSectionBonus)

	// One point short: no bonus.
	sc2 := NewScorecard()
	require.NoError(t, sc2.Fill(Ones, 3))
	require.NoError(t, sc2.Fill(Twos, 6))
	require.NoError(t, sc2.Fill(Threes, 9))
	require.NoError(t, sc2.Fill(Fours, 12))
	require.NoError(t, sc2.Fill(Fives, 15))
	require.NoError(t, sc2.Fill(Sixes, 17))
	assert.Equal(t, 62, sc2.UpperSectionTotal)
	assert.Equal(t, 0, sc2.UpperSectionBonus)
}

func TestGrandTotalRoundTrip(t *testing.T) {
	sc := NewScorecard()
	fills := map[Category]int{
		Ones: 3, Twos: 6, Threes: 9, Fours: 12, Fives: 15, Sixes: 18, // 63 upper -> +35
		ThreeOfAKind: 20, FourOfAKind: 25, FullHouse: 25,
		SmallStraight: 30, LargeStraight: 40, Yahtzee: 50, Chance: 22,
	}
	for c, v := range fills {
		require.NoError(t, sc.Fill(c, v))
	}
	require.True(t, sc.IsComplete())

	// 63 + 35 + (20+25+25+30+40+50+22) = 310
	assert.Equal(t, 310, sc.GrandTotal)
	assert.Equal(t, sc.UpperSectionTotal+sc.UpperSectionBonus+sc.LowerSectionTotal, sc.GrandTotal)
}

func TestYahtzeeBonusCounting(t *testing.T) {
	sc := NewScorecard()
	require.NoError(t, sc.Fill(Yahtzee, 50))
	assert.Equal(t, 1, sc.YahtzeeCount)
	assert.Equal(t, 50, sc.GrandTotal)

	// The bonus only applies beyond the first Yahtzee.
	sc.YahtzeeCount = 3
	require.NoError(t, sc.Fill(Chance, 30))
	assert.Equal(t, 50+30+2*YahtzeeBonusPoints, sc.GrandTotal)

	// A zeroed Yahtzee never counts.
	sc2 := NewScorecard()
	require.NoError(t, sc2.Fill(Yahtzee, 0))
	assert.Equal(t, 0, sc2.YahtzeeCount)
}

func TestJokerHelpers(t *testing.T) {
	values := [dice.NumDice]int{4, 4, 4, 4, 4}

	sc := NewScorecard()
	assert.False(t, IsYahtzeeJoker(values, sc), "no joker before yahtzee is filled")

	require.NoError(t, sc.Fill(Yahtzee, 50))
	assert.True(t, IsYahtzeeJoker(values, sc))
	assert.False(t, IsYahtzeeJoker([dice.NumDice]int{4, 4, 4, 4, 5}, sc))

	opts := JokerOptions(values, sc)
	require.NotEmpty(t, opts)
	assert.Equal(t, Fours, opts[0], "matching upper category has priority")
	assert.NotContains(t, opts, Yahtzee)

	// Zero-scored yahtzee disables the joker path.
	scZero := NewScorecard()
	require.NoError(t, scZero.Fill(Yahtzee, 0))
	assert.False(t, IsYahtzeeJoker(values, scZero))
	assert.Nil(t, JokerOptions(values, scZero))
}
