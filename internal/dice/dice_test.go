// internal/dice/dice_test.go
package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollRange(t *testing.T) {
	src := NewMathSource(42)
	for i := 0; i < 1000; i++ {
		v := Roll(src)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, Faces)
	}
}

// chiSquare computes the goodness-of-fit statistic for n samples against a
// uniform distribution over the six faces.
func chiSquare(counts [Faces]int, n int) float64 {
	expected := float64(n) / Faces
	var chi2 float64
	for _, c := range counts {
		diff := float64(c) - expected
		chi2 += diff * diff / expected
	}
	return chi2
}

func TestRollUniformity(t *testing.T) {
	// 95% critical value for 5 degrees of freedom. A fair source exceeds it
	// about 1 trial in 20, so accept if any of three independent trials pass.
	const critical = 11.07
	const samples = 10000

	passed := false
	for trial := 0; trial < 3 && !passed; trial++ {
		var counts [Faces]int
		for i := 0; i < samples; i++ {
			counts[Roll(defaultSource)-1]++
		}
		if chiSquare(counts, samples) <= critical {
			passed = true
		}
	}
	assert.True(t, passed, "dice distribution failed chi-square test in 3 consecutive trials")
}

func TestNewSet(t *testing.T) {
	s := NewSet()
	for _, d := range s {
		assert.Equal(t, 1, d.Value)
		assert.False(t, d.IsHeld)
		assert.False(t, d.IsRolling)
	}
}

func TestRollUnheldPreservesHeldDice(t *testing.T) {
	src := NewMathSource(7)
	s := NewSet()
	s[0].Value = 6
	s[0].IsHeld = true
	s[3].Value = 2
	s[3].IsHeld = true

	for i := 0; i < 200; i++ {
		s = RollUnheld(s, src)
		assert.Equal(t, 6, s[0].Value, "held die 0 must not change value")
		assert.True(t, s[0].IsHeld, "held die 0 must stay held")
		assert.Equal(t, 2, s[3].Value, "held die 3 must not change value")
		assert.True(t, s[3].IsHeld, "held die 3 must stay held")
	}
}

func TestRollUnheldMarksRolling(t *testing.T) {
	src := NewMathSource(7)
	s := NewSet()
	s[1].IsHeld = true

	out := RollUnheld(s, src)
	assert.False(t, out[1].IsRolling)
	for i, d := range out {
		if i == 1 {
			continue
		}
		assert.True(t, d.IsRolling)
	}
}

func TestToggleHoldIsSelfInverse(t *testing.T) {
	s := NewSet()
	for i := 0; i < NumDice; i++ {
		once := ToggleHold(s, i)
		assert.True(t, once[i].IsHeld)
		twice := ToggleHold(once, i)
		assert.Equal(t, s, twice)
	}
}

func TestToggleHoldOutOfRangeIsNoOp(t *testing.T) {
	s := RollUnheld(NewSet(), NewMathSource(1))
	assert.Equal(t, s, ToggleHold(s, -1))
	assert.Equal(t, s, ToggleHold(s, NumDice))
	assert.Equal(t, s, ToggleHold(s, 100))
}

func TestClearHolds(t *testing.T) {
	s := NewSet()
	s[0].IsHeld = true
	s[4].IsHeld = true
	s[2].IsRolling = true

	out := ClearHolds(s)
	for _, d := range out {
		assert.False(t, d.IsHeld)
		assert.False(t, d.IsRolling)
	}
}

func TestFromValuesClamps(t *testing.T) {
	s := FromValues([NumDice]int{0, 7, 3, -2, 6})
	assert.Equal(t, [NumDice]int{1, 6, 3, 1, 6}, Values(s))
}
