// internal/game/state_test.go
package game

import (
	"fmt"
	"testing"

	"github.com/cpether/mobile-yahtzee/internal/dice"
	"github.com/cpether/mobile-yahtzee/internal/errs"
	"github.com/cpether/mobile-yahtzee/internal/models"
	"github.com/cpether/mobile-yahtzee/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayers(n int) []*models.Player {
	players := make([]*models.Player, n)
	for i := 0; i < n; i++ {
		players[i] = models.NewPlayer(uuidFor(i), fmt.Sprintf("Player %d", i+1), i, i == 0)
	}
	return players
}

func uuidFor(i int) [16]byte {
	var id [16]byte
	id[15] = byte(i + 1)
	return id
}

func newTestState(t *testing.T, n int) *State {
	t.Helper()
	s := NewState(newTestPlayers(n), dice.NewMathSource(99))
	require.Equal(t, PhasePlaying, s.Phase)
	require.Equal(t, MaxRolls, s.RollsRemaining)
	require.Equal(t, 1, s.CurrentTurn)
	return s
}

func TestNewStateCreatesScorecards(t *testing.T) {
	s := newTestState(t, 3)
	for _, p := range s.Players {
		require.NotNil(t, p.Scorecard)
		assert.Empty(t, p.Scorecard.Scores)
	}
}

func TestNewStateOwnsSeatSlice(t *testing.T) {
	players := newTestPlayers(2)
	s := NewState(players, dice.NewMathSource(1))

	// Shrinking the caller's slice in place must not disturb the game's seats.
	trimmed := append(players[:0], players[1])
	require.Len(t, trimmed, 1)
	require.Len(t, s.Players, 2)
	assert.NotEqual(t, s.Players[0].SessionID, s.Players[1].SessionID)
}

func TestRollConsumesRolls(t *testing.T) {
	s := newTestState(t, 2)
	current := s.CurrentPlayer()

	for want := MaxRolls - 1; want >= 0; want-- {
		require.NoError(t, s.Roll(current.SessionID))
		assert.Equal(t, want, s.RollsRemaining)
	}

	err := s.Roll(current.SessionID)
	require.Error(t, err)
	var pe *errs.PreconditionError
	assert.ErrorAs(t, err, &pe)
}

func TestOutOfTurnActionsRejected(t *testing.T) {
	s := newTestState(t, 2)
	intruder := s.Players[1].SessionID
	before := *s

	var pe *errs.PreconditionError
	err := s.Roll(intruder)
	assert.ErrorAs(t, err, &pe)

	_, err = s.ToggleHold(intruder, 0)
	assert.ErrorAs(t, err, &pe)

	_, err = s.CommitScore(intruder, scoring.Chance)
	assert.ErrorAs(t, err, &pe)

	assert.Equal(t, before.CurrentPlayerIndex, s.CurrentPlayerIndex)
	assert.Equal(t, before.RollsRemaining, s.RollsRemaining)
	assert.Equal(t, before.Dice, s.Dice)
	assert.Empty(t, s.Players[1].Scorecard.Scores)
}

func TestHoldRequiresFirstRoll(t *testing.T) {
	s := newTestState(t, 2)
	current := s.CurrentPlayer()

	_, err := s.ToggleHold(current.SessionID, 0)
	var pe *errs.PreconditionError
	require.ErrorAs(t, err, &pe, "hold before the first roll must be rejected")

	require.NoError(t, s.Roll(current.SessionID))
	held, err := s.ToggleHold(current.SessionID, 0)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = s.ToggleHold(current.SessionID, 0)
	require.NoError(t, err)
	assert.False(t, held, "toggling twice releases the die")
}

func TestHoldIndexOutOfRange(t *testing.T) {
	s := newTestState(t, 2)
	current := s.CurrentPlayer()
	require.NoError(t, s.Roll(current.SessionID))

	before := s.Dice
	_, err := s.ToggleHold(current.SessionID, dice.NumDice)
	var pe *errs.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, before, s.Dice, "rejected hold must not mutate dice")
}

func TestCommitScoreAdvancesTurn(t *testing.T) {
	s := newTestState(t, 2)
	first := s.CurrentPlayer()
	require.NoError(t, s.Roll(first.SessionID))
	_, err := s.ToggleHold(first.SessionID, 0)
	require.NoError(t, err)

	score, err := s.CommitScore(first.SessionID, scoring.Chance)
	require.NoError(t, err)
	got, filled := first.Scorecard.Get(scoring.Chance)
	require.True(t, filled)
	assert.Equal(t, got, score)

	assert.Equal(t, 1, s.CurrentPlayerIndex, "turn advances by exactly one")
	assert.Equal(t, MaxRolls, s.RollsRemaining)
	assert.Equal(t, 1, s.CurrentTurn, "round counter unchanged until wrap")
	for _, d := range s.Dice {
		assert.False(t, d.IsHeld, "holds clear on commit")
	}
}

func TestTurnWrapsIncrementRound(t *testing.T) {
	s := newTestState(t, 2)
	for _, p := range []*models.Player{s.Players[0], s.Players[1]} {
		require.NoError(t, s.Roll(p.SessionID))
		_, err := s.CommitScore(p.SessionID, scoring.Chance)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, 2, s.CurrentTurn)
}

func TestCommitScoreRejectsFilledCategory(t *testing.T) {
	s := newTestState(t, 2)

	p0 := s.Players[0]
	require.NoError(t, s.Roll(p0.SessionID))
	_, err := s.CommitScore(p0.SessionID, scoring.Chance)
	require.NoError(t, err)

	p1 := s.Players[1]
	require.NoError(t, s.Roll(p1.SessionID))
	_, err = s.CommitScore(p1.SessionID, scoring.Chance)
	require.NoError(t, err)

	// Back to player 0, chance is taken.
	require.NoError(t, s.Roll(p0.SessionID))
	before := s.CurrentPlayerIndex
	_, err = s.CommitScore(p0.SessionID, scoring.Chance)
	var pe *errs.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, before, s.CurrentPlayerIndex, "rejected commit must not advance")
}

func TestCommitScoreRejectsUnknownCategory(t *testing.T) {
	s := newTestState(t, 2)
	p0 := s.CurrentPlayer()
	require.NoError(t, s.Roll(p0.SessionID))
	_, err := s.CommitScore(p0.SessionID, scoring.Category("bogus"))
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)
}

// playFullGame commits every category for every player in seat order.
func playFullGame(t *testing.T, s *State) {
	t.Helper()
	for !s.Complete() {
		cur := s.CurrentPlayer()
		require.NoError(t, s.Roll(cur.SessionID))
		committed := false
		for _, c := range scoring.Categories() {
			if cur.Scorecard.CanScore(c) {
				_, err := s.CommitScore(cur.SessionID, c)
				require.NoError(t, err)
				committed = true
				break
			}
		}
		require.True(t, committed)
	}
}

func TestFullGameFinishes(t *testing.T) {
	s := newTestState(t, 2)
	playFullGame(t, s)

	assert.Equal(t, PhaseFinished, s.Phase)
	for _, p := range s.Players {
		assert.True(t, p.Scorecard.IsComplete())
	}

	ranked := s.Rankings()
	require.Len(t, ranked, 2)
	assert.GreaterOrEqual(t, ranked[0].GrandTotal, ranked[1].GrandTotal)
	assert.Equal(t, 1, ranked[0].Rank)
}

func TestRankingsTieShareRank(t *testing.T) {
	s := newTestState(t, 3)
	for i, total := range []int{40, 40, 10} {
		sc := scoring.NewScorecard()
		require.NoError(t, sc.Fill(scoring.Chance, total))
		s.Players[i].Scorecard = sc
	}
	ranked := s.Rankings()
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 1, ranked[1].Rank)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestForceAdvanceFillsFirstOpenCategory(t *testing.T) {
	s := newTestState(t, 2)
	idle := s.CurrentPlayer()

	p, cat, err := s.ForceAdvance()
	require.NoError(t, err)
	assert.Equal(t, idle, p)
	assert.Equal(t, scoring.Ones, cat)
	v, filled := idle.Scorecard.Get(scoring.Ones)
	require.True(t, filled)
	assert.Equal(t, 0, v)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, MaxRolls, s.RollsRemaining)
}

func TestRemovePlayerBeforeCurrent(t *testing.T) {
	s := newTestState(t, 3)
	// Advance to player 1's turn.
	require.NoError(t, s.Roll(s.Players[0].SessionID))
	_, err := s.CommitScore(s.Players[0].SessionID, scoring.Chance)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentPlayerIndex)

	onTurn := s.CurrentPlayer()
	s.RemovePlayer(s.Players[0].SessionID)
	assert.Equal(t, onTurn, s.CurrentPlayer(), "cursor follows the same player after removal")
}

func TestRemoveCurrentPlayerResetsTurn(t *testing.T) {
	s := newTestState(t, 3)
	cur := s.CurrentPlayer()
	require.NoError(t, s.Roll(cur.SessionID))

	s.RemovePlayer(cur.SessionID)
	require.Len(t, s.Players, 2)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, MaxRolls, s.RollsRemaining)
	for _, d := range s.Dice {
		assert.False(t, d.IsHeld)
	}
}

func TestRemoveLastSeatWrapsRound(t *testing.T) {
	s := newTestState(t, 2)
	// Put the cursor on the last seat.
	require.NoError(t, s.Roll(s.Players[0].SessionID))
	_, err := s.CommitScore(s.Players[0].SessionID, scoring.Chance)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentPlayerIndex)

	s.RemovePlayer(s.Players[1].SessionID)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, 2, s.CurrentTurn)
}
