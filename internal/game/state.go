// internal/game/state.go
package game

import (
	"sort"

	"github.com/cpether/mobile-yahtzee/internal/dice"
	"github.com/cpether/mobile-yahtzee/internal/errs"
	"github.com/cpether/mobile-yahtzee/internal/models"
	"github.com/cpether/mobile-yahtzee/internal/scoring"
	"github.com/google/uuid"
)

// Phase is the coarse game lifecycle visible to clients.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// MaxRolls is the number of rolls a player gets per turn.
const MaxRolls = 3

// State is the authoritative turn and dice state for one started game. It is
// pure game logic: no transport, no timers, no locking. The owning room
// serializes access.
type State struct {
	Players            []*models.Player `json:"players"`
	CurrentPlayerIndex int              `json:"currentPlayerIndex"`
	CurrentTurn        int              `json:"currentTurn"`
	Phase              Phase            `json:"gamePhase"`
	Dice               dice.Set         `json:"dice"`
	RollsRemaining     int              `json:"rollsRemaining"`

	// TurnSeq increments on every turn change. Timer callbacks compare it to
	// detect that the turn they were armed for has already ended.
	TurnSeq int `json:"-"`

	src dice.Source
}

// NewState starts a game over the given seat order. Each player gets a fresh
// scorecard, owned 1:1 and never reassigned. src may be nil to use the
// default crypto-backed dice source.
func NewState(players []*models.Player, src dice.Source) *State {
	// Own copy of the seat slice: the room shrinks its slice in place on
	// leave, and sharing the backing array would shift seats under the game.
	players = append([]*models.Player(nil), players...)
	for _, p := range players {
		p.Scorecard = scoring.NewScorecard()
	}
	return &State{
		Players:        players,
		CurrentTurn:    1,
		Phase:          PhasePlaying,
		Dice:           dice.NewSet(),
		RollsRemaining: MaxRolls,
		src:            src,
	}
}

// CurrentPlayer returns the player whose turn it is, or nil for an empty game.
func (s *State) CurrentPlayer() *models.Player {
	if len(s.Players) == 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// requireTurn rejects actions from anyone but the current-turn player while
// the game is in progress.
func (s *State) requireTurn(sessionID uuid.UUID) error {
	if s.Phase != PhasePlaying {
		return errs.Preconditionf("game is not in progress")
	}
	cur := s.CurrentPlayer()
	if cur == nil || cur.SessionID != sessionID {
		return errs.Preconditionf("not your turn")
	}
	return nil
}

// Roll re-rolls all unheld dice for the current player and consumes one roll.
// The decrement happens here, before any broadcast staging, so a duplicate
// roll during a display delay is rejected by the RollsRemaining check.
func (s *State) Roll(sessionID uuid.UUID) error {
	if err := s.requireTurn(sessionID); err != nil {
		return err
	}
	if s.RollsRemaining <= 0 {
		return errs.Preconditionf("no rolls remaining")
	}
	s.Dice = dice.RollUnheld(s.Dice, s.src)
	s.RollsRemaining--
	return nil
}

// ToggleHold flips the hold flag on one die for the current player. Holding
// is only meaningful once the turn's first roll has happened.
func (s *State) ToggleHold(sessionID uuid.UUID, index int) (bool, error) {
	if err := s.requireTurn(sessionID); err != nil {
		return false, err
	}
	if s.RollsRemaining >= MaxRolls {
		return false, errs.Preconditionf("roll the dice before holding")
	}
	if index < 0 || index >= dice.NumDice {
		return false, errs.Preconditionf("die index out of range")
	}
	s.Dice = dice.ToggleHold(s.Dice, index)
	return s.Dice[index].IsHeld, nil
}

// CommitScore scores the current dice into category for the current player,
// then advances the turn (or finishes the game if every card is complete).
// Returns the committed score.
func (s *State) CommitScore(sessionID uuid.UUID, category scoring.Category) (int, error) {
	if err := s.requireTurn(sessionID); err != nil {
		return 0, err
	}
	if !scoring.Valid(category) {
		return 0, errs.Validationf("unknown category %q", category)
	}
	cur := s.CurrentPlayer()
	if !cur.Scorecard.CanScore(category) {
		return 0, errs.Preconditionf("category %q already scored", category)
	}

	score := scoring.Score(dice.Values(s.Dice), category)
	if err := cur.Scorecard.Fill(category, score); err != nil {
		return 0, err
	}
	s.endTurn()
	return score, nil
}

// ForceAdvance ends an idle player's turn by committing 0 into their first
// unfilled category. Used by the turn timer. Returns the player and category
// that were filled.
func (s *State) ForceAdvance() (*models.Player, scoring.Category, error) {
	if s.Phase != PhasePlaying {
		return nil, "", errs.Preconditionf("game is not in progress")
	}
	cur := s.CurrentPlayer()
	if cur == nil {
		return nil, "", errs.Preconditionf("no current player")
	}
	for _, c := range scoring.Categories() {
		if !cur.Scorecard.CanScore(c) {
			continue
		}
		if err := cur.Scorecard.Fill(c, 0); err != nil {
			return nil, "", err
		}
		s.endTurn()
		return cur, c, nil
	}
	return nil, "", errs.Preconditionf("scorecard already complete")
}

// endTurn finishes the game when every card is full, otherwise rotates to the
// next seat with fresh dice and rolls. Holds are cleared exactly here.
func (s *State) endTurn() {
	s.TurnSeq++
	if s.Complete() {
		s.Phase = PhaseFinished
		return
	}
	s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
	if s.CurrentPlayerIndex == 0 {
		s.CurrentTurn++
	}
	s.RollsRemaining = MaxRolls
	s.Dice = dice.NewSet()
}

// Complete reports whether all 13 categories are filled for every player.
func (s *State) Complete() bool {
	for _, p := range s.Players {
		if p.Scorecard == nil || !p.Scorecard.IsComplete() {
			return false
		}
	}
	return len(s.Players) > 0
}

// RemovePlayer drops a seat mid-game and keeps the turn cursor coherent. If
// the departing player was on turn, the next seat starts fresh.
func (s *State) RemovePlayer(sessionID uuid.UUID) {
	idx := -1
	for i, p := range s.Players {
		if p.SessionID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	wasCurrent := idx == s.CurrentPlayerIndex
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	if len(s.Players) == 0 {
		return
	}

	if idx < s.CurrentPlayerIndex {
		s.CurrentPlayerIndex--
	} else if wasCurrent {
		s.TurnSeq++
		if s.CurrentPlayerIndex >= len(s.Players) {
			s.CurrentPlayerIndex = 0
			s.CurrentTurn++
		}
		s.RollsRemaining = MaxRolls
		s.Dice = dice.NewSet()
	}

	if s.Phase == PhasePlaying && s.Complete() {
		s.Phase = PhaseFinished
	}
}

// Ranking pairs a player with their final placement. Ties share a rank.
type Ranking struct {
	Player     *models.Player `json:"player"`
	GrandTotal int            `json:"grandTotal"`
	Rank       int            `json:"rank"`
}

// Rankings returns players ordered by grand total, highest first.
func (s *State) Rankings() []Ranking {
	ranked := make([]Ranking, 0, len(s.Players))
	for _, p := range s.Players {
		total := 0
		if p.Scorecard != nil {
			total = p.Scorecard.GrandTotal
		}
		ranked = append(ranked, Ranking{Player: p, GrandTotal: total})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].GrandTotal > ranked[j].GrandTotal
	})
	for i := range ranked {
		if i > 0 && ranked[i].GrandTotal == ranked[i-1].GrandTotal {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	return ranked
}
