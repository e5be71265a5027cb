// internal/dice/dice.go
package dice

import (
	"crypto/rand"
	"encoding/binary"
	"log"
	mrand "math/rand"
	"sync"
)

// NumDice is the fixed size of a Yahtzee dice set.
const NumDice = 5

// Faces is the number of faces per die.
const Faces = 6

// Die is a single six-sided die. IsRolling is a transient display hint for
// clients and carries no game meaning.
type Die struct {
	Value     int  `json:"value"`
	IsHeld    bool `json:"isHeld"`
	IsRolling bool `json:"isRolling"`
}

// Set is a full hand of dice. Value semantics: transformations return a new Set
// and never mutate their input.
type Set [NumDice]Die

// Source yields raw 32-bit randomness for die rolls. Both the crypto-backed
// source and the math/rand fallback satisfy it, so callers are unaffected by
// which one is active.
type Source interface {
	Uint32() uint32
}

// cryptoSource reads from crypto/rand, falling back to math/rand on a read
// error so a roll can never fail.
type cryptoSource struct {
	mu       sync.Mutex
	fallback *mrand.Rand
	degraded bool
}

func (s *cryptoSource) Uint32() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.degraded {
			log.Printf("dice: crypto source unavailable (%v), falling back to math/rand", err)
			s.degraded = true
		}
		return s.fallback.Uint32()
	}
	return binary.BigEndian.Uint32(buf[:])
}

// mathSource is the lower-quality substitute, kept exported-equivalent through
// the Source interface for tests that need determinism.
type mathSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func (s *mathSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Uint32()
}

// NewMathSource returns a deterministic Source seeded with seed.
func NewMathSource(seed int64) Source {
	return &mathSource{r: mrand.New(mrand.NewSource(seed))}
}

// defaultSource is used by the package-level helpers.
var defaultSource Source = &cryptoSource{fallback: mrand.New(mrand.NewSource(1))}

// Roll returns a uniformly distributed face value in 1..Faces from src.
func Roll(src Source) int {
	return int(src.Uint32()%Faces) + 1
}

// NewSet returns the initial dice state: all showing 1, nothing held.
func NewSet() Set {
	var s Set
	for i := range s {
		s[i].Value = 1
	}
	return s
}

// RollUnheld re-rolls every die with IsHeld=false using src and marks it
// rolling; held dice pass through untouched. src may be nil to use the
// default crypto-backed source.
func RollUnheld(s Set, src Source) Set {
	if src == nil {
		src = defaultSource
	}
	out := s
	for i := range out {
		if out[i].IsHeld {
			out[i].IsRolling = false
			continue
		}
		out[i].Value = Roll(src)
		out[i].IsRolling = true
	}
	return out
}

// ToggleHold flips the hold flag of the die at index. An out-of-range index
// returns the set unchanged; clients can race a hold tap against a turn
// change, so this is deliberately not an error.
func ToggleHold(s Set, index int) Set {
	if index < 0 || index >= NumDice {
		return s
	}
	out := s
	out[index].IsHeld = !out[index].IsHeld
	return out
}

// ClearHolds releases every die and clears the rolling flag, ready for the
// next player's turn.
func ClearHolds(s Set) Set {
	out := s
	for i := range out {
		out[i].IsHeld = false
		out[i].IsRolling = false
	}
	return out
}

// Values extracts the face values in positional order.
func Values(s Set) [NumDice]int {
	var v [NumDice]int
	for i, d := range s {
		v[i] = d.Value
	}
	return v
}

// FromValues builds a Set from explicit face values, clamped to the legal
// range. Intended for tests and snapshot restoration.
func FromValues(values [NumDice]int) Set {
	var s Set
	for i, v := range values {
		if v < 1 {
			v = 1
		}
		if v > Faces {
			v = Faces
		}
		s[i].Value = v
	}
	return s
}
