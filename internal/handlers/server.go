// internal/handlers/server.go
package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cpether/mobile-yahtzee/internal/auth"
	"github.com/cpether/mobile-yahtzee/internal/cache"
	"github.com/cpether/mobile-yahtzee/internal/dice"
	"github.com/cpether/mobile-yahtzee/internal/room"
)

// DefaultRollDelay is how long clients see the dice tumbling between the
// rolling-started and rolled events.
const DefaultRollDelay = 2 * time.Second

// Server holds the shared state behind every WebSocket and HTTP handler: the
// room registry, the rejoin token issuer, and the optional Redis action
// journal.
type Server struct {
	Logger   *logrus.Logger
	Registry *room.Registry
	Tokens   *auth.TokenIssuer

	// Journal is best-effort. nil disables action journaling entirely.
	Journal *cache.Journal

	// RollDelay separates the two dice broadcast phases. Zero collapses them
	// into one synchronous exchange, which tests rely on.
	RollDelay time.Duration

	// Schedule runs fn after d. The default uses time.AfterFunc, except that a
	// non-positive d runs fn inline.
	Schedule func(d time.Duration, fn func())

	// DiceSrc seeds new games. nil selects the crypto-backed default.
	DiceSrc dice.Source

	StartedAt time.Time
}

// NewServer wires a Server with the production defaults. journal may be nil.
func NewServer(logger *logrus.Logger, registry *room.Registry, tokens *auth.TokenIssuer, journal *cache.Journal) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if registry == nil {
		registry = room.NewRegistry(nil)
	}
	return &Server{
		Logger:    logger,
		Registry:  registry,
		Tokens:    tokens,
		Journal:   journal,
		RollDelay: DefaultRollDelay,
		Schedule:  defaultSchedule,
		StartedAt: time.Now(),
	}
}

func defaultSchedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}

// journalAction queues one accepted action for the historian. Failures are
// logged and swallowed; the journal never gates gameplay.
func (s *Server) journalAction(rec cache.ActionRecord) {
	if s.Journal == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.Journal.Publish(ctx, rec); err != nil {
			s.Logger.Warnf("journal publish failed for room %s action %s: %v", rec.RoomCode, rec.ActionType, err)
		}
	}()
}
