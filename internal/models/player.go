// internal/models/player.go
package models

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cpether/mobile-yahtzee/internal/errs"
	"github.com/cpether/mobile-yahtzee/internal/scoring"
	"github.com/google/uuid"
)

// PlayerColors is the fixed palette assigned by join order.
var PlayerColors = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD"}

const (
	MinNameLen = 2
	MaxNameLen = 20
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// Player is one participant in a room. SessionID is the connection-scoped
// identity assigned when the player joins; it survives a reconnect because a
// rejoining connection adopts it.
type Player struct {
	SessionID   uuid.UUID          `json:"sessionId"`
	Name        string             `json:"name"`
	Color       string             `json:"color"`
	Avatar      string             `json:"avatar"`
	IsHost      bool               `json:"isHost"`
	IsReady     bool               `json:"isReady"`
	IsConnected bool               `json:"isConnected"`
	TurnOrder   int                `json:"turnOrder"`
	Scorecard   *scoring.Scorecard `json:"scorecard,omitempty"`
}

// NewPlayer builds a player at the given seat. The host defaults to ready.
func NewPlayer(sessionID uuid.UUID, name string, turnOrder int, isHost bool) *Player {
	return &Player{
		SessionID:   sessionID,
		Name:        name,
		Color:       PlayerColors[turnOrder%len(PlayerColors)],
		Avatar:      AvatarFor(name),
		IsHost:      isHost,
		IsReady:     isHost,
		IsConnected: true,
		TurnOrder:   turnOrder,
	}
}

// AvatarFor derives the one-rune avatar from a player name.
func AvatarFor(name string) string {
	for _, r := range name {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// CleanName trims and validates a requested player name, returning the
// canonical form or a ValidationError.
func CleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errs.Validationf("player name is required")
	}
	if len(name) < MinNameLen {
		return "", errs.Validationf("player name must be at least %d characters", MinNameLen)
	}
	if len(name) > MaxNameLen {
		return "", errs.Validationf("player name must be %d characters or less", MaxNameLen)
	}
	if !namePattern.MatchString(name) {
		return "", errs.Validationf("player name can only contain letters, numbers, and spaces")
	}
	return name, nil
}
