// internal/room/room.go
package room

import (
	"strings"
	"sync"
	"time"

	"github.com/cpether/mobile-yahtzee/internal/dice"
	"github.com/cpether/mobile-yahtzee/internal/errs"
	"github.com/cpether/mobile-yahtzee/internal/events"
	"github.com/cpether/mobile-yahtzee/internal/game"
	"github.com/cpether/mobile-yahtzee/internal/models"
	"github.com/google/uuid"
)

// Status is the room lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusReady    Status = "ready"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// MaxPlayers is the hard cap on seats per room.
const MaxPlayers = 6

// MinPlayersToStart is the minimum seat count before a game can begin.
const MinPlayersToStart = 2

// Settings are the per-room options fixed at creation.
type Settings struct {
	MaxPlayers        int  `json:"maxPlayers"`
	AllowReconnection bool `json:"allowReconnection"`
	TurnTimerSec      int  `json:"turnTimerSec"` // 0 disables the timer
}

// DefaultSettings mirrors the stock room configuration.
func DefaultSettings() Settings {
	return Settings{MaxPlayers: MaxPlayers, AllowReconnection: true, TurnTimerSec: 0}
}

// Room is the unit of authoritative state: its mutex serializes every action
// touching the room, which gives each action run-to-completion semantics
// without any global lock.
//
// Methods with an Unsafe suffix assume the caller holds Mu.
type Room struct {
	Code          string
	HostSessionID uuid.UUID
	Status        Status
	Players       []*models.Player
	Settings      Settings
	Game          *game.State

	CreatedAt      time.Time
	LastActivityAt time.Time

	// Conns holds the live connections observing this room.
	Conns map[uuid.UUID]*Conn

	// TurnTimer force-advances an idle player when Settings.TurnTimerSec > 0.
	TurnTimer *time.Timer

	// OnEmpty fires after the last player is removed. Typically wired to
	// Registry.Deregister by the code that created the room.
	OnEmpty func(code string)

	Mu sync.Mutex
}

// New creates an empty room in the waiting state.
func New(code string, settings Settings) *Room {
	if settings.MaxPlayers <= 0 || settings.MaxPlayers > MaxPlayers {
		settings.MaxPlayers = MaxPlayers
	}
	now := time.Now()
	return &Room{
		Code:           code,
		Status:         StatusWaiting,
		Settings:       settings,
		CreatedAt:      now,
		LastActivityAt: now,
		Conns:          make(map[uuid.UUID]*Conn),
	}
}

// TouchUnsafe records that an action was accepted.
func (r *Room) TouchUnsafe() {
	r.LastActivityAt = time.Now()
}

// FindPlayerUnsafe returns the seat owned by sessionID, or nil.
func (r *Room) FindPlayerUnsafe(sessionID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

// AddPlayerUnsafe validates and seats a new player. Join order is turn order.
func (r *Room) AddPlayerUnsafe(sessionID uuid.UUID, rawName string, isHost bool) (*models.Player, error) {
	name, err := models.CleanName(rawName)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusReady {
		return nil, errs.Preconditionf("room is ready to start")
	}
	if r.Status != StatusWaiting {
		return nil, errs.Preconditionf("game has already started")
	}
	if len(r.Players) >= r.Settings.MaxPlayers {
		return nil, errs.Preconditionf("room is full")
	}
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, errs.Preconditionf("player name already taken")
		}
	}

	player := models.NewPlayer(sessionID, name, len(r.Players), isHost)
	r.Players = append(r.Players, player)
	if isHost {
		r.HostSessionID = sessionID
	}
	r.recalcStatusUnsafe()
	r.TouchUnsafe()
	return player, nil
}

// SetReadyUnsafe flips a player's ready flag and re-evaluates the
// waiting/ready transition.
func (r *Room) SetReadyUnsafe(sessionID uuid.UUID, ready bool) error {
	p := r.FindPlayerUnsafe(sessionID)
	if p == nil {
		return errs.Preconditionf("you are not a member of this room")
	}
	p.IsReady = ready
	r.recalcStatusUnsafe()
	r.TouchUnsafe()
	return nil
}

// recalcStatusUnsafe applies the waiting<->ready rule. Playing and finished
// rooms are untouched.
func (r *Room) recalcStatusUnsafe() {
	if r.Status != StatusWaiting && r.Status != StatusReady {
		return
	}
	if len(r.Players) >= MinPlayersToStart && r.allReadyUnsafe() {
		r.Status = StatusReady
	} else {
		r.Status = StatusWaiting
	}
}

func (r *Room) allReadyUnsafe() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return len(r.Players) > 0
}

// StartGameUnsafe transitions ready->playing. Only the host may start.
func (r *Room) StartGameUnsafe(sessionID uuid.UUID, src dice.Source) error {
	if sessionID != r.HostSessionID {
		return errs.Preconditionf("only the host can start the game")
	}
	if r.Status != StatusReady {
		return errs.Preconditionf("cannot start game - not all players ready")
	}
	r.Game = game.NewState(r.Players, src)
	r.Status = StatusPlaying
	r.TouchUnsafe()
	return nil
}

// RemovePlayerUnsafe takes a player out of the room, reassigning the host to
// the lowest surviving turn order if needed. Returns the removed player and
// the new host, if one was promoted. The caller is responsible for invoking
// OnEmpty (via EmptyUnsafe) after releasing the lock.
func (r *Room) RemovePlayerUnsafe(sessionID uuid.UUID) (removed, newHost *models.Player) {
	idx := -1
	for i, p := range r.Players {
		if p.SessionID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	removed = r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if r.Game != nil {
		r.Game.RemovePlayer(sessionID)
		if r.Game.Phase == game.PhaseFinished && r.Status == StatusPlaying {
			r.Status = StatusFinished
		}
	}

	if removed.IsHost && len(r.Players) > 0 {
		newHost = r.Players[0]
		for _, p := range r.Players[1:] {
			if p.TurnOrder < newHost.TurnOrder {
				newHost = p
			}
		}
		newHost.IsHost = true
		r.HostSessionID = newHost.SessionID
	}

	r.recalcStatusUnsafe()
	r.TouchUnsafe()
	return removed, newHost
}

// MarkDisconnectedUnsafe flags a seat as disconnected without removing it.
// Used during play when reconnection is allowed.
func (r *Room) MarkDisconnectedUnsafe(sessionID uuid.UUID) *models.Player {
	p := r.FindPlayerUnsafe(sessionID)
	if p == nil {
		return nil
	}
	p.IsConnected = false
	r.TouchUnsafe()
	return p
}

// ReconnectUnsafe restores a disconnected seat.
func (r *Room) ReconnectUnsafe(sessionID uuid.UUID) (*models.Player, error) {
	p := r.FindPlayerUnsafe(sessionID)
	if p == nil {
		return nil, errs.NotFoundf("no such seat in this room")
	}
	if p.IsConnected {
		return nil, errs.Preconditionf("seat is still connected")
	}
	p.IsConnected = true
	r.TouchUnsafe()
	return p, nil
}

// EmptyUnsafe reports whether the last player has left.
func (r *Room) EmptyUnsafe() bool {
	return len(r.Players) == 0
}

// AddConnUnsafe registers a live connection with the room.
func (r *Room) AddConnUnsafe(c *Conn) {
	r.Conns[c.SessionID] = c
}

// RemoveConnUnsafe drops a connection from the broadcast set.
func (r *Room) RemoveConnUnsafe(sessionID uuid.UUID) {
	delete(r.Conns, sessionID)
}

// BroadcastUnsafe sends ev to every connection in the room. Writes are
// non-blocking; a slow consumer drops messages rather than stalling dispatch.
func (r *Room) BroadcastUnsafe(ev events.Event) {
	for _, c := range r.Conns {
		c.Write(ev)
	}
}

// SendToUnsafe sends ev to a single session if it is connected.
func (r *Room) SendToUnsafe(sessionID uuid.UUID, ev events.Event) {
	if c, ok := r.Conns[sessionID]; ok {
		c.Write(ev)
	}
}

// StopTurnTimerUnsafe cancels a pending force-advance, if armed.
func (r *Room) StopTurnTimerUnsafe() {
	if r.TurnTimer != nil {
		r.TurnTimer.Stop()
		r.TurnTimer = nil
	}
}

// Snapshot is the full JSON view of a room sent in room-created/room-joined
// events and the debug endpoint.
type Snapshot struct {
	Code         string           `json:"code"`
	HostID       uuid.UUID        `json:"hostId"`
	Status       Status           `json:"status"`
	Players      []*models.Player `json:"players"`
	GameState    *game.State      `json:"gameState,omitempty"`
	Settings     Settings         `json:"settings"`
	CreatedAt    time.Time        `json:"createdAt"`
	LastActivity time.Time        `json:"lastActivity"`
}

// SnapshotUnsafe captures the room for broadcast.
func (r *Room) SnapshotUnsafe() Snapshot {
	return Snapshot{
		Code:         r.Code,
		HostID:       r.HostSessionID,
		Status:       r.Status,
		Players:      r.Players,
		GameState:    r.Game,
		Settings:     r.Settings,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivityAt,
	}
}
