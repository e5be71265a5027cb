// internal/handlers/dispatcher.go
package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/cpether/mobile-yahtzee/internal/cache"
	"github.com/cpether/mobile-yahtzee/internal/events"
	"github.com/cpether/mobile-yahtzee/internal/room"
	"github.com/cpether/mobile-yahtzee/internal/scoring"
)

// InboundMessage is the envelope for every client-to-server action. Fields
// beyond Type are populated per action; irrelevant ones are ignored.
type InboundMessage struct {
	Type string `json:"type"`

	// create-room / join-room
	PlayerName string         `json:"playerName,omitempty"`
	RoomCode   string         `json:"roomCode,omitempty"`
	Settings   *room.Settings `json:"settings,omitempty"`

	// player-ready
	IsReady bool `json:"isReady,omitempty"`

	// hold-die
	DieIndex int `json:"dieIndex"`

	// select-score
	Category string `json:"category,omitempty"`

	// rejoin-room
	Token string `json:"token,omitempty"`
}

// Dispatch routes one decoded client action. Every action runs to completion
// under its room's lock before the next is admitted, so handlers never observe
// partially applied state. A panic in a handler is confined to the triggering
// sender.
func (s *Server) Dispatch(c *room.Conn, msg InboundMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			s.Logger.Errorf("panic handling %q from session %s: %v", msg.Type, c.SessionID, rec)
			c.WriteError(events.TypeGameError, "internal server error")
		}
	}()

	switch msg.Type {
	case "create-room":
		s.handleCreateRoom(c, msg)
	case "join-room":
		s.handleJoinRoom(c, msg)
	case "rejoin-room":
		s.handleRejoinRoom(c, msg)
	case "player-ready":
		s.handlePlayerReady(c, msg)
	case "start-game":
		s.handleStartGame(c)
	case "roll-dice":
		s.handleRollDice(c)
	case "hold-die":
		s.handleHoldDie(c, msg)
	case "select-score":
		s.handleSelectScore(c, msg)
	case "leave-room":
		s.handleLeaveRoom(c)
	default:
		c.WriteError(events.TypeRoomError, "unknown action type: "+msg.Type)
	}
}

// currentRoom resolves the room this connection belongs to, writing a
// room-error to the sender when there is none.
func (s *Server) currentRoom(c *room.Conn) (*room.Room, bool) {
	if c.RoomCode == "" {
		c.WriteError(events.TypeRoomError, "you are not in a room")
		return nil, false
	}
	r, ok := s.Registry.Lookup(c.RoomCode)
	if !ok {
		c.WriteError(events.TypeRoomError, "room not found")
		return nil, false
	}
	return r, true
}

func (s *Server) handleCreateRoom(c *room.Conn, msg InboundMessage) {
	if c.RoomCode != "" {
		c.WriteError(events.TypeRoomError, "already in a room")
		return
	}

	settings := room.DefaultSettings()
	if msg.Settings != nil {
		settings = *msg.Settings
	}
	r := room.New(s.Registry.NewCode(), settings)

	r.Mu.Lock()
	player, err := r.AddPlayerUnsafe(c.SessionID, msg.PlayerName, true)
	if err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeRoomError, err.Error())
		return
	}
	r.AddConnUnsafe(c)
	snap := r.SnapshotUnsafe()
	r.Mu.Unlock()

	s.Registry.Register(r)
	c.RoomCode = r.Code

	s.Logger.Infof("room %s created by %s (%s)", r.Code, player.Name, c.SessionID)
	c.Write(events.New(events.TypeRoomCreated, map[string]interface{}{
		"room":        snap,
		"player":      player,
		"rejoinToken": s.rejoinToken(r.Code, c.SessionID),
	}))
	s.journalAction(cache.ActionRecord{
		RoomCode:   r.Code,
		SessionID:  c.SessionID,
		ActionType: "create-room",
		Timestamp:  time.Now().Unix(),
	})
}

func (s *Server) handleJoinRoom(c *room.Conn, msg InboundMessage) {
	if c.RoomCode != "" {
		c.WriteError(events.TypeRoomError, "already in a room")
		return
	}
	r, ok := s.Registry.Lookup(msg.RoomCode)
	if !ok {
		c.WriteError(events.TypeRoomError, "room not found")
		return
	}

	r.Mu.Lock()
	player, err := r.AddPlayerUnsafe(c.SessionID, msg.PlayerName, false)
	if err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeRoomError, err.Error())
		return
	}
	r.AddConnUnsafe(c)
	c.RoomCode = r.Code
	snap := r.SnapshotUnsafe()

	c.Write(events.New(events.TypeRoomJoined, map[string]interface{}{
		"room":        snap,
		"player":      player,
		"rejoinToken": s.rejoinToken(r.Code, c.SessionID),
	}))
	for id := range r.Conns {
		if id != c.SessionID {
			r.SendToUnsafe(id, events.New(events.TypePlayerJoined, map[string]interface{}{
				"player": player,
				"room":   snap,
			}))
		}
	}
	r.Mu.Unlock()

	s.Logger.Infof("player %s joined room %s", player.Name, r.Code)
	s.journalAction(cache.ActionRecord{
		RoomCode:   r.Code,
		SessionID:  c.SessionID,
		ActionType: "join-room",
		Timestamp:  time.Now().Unix(),
	})
}

func (s *Server) handleRejoinRoom(c *room.Conn, msg InboundMessage) {
	if s.Tokens == nil {
		c.WriteError(events.TypeRoomError, "reconnection is not enabled")
		return
	}
	code, sessionID, err := s.Tokens.Verify(msg.Token)
	if err != nil {
		c.WriteError(events.TypeRoomError, "invalid rejoin token")
		return
	}
	r, ok := s.Registry.Lookup(code)
	if !ok {
		c.WriteError(events.TypeRoomError, "room not found")
		return
	}

	r.Mu.Lock()
	if r.Status != room.StatusPlaying || !r.Settings.AllowReconnection {
		r.Mu.Unlock()
		c.WriteError(events.TypeRoomError, "room does not accept reconnections")
		return
	}
	player, err := r.ReconnectUnsafe(sessionID)
	if err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeRoomError, err.Error())
		return
	}
	// The fresh transport adopts the seat's original identity so turn checks
	// keep matching.
	c.SessionID = sessionID
	c.RoomCode = r.Code
	r.AddConnUnsafe(c)
	r.BroadcastUnsafe(events.New(events.TypePlayerReconnected, map[string]interface{}{
		"player": player,
		"room":   r.SnapshotUnsafe(),
	}))
	r.Mu.Unlock()

	s.Logger.Infof("player %s reconnected to room %s", player.Name, r.Code)
}

func (s *Server) handlePlayerReady(c *room.Conn, msg InboundMessage) {
	r, ok := s.currentRoom(c)
	if !ok {
		return
	}
	r.Mu.Lock()
	if err := r.SetReadyUnsafe(c.SessionID, msg.IsReady); err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeRoomError, err.Error())
		return
	}
	r.BroadcastUnsafe(events.New(events.TypePlayerReadyChanged, map[string]interface{}{
		"sessionId":  c.SessionID,
		"isReady":    msg.IsReady,
		"roomStatus": r.Status,
	}))
	r.Mu.Unlock()
}

func (s *Server) handleStartGame(c *room.Conn) {
	r, ok := s.currentRoom(c)
	if !ok {
		return
	}
	r.Mu.Lock()
	if err := r.StartGameUnsafe(c.SessionID, s.DiceSrc); err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeRoomError, err.Error())
		return
	}
	r.BroadcastUnsafe(events.New(events.TypeGameStarted, map[string]interface{}{
		"room": r.SnapshotUnsafe(),
	}))
	s.armTurnTimerUnsafe(r)
	r.Mu.Unlock()

	s.Logger.Infof("game started in room %s", r.Code)
	s.journalAction(cache.ActionRecord{
		RoomCode:   r.Code,
		SessionID:  c.SessionID,
		ActionType: "start-game",
		Timestamp:  time.Now().Unix(),
	})
}

// handleRollDice runs the two-phase roll. The roll is consumed immediately,
// so a second roll-dice during the display delay fails the rolls-remaining
// check; only the settled broadcast is deferred.
func (s *Server) handleRollDice(c *room.Conn) {
	r, ok := s.currentRoom(c)
	if !ok {
		return
	}
	r.Mu.Lock()
	if r.Game == nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeGameError, "game has not started")
		return
	}
	tumbling := r.Game.Dice
	for i := range tumbling {
		if !tumbling[i].IsHeld {
			tumbling[i].IsRolling = true
		}
	}
	if err := r.Game.Roll(c.SessionID); err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeGameError, err.Error())
		return
	}
	r.TouchUnsafe()
	rolls := r.Game.RollsRemaining
	seq := r.Game.TurnSeq
	r.BroadcastUnsafe(events.New(events.TypeDiceRollingStarted, map[string]interface{}{
		"dice":           tumbling,
		"rollsRemaining": rolls,
	}))
	r.Mu.Unlock()

	s.Schedule(s.RollDelay, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		// The turn may have ended during the delay (player removal, force
		// advance). A stale settle broadcast would misreport the next turn's
		// dice.
		if r.Game == nil || r.Game.TurnSeq != seq {
			return
		}
		for i := range r.Game.Dice {
			r.Game.Dice[i].IsRolling = false
		}
		r.BroadcastUnsafe(events.New(events.TypeDiceRolled, map[string]interface{}{
			"dice":           r.Game.Dice,
			"rollsRemaining": r.Game.RollsRemaining,
		}))
	})
}

func (s *Server) handleHoldDie(c *room.Conn, msg InboundMessage) {
	r, ok := s.currentRoom(c)
	if !ok {
		return
	}
	r.Mu.Lock()
	if r.Game == nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeGameError, "game has not started")
		return
	}
	held, err := r.Game.ToggleHold(c.SessionID, msg.DieIndex)
	if err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeGameError, err.Error())
		return
	}
	r.TouchUnsafe()
	r.BroadcastUnsafe(events.New(events.TypeDieHeld, map[string]interface{}{
		"dieIndex": msg.DieIndex,
		"isHeld":   held,
		"dice":     r.Game.Dice,
	}))
	r.Mu.Unlock()
}

func (s *Server) handleSelectScore(c *room.Conn, msg InboundMessage) {
	r, ok := s.currentRoom(c)
	if !ok {
		return
	}
	r.Mu.Lock()
	if r.Game == nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeGameError, "game has not started")
		return
	}
	scorer := r.Game.CurrentPlayer()
	score, err := r.Game.CommitScore(c.SessionID, scoring.Category(msg.Category))
	if err != nil {
		r.Mu.Unlock()
		c.WriteError(events.TypeGameError, err.Error())
		return
	}
	r.TouchUnsafe()
	s.finishTurnUnsafe(r, c.SessionID, scorer.SessionID, scoring.Category(msg.Category), score, false)
	r.Mu.Unlock()

	s.journalAction(cache.ActionRecord{
		RoomCode:   r.Code,
		SessionID:  c.SessionID,
		ActionType: "select-score",
		Payload: map[string]interface{}{
			"category": msg.Category,
			"score":    score,
		},
		Timestamp: time.Now().Unix(),
	})
}

// finishTurnUnsafe broadcasts the turn result and either closes out the game
// or arms the next player's turn timer.
func (s *Server) finishTurnUnsafe(r *room.Room, actor, scorer uuid.UUID, category scoring.Category, score int, forced bool) {
	r.StopTurnTimerUnsafe()
	r.BroadcastUnsafe(events.New(events.TypeTurnEnded, map[string]interface{}{
		"sessionId": scorer,
		"category":  category,
		"score":     score,
		"forced":    forced,
		"gameState": r.Game,
	}))

	if r.Game.Complete() {
		r.Status = room.StatusFinished
		rankings := r.Game.Rankings()
		r.BroadcastUnsafe(events.New(events.TypeGameEnded, map[string]interface{}{
			"rankings": rankings,
			"room":     r.SnapshotUnsafe(),
		}))
		s.Logger.Infof("game finished in room %s after %d turns", r.Code, r.Game.CurrentTurn)

		results := make([]map[string]interface{}, 0, len(rankings))
		for _, rk := range rankings {
			results = append(results, map[string]interface{}{
				"playerName": rk.Player.Name,
				"grandTotal": rk.GrandTotal,
				"rank":       rk.Rank,
			})
		}
		s.journalAction(cache.ActionRecord{
			RoomCode:   r.Code,
			SessionID:  actor,
			ActionType: "game-ended",
			Payload:    map[string]interface{}{"rankings": results},
			Timestamp:  time.Now().Unix(),
		})
		return
	}
	s.armTurnTimerUnsafe(r)
}

func (s *Server) handleLeaveRoom(c *room.Conn) {
	r, ok := s.currentRoom(c)
	if !ok {
		return
	}
	s.removeFromRoom(r, c)
}

// HandleDisconnect runs when a transport drops, after its read loop exits.
// Mid-game disconnects keep their seat when the room allows reconnection;
// everyone else is removed outright.
func (s *Server) HandleDisconnect(c *room.Conn) {
	if c.RoomCode == "" {
		return
	}
	r, ok := s.Registry.Lookup(c.RoomCode)
	if !ok {
		return
	}

	r.Mu.Lock()
	if r.Status == room.StatusPlaying && r.Settings.AllowReconnection {
		player := r.MarkDisconnectedUnsafe(c.SessionID)
		r.RemoveConnUnsafe(c.SessionID)
		if player != nil {
			r.BroadcastUnsafe(events.New(events.TypePlayerLeft, map[string]interface{}{
				"sessionId":  c.SessionID,
				"playerName": player.Name,
				"temporary":  true,
				"room":       r.SnapshotUnsafe(),
			}))
			s.Logger.Infof("player %s disconnected from room %s, seat held", player.Name, r.Code)
		}
		r.Mu.Unlock()
		return
	}
	r.Mu.Unlock()

	s.removeFromRoom(r, c)
}

// removeFromRoom is the common removal path for leave-room and permanent
// disconnects.
func (s *Server) removeFromRoom(r *room.Room, c *room.Conn) {
	r.Mu.Lock()
	wasPlaying := r.Status == room.StatusPlaying
	removed, newHost := r.RemovePlayerUnsafe(c.SessionID)
	r.RemoveConnUnsafe(c.SessionID)
	if removed == nil {
		r.Mu.Unlock()
		c.RoomCode = ""
		return
	}

	payload := map[string]interface{}{
		"sessionId":  removed.SessionID,
		"playerName": removed.Name,
		"room":       r.SnapshotUnsafe(),
	}
	if newHost != nil {
		payload["newHostId"] = newHost.SessionID
	}
	r.BroadcastUnsafe(events.New(events.TypePlayerLeft, payload))

	if wasPlaying && r.Status == room.StatusFinished {
		// Removal completed the game for the survivors.
		r.StopTurnTimerUnsafe()
		r.BroadcastUnsafe(events.New(events.TypeGameEnded, map[string]interface{}{
			"rankings": r.Game.Rankings(),
			"room":     r.SnapshotUnsafe(),
		}))
	} else if wasPlaying && r.Status == room.StatusPlaying {
		// The departing player may have been on turn; restart the clock for
		// whoever holds it now.
		s.armTurnTimerUnsafe(r)
	}

	empty := r.EmptyUnsafe()
	if empty {
		r.StopTurnTimerUnsafe()
	}
	r.Mu.Unlock()

	c.RoomCode = ""
	s.Logger.Infof("player %s left room %s", removed.Name, r.Code)
	if empty && r.OnEmpty != nil {
		r.OnEmpty(r.Code)
	}
}

// armTurnTimerUnsafe schedules a force-advance for the current turn when the
// room plays with a turn clock.
func (s *Server) armTurnTimerUnsafe(r *room.Room) {
	r.StopTurnTimerUnsafe()
	if r.Settings.TurnTimerSec <= 0 || r.Status != room.StatusPlaying || r.Game == nil {
		return
	}
	seq := r.Game.TurnSeq
	r.TurnTimer = time.AfterFunc(time.Duration(r.Settings.TurnTimerSec)*time.Second, func() {
		s.forceAdvance(r, seq)
	})
}

// forceAdvance fires when a turn clock expires. seq guards against the timer
// racing a legitimate score commit for the same turn.
func (s *Server) forceAdvance(r *room.Room, seq int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Status != room.StatusPlaying || r.Game == nil || r.Game.TurnSeq != seq {
		return
	}
	player, category, err := r.Game.ForceAdvance()
	if err != nil {
		s.Logger.Warnf("force advance failed in room %s: %v", r.Code, err)
		return
	}
	r.TouchUnsafe()
	s.Logger.Infof("turn timer expired in room %s, scored 0 in %s for %s", r.Code, category, player.Name)
	s.finishTurnUnsafe(r, player.SessionID, player.SessionID, category, 0, true)
}

// rejoinToken issues a reconnect credential, or empty when disabled or
// signing fails.
func (s *Server) rejoinToken(code string, sessionID uuid.UUID) string {
	if s.Tokens == nil {
		return ""
	}
	token, err := s.Tokens.Issue(code, sessionID)
	if err != nil {
		s.Logger.Warnf("failed to issue rejoin token for room %s: %v", code, err)
		return ""
	}
	return token
}
