// internal/events/events.go
package events

// Type names one server-to-client message kind. The values are the wire names
// clients switch on.
type Type string

const (
	TypeRoomCreated        Type = "room-created"
	TypeRoomJoined         Type = "room-joined"
	TypePlayerJoined       Type = "player-joined"
	TypePlayerLeft         Type = "player-left"
	TypePlayerReadyChanged Type = "player-ready-changed"
	TypePlayerReconnected  Type = "player-reconnected"
	TypeGameStarted        Type = "game-started"
	TypeDiceRollingStarted Type = "dice-rolling-started"
	TypeDiceRolled         Type = "dice-rolled"
	TypeDieHeld            Type = "die-held"
	TypeTurnEnded          Type = "turn-ended"
	TypeGameEnded          Type = "game-ended"
	TypeRoomError          Type = "room-error"
	TypeGameError          Type = "game-error"
)

// Event is the wire envelope for one outbound message.
type Event struct {
	Type Type                   `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// New wraps a payload map in an Event.
func New(t Type, data map[string]interface{}) Event {
	return Event{Type: t, Data: data}
}

// Error builds a scoped error event of the given kind (TypeRoomError or
// TypeGameError) carrying a human-readable message.
func Error(t Type, msg string) Event {
	return Event{Type: t, Data: map[string]interface{}{"message": msg}}
}
