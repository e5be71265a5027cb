// internal/room/conn.go
package room

import (
	"log"

	"github.com/cpether/mobile-yahtzee/internal/events"
	"github.com/google/uuid"
)

// Conn is a single client's presence in a room: the session identity plus the
// outbound event channel drained by the transport's write pump.
type Conn struct {
	SessionID uuid.UUID

	// RoomCode is set once the connection has created or joined a room.
	RoomCode string

	// Cancel tears down the transport goroutines tied to this connection.
	Cancel func()

	OutChan chan events.Event
}

// NewConn allocates a connection with a fresh session identity.
func NewConn(cancel func()) *Conn {
	return &Conn{
		SessionID: uuid.New(),
		Cancel:    cancel,
		OutChan:   make(chan events.Event, 16),
	}
}

// Write pushes an event onto the connection's channel without blocking. A
// full or closed channel drops the event; the client resyncs from the next
// full snapshot.
func (c *Conn) Write(ev events.Event) {
	select {
	case c.OutChan <- ev:
	default:
		log.Printf("room: OutChan for session %s full or closed, dropped %q event", c.SessionID, ev.Type)
	}
}

// WriteError sends a scoped error event of kind t back to this connection.
func (c *Conn) WriteError(t events.Type, msg string) {
	c.Write(events.Error(t, msg))
}
