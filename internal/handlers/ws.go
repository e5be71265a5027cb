// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/cpether/mobile-yahtzee/internal/events"
	"github.com/cpether/mobile-yahtzee/internal/middleware"
	"github.com/cpether/mobile-yahtzee/internal/room"
)

// Subprotocol is the WebSocket subprotocol clients must negotiate.
const Subprotocol = "yahtzee"

// WSHandler upgrades the connection, assigns it a fresh session identity, and
// runs the read loop until the client goes away. Each connection owns a write
// pump goroutine draining its outbound event channel.
func WSHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the yahtzee subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := room.NewConn(cancel)

		middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, "")
		s.Logger.Infof("session %s connected from %s", conn.SessionID, r.RemoteAddr)

		go writePump(ctx, c, conn, s.Logger)
		readErr := readPump(ctx, c, conn, s)

		s.HandleDisconnect(conn)
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, conn.RoomCode, readErr)
	}
}

// readPump decodes inbound messages and hands them to the dispatcher. It
// returns when the connection closes or the context is cancelled.
func readPump(ctx context.Context, c *websocket.Conn, conn *room.Conn, s *Server) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			s.Logger.Warnf("read error for session %s: %v (status: %d)", conn.SessionID, err, status)
			return err
		}
		if typ != websocket.MessageText {
			s.Logger.Warnf("ignoring non-text message type %d from session %s", typ, conn.SessionID)
			continue
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Logger.Warnf("invalid json from session %s: %v", conn.SessionID, err)
			conn.WriteError(events.TypeRoomError, "invalid JSON format")
			continue
		}

		s.Dispatch(conn, msg)
	}
}

// writePump serializes events from the connection's channel onto the socket
// and keeps the connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal %q event for session %s: %v", ev.Type, conn.SessionID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write failed for session %s: %v", conn.SessionID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for session %s, assuming disconnect: %v", conn.SessionID, err)
				return
			}
		}
	}
}
