// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handlers. These give clients
// a more specific reason for closure than the standard codes. Action-level
// failures after the upgrade (bad tokens, full rooms) are reported as scoped
// error events instead, so the connection stays usable.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
)
