// internal/handlers/http.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// HealthHandler reports liveness plus a couple of cheap gauges.
func HealthHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"rooms":  s.Registry.Count(),
			"uptime": time.Since(s.StartedAt).String(),
		})
	}
}

// RoomHandler serves a read-only snapshot of one room at /rooms/{code}. It
// exists for debugging and ops, not for gameplay.
func RoomHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		code := strings.TrimPrefix(r.URL.Path, "/rooms/")
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "missing room code (/rooms/{code})", http.StatusBadRequest)
			return
		}
		rm, ok := s.Registry.Lookup(code)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "room not found"})
			return
		}
		rm.Mu.Lock()
		snap := rm.SnapshotUnsafe()
		rm.Mu.Unlock()
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
