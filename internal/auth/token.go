// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints and verifies reconnection tokens. A token binds a room
// code to a seat's session identity so a dropped connection can reclaim its
// seat. Keys are generated per process: rooms do not survive a restart, so
// neither should their tokens.
type TokenIssuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	ttl        time.Duration
}

// NewTokenIssuer generates a fresh ed25519 key pair. ttl bounds how long a
// disconnected seat stays reclaimable; 0 means tokens never expire.
func NewTokenIssuer(ttl time.Duration) (*TokenIssuer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	return &TokenIssuer{privateKey: priv, publicKey: pub, ttl: ttl}, nil
}

// Issue creates a signed token for the given room and session.
func (ti *TokenIssuer) Issue(roomCode string, sessionID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sessionID.String(),
		"room": roomCode,
	}
	if ti.ttl != 0 {
		claims["exp"] = time.Now().Add(ti.ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(ti.privateKey)
}

// Verify checks a token's signature and returns the room code and session it
// was issued for.
func (ti *TokenIssuer) Verify(tokenString string) (roomCode string, sessionID uuid.UUID, err error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.publicKey, nil
	})
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("token parse error: %w", err)
	}
	if !t.Valid {
		return "", uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", uuid.Nil, fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", uuid.Nil, fmt.Errorf("missing sub claim")
	}
	roomCode, ok = claims["room"].(string)
	if !ok {
		return "", uuid.Nil, fmt.Errorf("missing room claim")
	}
	sessionID, err = uuid.Parse(sub)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("malformed session id in token: %w", err)
	}
	return roomCode, sessionID, nil
}
