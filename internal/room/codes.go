// internal/room/codes.go
package room

import (
	"crypto/rand"
	mrand "math/rand"
)

// CodeLength is the length of a human-shareable room code.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomCode draws one candidate code from the uppercase-alphanumeric
// alphabet, preferring crypto randomness.
func randomCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = byte(mrand.Intn(256))
		}
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

// GenerateCode draws codes until taken reports a free one. Uniqueness is by
// collision retry against the live registry, not pre-partitioning.
func GenerateCode(taken func(code string) bool) string {
	for {
		code := randomCode()
		if !taken(code) {
			return code
		}
	}
}
