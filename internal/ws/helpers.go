package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID labels a websocket connection for the ws_events stream.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
