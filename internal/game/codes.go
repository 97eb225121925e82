// internal/game/codes.go
package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

const (
	roomCodeLength = 4
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// newRoomCode returns a random 4-letter uppercase code. Uniqueness against
// live rooms is the registry's job.
func newRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(roomCodeChars))))
		if err != nil {
			// fall back to math/rand if crypto fails
			code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
			continue
		}
		code[i] = roomCodeChars[n.Int64()]
	}
	return string(code)
}
