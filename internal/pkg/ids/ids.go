package ids

import (
	"crypto/rand"
	"encoding/hex"
)

func New() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
