package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// newJobID returns a sortable job identifier: millisecond timestamp
// followed by 8 random bytes.
func newJobID() string {
	var b [8]byte
	rand.Read(b[:])
	return fmt.Sprintf("%013x-%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}
