package relay

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Sid prefixes per operation family.
const (
	MessageSIDPrefix = "SM_"
	CallSIDPrefix    = "CA_"
)

// NewSID returns prefix followed by a random 128-bit identifier encoded as 32
// lowercase hex characters.
//
// A sid only lives in memory and in the response. It is never written to the
// store, so it cannot be used to find a row again.
func NewSID(prefix string) string {
	u := uuid.New()
	return prefix + hex.EncodeToString(u[:])
}
