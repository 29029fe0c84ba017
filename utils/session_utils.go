package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID mints an id for records that arrive without one.
func GenerateSessionID() string {
	return "srv_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SessionIDOrNew returns id when it is usable as a storage key, otherwise a
// freshly generated one.
func SessionIDOrNew(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 128 || strings.ContainsAny(id, " \t\r\n") {
		return GenerateSessionID()
	}
	return id
}
