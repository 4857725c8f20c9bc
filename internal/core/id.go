package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates an opaque prefixed identifier, e.g. "conn_6f1a...".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
