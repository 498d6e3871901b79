package domain

import (
	"strings"

	"github.com/google/uuid"
)

const idLength = 12

// NewID returns a short random identifier: the first 12 hex digits of a v4 UUID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}
