package entity

import (
	"strings"

	"github.com/google/uuid"
)

// DisplayRef carries everything the subsystem knows about one attached
// display: the session-scoped numeric ID, the stable hardware identity,
// and the current timing. Identity fields may be zero when the source
// could not provide them; matching falls back accordingly.
type DisplayRef struct {
	ID        uint32 // display-server session ID
	VendorID  uint32
	ProductID uint32
	UUID      string // stable device identifier, may be empty

	// Current timing, used for registry node and timing-entry matching.
	WidthPx   int
	HeightPx  int
	RefreshHz float64
}

// NormalizeDisplayUUID canonicalizes a device identifier into the uppercase
// hyphenated form the persisted store uses. Returns "" when s is not a UUID.
func NormalizeDisplayUUID(s string) string {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return strings.ToUpper(u.String())
}

// SameDisplayUUID compares two device identifiers case-insensitively.
func SameDisplayUUID(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
