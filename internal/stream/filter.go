package stream

import (
	"strings"

	"crisisdrill/internal/domain"
)

// Visible reports whether a message addressed to destinations may be shown to
// a viewer of the given role. An empty role is the unfiltered view. Role
// comparison is case-sensitive; the broadcast markers are not.
func Visible(destinations []string, role string) bool {
	if role == "" {
		return true
	}
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == role || domain.IsBroadcast(d) {
			return true
		}
	}
	return false
}
