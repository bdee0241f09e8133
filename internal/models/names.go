package models

import "strings"

// NormalizeName produces the universal matching key used throughout the
// engine: uppercase, trimmed, with any leading doctor honorific removed.
// Schedule rows reference people by display name rather than id, so every
// comparison must round-trip through this.
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, prefix := range []string{"DR.", "DR "} {
		if strings.HasPrefix(n, prefix) {
			n = strings.TrimSpace(strings.TrimPrefix(n, prefix))
			break
		}
	}
	return n
}
