package core

import (
	"strconv"
	"strings"
)

// lifetimeUnits maps lifetime suffixes to their length in seconds.
var lifetimeUnits = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
}

// ParseLifetime parses a session lifetime token into seconds. Accepted forms
// are a bare integer (seconds) or an integer with a single unit suffix out of
// s, m, h, d ("2h" -> 7200). The value must be positive.
func ParseLifetime(token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, validationErrorf("lifetime", "empty duration")
	}

	unit := int64(1)
	digits := token
	if last := token[len(token)-1]; last < '0' || last > '9' {
		u, ok := lifetimeUnits[last]
		if !ok {
			return 0, validationErrorf("lifetime", "unknown unit %q in %q", string(last), token)
		}
		unit = u
		digits = token[:len(token)-1]
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, validationErrorf("lifetime", "malformed duration %q", token)
	}
	if n <= 0 {
		return 0, validationErrorf("lifetime", "duration must be positive, got %q", token)
	}
	return n * unit, nil
}
