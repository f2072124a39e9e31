package revocation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTTLSeconds applies whenever a configured expiry cannot be used.
const DefaultTTLSeconds = 7200

var expiryRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)([smhd])$`)

var unitSeconds = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ParseExpiry converts an expiry such as "2h", "30m" or "1.5d" to seconds.
// Hour values are truncated to whole hours before scaling, so "2.5h" is
// 7200. Anything unusable falls back to DefaultTTLSeconds.
func ParseExpiry(s string) int {
	m := expiryRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DefaultTTLSeconds
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return DefaultTTLSeconds
	}

	unit := m[2]
	if unit == "h" {
		value = math.Floor(value)
	}
	seconds := int(math.Floor(value * unitSeconds[unit]))
	if seconds <= 0 {
		return DefaultTTLSeconds
	}
	return seconds
}

func ParseExpiryDuration(s string) time.Duration {
	return time.Duration(ParseExpiry(s)) * time.Second
}
