package campusnet

import (
	"regexp"
	"strings"
	"time"
)

// pure string transforms over portal URLs, no I/O

var tokenPattern = regexp.MustCompile(`-N(\d{15})`)

// ExtractToken pulls the 15-digit session token out of a redirect
// target of the form `...ARGUMENTS=-N123456789012345,...`.
func ExtractToken(redirectUrl string) (string, error) {
	idx := strings.Index(redirectUrl, "ARGUMENTS=")
	if idx < 0 {
		return "", ErrNoToken
	}
	groups := tokenPattern.FindStringSubmatch(redirectUrl[idx:])
	if len(groups) < 2 {
		return "", ErrNoToken
	}
	return groups[1], nil
}

// WithToken replaces the token argument of base with the given token.
// Bases without a token slot come back unchanged.
func WithToken(base, token string) string {
	loc := tokenPattern.FindStringIndex(base)
	if loc == nil {
		return base
	}
	return base[:loc[0]] + "-N" + token + base[loc[1]:]
}

// the portal marks positional date arguments with "-A"
const dateMarker = "-A"

// WithDate inserts a dd.MM.yyyy formatted date right after the first
// date marker in the ARGUMENTS string, leaving everything else as is.
func WithDate(base string, date time.Time) string {
	args := strings.Index(base, "ARGUMENTS=")
	if args < 0 {
		return base
	}
	marker := strings.Index(base[args:], dateMarker)
	if marker < 0 {
		return base
	}
	at := args + marker + len(dateMarker)
	return base[:at] + date.Format("02.01.2006") + base[at:]
}
