// Package validator holds the free-text field checks used by the
// registration flows. All checks are pure and return a plain bool.
package validator

import (
	"regexp"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	handleRe = regexp.MustCompile(`^@[a-zA-Z0-9_]{5,32}$`)
	phoneRe  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Email reports whether s looks like local@domain.tld with a 2+ letter TLD.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Contact accepts a messenger handle (@name, 5-32 word characters) or a
// phone-like token of 10-15 digits with an optional leading +.
func Contact(s string) bool {
	if strings.HasPrefix(s, "@") {
		return handleRe.MatchString(s)
	}
	return phoneRe.MatchString(s)
}

// URL accepts anything starting with http:// or https:// after trimming.
// Deeper structure is not checked; the link is stored as entered.
func URL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
