// Package sanitize cleans free-form user input before it is validated or stored.
//
// Every quiz field that accepts typed text passes through Text (or one of the
// field-specific helpers) so stored records never carry markup, control
// characters, or unbounded strings.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern   = regexp.MustCompile(`</?[a-zA-Z!][^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Phone digit limits (E.164 allows at most 15 digits)
const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// Text normalises s to NFKC, strips HTML tags and control characters,
// collapses whitespace and truncates to max runes. max <= 0 disables truncation.
func Text(s string, max int) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError {
			return -1
		}
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return Truncate(s, max)
}

// Truncate shortens s to at most max runes
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

// Name cleans a person's name
func Name(s string, max int) string {
	return Text(s, max)
}

// Email trims and lower-cases an email address
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// ValidEmail reports whether s looks like a deliverable address
func ValidEmail(s string) bool {
	return len(s) <= 254 && emailPattern.MatchString(s)
}

// Phone keeps the digits of s and a leading plus sign
func Phone(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneDigits counts the digits in s
func PhoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ValidPhone reports whether a sanitized phone has a plausible digit count
func ValidPhone(s string) bool {
	n := PhoneDigits(s)
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}

// Options trims option values, drops empties and removes duplicates, keeping order
func Options(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Blank reports whether s is empty once sanitized
func Blank(s string) bool {
	return Text(s, 0) == ""
}
