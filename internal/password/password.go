// Package password checks candidate credentials against the account rules.
package password

import (
	"errors"
	"strings"
	"unicode/utf16"
)

const MinLength = 8

// Specials are the characters that satisfy the special-character rule.
const Specials = `!@#$%^&*(),.?":{}|<>`

var ErrMismatch = errors.New("Passwords do not match")

type rule struct {
	description string
	ok          func(string) bool
}

var rules = []rule{
	{"At least 8 characters", func(p string) bool { return length(p) >= MinLength }},
	{"One uppercase letter (A-Z)", containsRange('A', 'Z')},
	{"One lowercase letter (a-z)", containsRange('a', 'z')},
	{"One number (0-9)", containsRange('0', '9')},
	{"One special character (!@#$%^&*...)", func(p string) bool { return strings.ContainsAny(p, Specials) }},
}

// length counts UTF-16 code units, the way browsers measure form input, so a
// character outside the BMP counts twice.
func length(p string) int {
	n := 0
	for _, r := range p {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

func containsRange(lo, hi byte) func(string) bool {
	return func(p string) bool {
		for i := 0; i < len(p); i++ {
			if p[i] >= lo && p[i] <= hi {
				return true
			}
		}
		return false
	}
}

// Requirements lists every rule description in display order.
func Requirements() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.description
	}
	return out
}

// Validate returns the descriptions of the rules p fails; an empty result
// means p is acceptable. Every rule is checked. An empty p passes when the
// field is optional (edit forms keep the current password) and fails every
// rule when required is set.
func Validate(p string, required bool) []string {
	if p == "" && !required {
		return nil
	}
	var unmet []string
	for _, r := range rules {
		if !r.ok(p) {
			unmet = append(unmet, r.description)
		}
	}
	return unmet
}

// CheckConfirmation reports ErrMismatch when the two entries differ.
func CheckConfirmation(p, confirmation string) error {
	if p != confirmation {
		return ErrMismatch
	}
	return nil
}
