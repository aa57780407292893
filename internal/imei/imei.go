// Package imei validates and normalizes the 15-digit device identifiers
// used as primary keys across the inventory.
package imei

import "strings"

// Normalize strips spaces, tabs and dashes that sneak in through
// spreadsheet copy/paste. It does not validate.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Valid reports whether s is exactly 15 ASCII digits. This is the rule the
// reconciliation engine enforces; records failing it are counted as parse
// errors and excluded from diffing.
func Valid(s string) bool {
	if len(s) != 15 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LuhnValid verifies the IMEI check digit (last digit) using the Luhn
// algorithm. Advisory only: suppliers occasionally issue test units with
// bad check digits, so sync never rejects on this. The search endpoint
// surfaces it as a data-quality flag.
func LuhnValid(s string) bool {
	if !Valid(s) {
		return false
	}
	sum := 0
	for i := 0; i < 15; i++ {
		d := int(s[i] - '0')
		// Double every second digit counting from the left (0-indexed odd)
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
