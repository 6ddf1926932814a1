package handler

import (
	"strconv"
	"strings"
	"unicode"
)

// parseID reads :id the way the landing page's links have always been
// resolved: leading whitespace is skipped, an optional sign and a 0x prefix
// are accepted, and parsing stops at the first character that is not a
// digit, so "1.5" and "1abc" both mean 1. ok is false when no digit was read
// or the value does not fit in an int.
func parseID(raw string) (id int, ok bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	if n == 0 {
		return 0, false
	}
	digits := s[:n]
	if neg {
		digits = "-" + digits
	}
	v, err := strconv.ParseInt(digits, base, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func isDecimal(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDecimal(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
