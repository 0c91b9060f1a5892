package verification

import "strings"

// SanitizeCode keeps ASCII digits from raw and truncates to CodeLength.
// Pasted values such as "123 456" or "12-34-56" collapse to their digits.
func SanitizeCode(raw string) string {
	var b strings.Builder
	b.Grow(CodeLength)
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == CodeLength {
			break
		}
	}
	return b.String()
}

// CodeReady reports whether code is exactly CodeLength ASCII digits.
func CodeReady(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
