// Package present formats raw record fields for people rather than programs.
package present

import "strings"

// DisplayPhone renders a stored phone number with an international prefix.
// Numbers already starting with '+' are kept as is, a leading "00" becomes
// '+', and bare Italian numbers get "+39".
func DisplayPhone(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}
	if strings.HasPrefix(t, "+") {
		return t
	}

	var b strings.Builder
	for _, r := range t {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "39"):
		return "+" + digits
	default:
		return "+39" + digits
	}
}
