package quality

import "strings"

// FormatPhone proposes a canonical rendering of a national phone number.
// It asserts nothing about correctness: callers re-validate the result
// against the same rules before surfacing it. The boolean is false when
// no candidate could be derived.
func (r Rules) FormatPhone(raw string) (string, bool) {
	digits := extractDigits(raw)

	switch {
	case strings.HasPrefix(digits, "0044") && len(digits) >= 14:
		return "+44" + digits[4:], true
	case strings.HasPrefix(digits, "44") && len(digits) >= 12:
		return "+44" + digits[2:], true
	case strings.HasPrefix(digits, "0") && len(digits) >= 11:
		return digits, true
	case len(digits) == 10:
		// National number with the trunk prefix dropped.
		return "0" + digits, true
	}
	return "", false
}

// FormatPostcode proposes the canonical rendering of a postcode: upper
// case, letter/digit groups re-delimited with a single space before the
// final three characters. The boolean is false when no canonical form
// can be derived.
func (r Rules) FormatPostcode(raw string) (string, bool) {
	compact := strings.ToUpper(stripSpaces(strings.TrimSpace(raw)))
	if len(compact) < 5 || len(compact) > 7 {
		return "", false
	}
	candidate := compact[:len(compact)-3] + " " + compact[len(compact)-3:]
	if !r.Postcode.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
