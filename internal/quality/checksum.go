package quality

import "strings"

// ValidNHSChecksum reports whether a 10-digit NHS number passes its
// Modulus 11 check. The first nine digits are weighted 10 down to 2, the
// products summed, and the check digit is 11 minus the sum mod 11. A
// result of 11 maps to a check digit of 0; a result of 10 means no valid
// check digit exists and the number is invalid outright.
//
// Internal whitespace is removed before checking, so formatted and
// unformatted renderings of the same number validate identically.
func ValidNHSChecksum(number string) bool {
	cleaned := stripSpaces(number)
	if len(cleaned) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		d := cleaned[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (10 - i)
	}
	last := cleaned[9]
	if last < '0' || last > '9' {
		return false
	}

	check := 11 - (sum % 11)
	if check == 11 {
		check = 0
	}
	if check == 10 {
		return false
	}
	return check == int(last-'0')
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
