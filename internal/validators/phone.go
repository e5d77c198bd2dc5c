package validators

import "strings"

// IsPhoneValid accepts 8 to 15 digits with the usual separators
// ("+", spaces, dashes, dots and parentheses). Anything else is rejected.
func IsPhoneValid(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" || len(phone) > 20 {
		return false
	}

	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+ -.()", r):
		default:
			return false
		}
	}
	return digits >= 8 && digits <= 15
}
