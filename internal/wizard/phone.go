package wizard

import (
	"regexp"
	"strings"
)

var (
	phoneSeparators = regexp.MustCompile(`[-\s.()]`)
	phoneDigits     = regexp.MustCompile(`^\d+$`)
)

// NormalizePhone turns a locally typed number into E.164. Ten digits are
// treated as a US number (+1). Eleven digits are treated as a Bangladeshi
// number whose leading trunk zero follows the 88 country code, so
// 01712345678 becomes +8801712345678.
func NormalizePhone(raw string) (string, error) {
	digits := phoneSeparators.ReplaceAllString(strings.TrimSpace(raw), "")
	if digits == "" {
		return "", ErrPhoneRequired
	}
	if !phoneDigits.MatchString(digits) {
		return "", ErrPhoneInvalid
	}
	switch len(digits) {
	case 10:
		return "+1" + digits, nil
	case 11:
		return "+88" + digits, nil
	default:
		return "", ErrPhoneInvalid
	}
}
