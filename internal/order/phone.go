package order

import (
	"regexp"
	"strings"
)

// Indonesian mobile numbers: optional +62/62/0 prefix, then 8 and a non-zero
// digit, then 6 to 10 more digits.
var phonePattern = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,10}$`)

var phoneStripper = strings.NewReplacer(" ", "", "-", "")

// IsValidPhone reports whether phone is a plausible Indonesian mobile
// number after stripping spaces and dashes.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneStripper.Replace(phone))
}

// NormalizePhone strips separators and rewrites the +62/62 country prefix
// to the local 0 form, so one buyer always stores as one number.
func NormalizePhone(phone string) string {
	p := phoneStripper.Replace(phone)
	switch {
	case strings.HasPrefix(p, "+62"):
		return "0" + p[3:]
	case strings.HasPrefix(p, "62"):
		return "0" + p[2:]
	default:
		return p
	}
}
