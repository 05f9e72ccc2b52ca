package utils

import "strings"

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhone rewrites a local number that starts with the domestic trunk
// prefix 0 (e.g. 0712345678) into E.164 form using countryCode
// (+254712345678). Numbers already in international form, and anything that
// does not look like a local number, pass through with separators removed.
func NormalizePhone(phone, countryCode string) string {
	p := phoneSeparators.Replace(strings.TrimSpace(phone))
	if p == "" || strings.HasPrefix(p, "+") {
		return p
	}
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if countryCode == "" {
		return p
	}
	if len(p) > 1 && p[0] == '0' && p[1] >= '1' && p[1] <= '9' {
		return "+" + countryCode + p[1:]
	}
	return p
}
