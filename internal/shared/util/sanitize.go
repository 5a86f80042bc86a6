package util

import (
	"strings"
	"unicode"
)

// storageKeyDenylist mirrors the characters the object-store namespace
// rejects. Illegal characters are deleted rather than substituted so keys
// stay human-scannable.
const storageKeyDenylist = `\/:*?"<>|#%&`

// SanitizeKeyComponent strips characters illegal in storage keys from s.
// The result may be empty when every character was illegal.
func SanitizeKeyComponent(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(storageKeyDenylist, r) || unicode.IsControl(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
