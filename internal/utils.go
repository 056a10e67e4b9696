package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// ExerciseID derives a stable identifier for an exercise file within a topic.
// Format: md5(topic/file)[:12]
func ExerciseID(topic, file string) string {
	hash := md5.Sum([]byte(topic + "/" + file))
	return hex.EncodeToString(hash[:])[:12]
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is a letter (Latin or Cyrillic) or digit
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
