package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateMacedonianText checks that text is non-blank and contains Cyrillic
func ValidateMacedonianText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	for _, r := range text {
		if unicode.In(r, unicode.Cyrillic) {
			return nil
		}
	}
	return fmt.Errorf("text must contain Cyrillic characters")
}
