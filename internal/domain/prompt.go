package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePrompt trims surrounding whitespace and folds the text into NFC so
// visually identical prompts compare equal.
func NormalizePrompt(prompt string) string {
	return strings.TrimSpace(norm.NFC.String(prompt))
}
