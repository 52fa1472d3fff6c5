package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxTextLength = 500

// SanitizeText cleans user-supplied free text (transfer messages,
// adjustment reasons) before it reaches the ledger.
func SanitizeText(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	input = htmlPolicy.Sanitize(input)

	if len(input) > maxTextLength {
		input = input[:maxTextLength]
	}

	return input
}
