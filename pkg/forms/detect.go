package forms

import "strings"

// Detected form types.
const (
	TypeFC  = "FC"
	TypeAPR = "APR"
	TypeECB = "ECB-2"
)

// DetectFormType guesses the form type from free text, such as the text of
// an uploaded document. Markers are matched case-insensitively as substrings
// and checked in order FC, APR, ECB; the first hit wins. Returns "" when none match.
func DetectFormType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "fc"):
		return TypeFC
	case strings.Contains(lower, "apr"):
		return TypeAPR
	case strings.Contains(lower, "ecb"):
		return TypeECB
	}
	return ""
}
