package utils

import "strings"

// NormalizePhone strips every non-digit character and accepts the result only
// if it looks like a full international number (10-15 digits, country code
// included). Returns "" when the input cannot be a phone number.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if len(cleaned) >= 10 && len(cleaned) <= 15 {
		return cleaned
	}
	return ""
}

func IsPDFDocument(mimeType string) bool {
	return mimeType == "application/pdf"
}
