package policy

import "regexp"

var (
	emailPattern   = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phonePattern   = regexp.MustCompile(`(?:\+?\d[\d()\-\s.]{7,}\d)`)
	aadhaarPattern = regexp.MustCompile(`\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`)
)

// MaskPII redacts contact details before they reach log output. Worker
// phone numbers and email addresses are the bulk of what this service
// handles, so every log line carrying free text goes through here.
func MaskPII(value string) string {
	masked := emailPattern.ReplaceAllString(value, "[email_redacted]")
	masked = aadhaarPattern.ReplaceAllString(masked, "[id_redacted]")
	masked = phonePattern.ReplaceAllString(masked, "[phone_redacted]")
	return masked
}
