package services

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanVoicePrompt collapses runs of whitespace (including newlines) into
// single spaces and trims leading/trailing whitespace. Idempotent; the
// normalized prompt is what gets sent to the synthesis service and what is
// stored on the published record.
func CleanVoicePrompt(prompt string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(prompt, " "))
}
