package policy

import (
	"regexp"
	"unicode/utf8"
)

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern     = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	botTokenPattern = regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_-]{30,}\b`)
	apiKeyPattern   = regexp.MustCompile(`\b(?:sk|ddc|pk)-[A-Za-z0-9_-]{16,}\b`)
)

// RedactPII masks credentials and common high-risk PII patterns.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	apply := func(re *regexp.Regexp, marker string) {
		next := re.ReplaceAllString(out, marker)
		changed = changed || next != out
		out = next
	}

	// Tokens first: a bot token starts with digits that the phone pattern would eat.
	apply(botTokenPattern, "[REDACTED_TOKEN]")
	apply(apiKeyPattern, "[REDACTED_KEY]")
	apply(emailPattern, "[REDACTED_EMAIL]")
	// Card before phone to avoid card numbers being classified as phone.
	apply(cardPattern, "[REDACTED_CARD]")
	apply(phonePattern, "[REDACTED_PHONE]")

	return out, changed
}

// Preview redacts text and cuts it to at most n runes for logs and the feed.
func Preview(text string, n int) string {
	out, _ := RedactPII(text)
	if utf8.RuneCountInString(out) <= n {
		return out
	}
	return string([]rune(out)[:n]) + "..."
}
