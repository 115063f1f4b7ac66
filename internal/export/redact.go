package export

import "regexp"

// redactRule pairs a secret-shaped pattern with its replacement. The rules
// live in a table so new patterns are data changes, not pipeline changes.
type redactRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// Redaction is best-effort, regex-based scrubbing. It is defense-in-depth
// for accidentally pasted credentials, not a security boundary: obfuscated
// secrets will get through.
var redactRules = []redactRule{
	{
		name:        "key_value_secret",
		pattern:     regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key|password|passwd|pwd|token|bearer|auth[_-]?token|access[_-]?token)['"]?\s*[:=]\s*['"]?[\w\-.]+['"]?`),
		replacement: "${1}=[REDACTED]",
	},
	{
		name:        "aws_access_key",
		pattern:     regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		replacement: "[REDACTED_AWS_KEY]",
	},
	{
		name:        "jwt",
		pattern:     regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: "[REDACTED_JWT]",
	},
}

// Redact scrubs secret-shaped substrings from free text before it is
// embedded in an exported document.
func Redact(text string) string {
	for _, rule := range redactRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}
