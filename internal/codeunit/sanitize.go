package codeunit

import (
	"regexp"
	"strings"
)

var (
	codeFenceRe = regexp.MustCompile("```[A-Za-z0-9_+-]*")
	// file labels such as "Rectangle.java:" or "**Rectangle.java**" on their own line
	fileLabelRe = regexp.MustCompile(`(?m)^[ \t]*(?:\*\*|#+[ \t]*)?[A-Za-z_$][\w$]*\.java(?:\*\*)?:?(?:\*\*)?[ \t]*\r?$`)
)

// Sanitize removes markdown code fences and stray file labels that generators
// wrap around source text. It is idempotent.
func Sanitize(raw string) string {
	out := codeFenceRe.ReplaceAllString(raw, "")
	out = fileLabelRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
