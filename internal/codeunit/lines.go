// Package codeunit turns generated, possibly malformed Java-like class source
// into one compilation unit per type and derives student templates from them.
//
// Nothing here parses the language. Structure is recognised lexically, one
// line or one delimiter at a time, so near-miss input still produces output.
package codeunit

import (
	"regexp"
	"strings"
)

// LineKind tags a single source line with the structural role it plays.
type LineKind int

const (
	LineOther LineKind = iota
	LineBlank
	LineImport
	LinePackage
	// LineTypeDecl begins with a type keyword, optionally after modifiers.
	LineTypeDecl
	// LineClose consists solely of a closing delimiter.
	LineClose
	// LineOpenBrace consists solely of an opening delimiter.
	LineOpenBrace
	// LineBlockOpen is any other line ending with an opening delimiter.
	LineBlockOpen
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineImport:
		return "import"
	case LinePackage:
		return "package"
	case LineTypeDecl:
		return "type-decl"
	case LineClose:
		return "close"
	case LineOpenBrace:
		return "open-brace"
	case LineBlockOpen:
		return "block-open"
	default:
		return "other"
	}
}

const (
	modifiersPattern   = `(?:(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\s+)*`
	typeKeywordPattern = `(?:class|interface|enum|record)`
	identPattern       = `[A-Za-z_$][\w$]*`
)

var (
	typeDeclLineRe = regexp.MustCompile(`^\s*` + modifiersPattern + typeKeywordPattern + `\s+` + identPattern)
	importLineRe   = regexp.MustCompile(`^\s*import\s+(static\s+)?([\w$]+(?:\s*\.\s*[\w$]+)*(?:\s*\.\s*\*)?)\s*;\s*$`)
	packageLineRe  = regexp.MustCompile(`^\s*package\s+[\w$.]+\s*;\s*$`)
	// trailing line comment without quotes, so string literals are left alone
	trailingCommentRe = regexp.MustCompile(`\s*//[^"']*$`)
	returnValueRe     = regexp.MustCompile(`\breturn\b\s*[^;\s]`)
)

// Classify reports the structural role of a single line.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return LineBlank
	case importLineRe.MatchString(trimmed):
		return LineImport
	case packageLineRe.MatchString(trimmed):
		return LinePackage
	case typeDeclLineRe.MatchString(trimmed):
		return LineTypeDecl
	case trimmed == "}":
		return LineClose
	case trimmed == "{":
		return LineOpenBrace
	}
	code := strings.TrimSpace(trailingCommentRe.ReplaceAllString(trimmed, ""))
	if strings.HasSuffix(code, "{") {
		return LineBlockOpen
	}
	return LineOther
}

// CountDelimiters counts structural braces, ignoring those inside string,
// character and text-block literals and inside comments.
func CountDelimiters(text string) (open, closed int) {
	scanDelimiters(text, func(_ int, c byte) bool {
		if c == '{' {
			open++
		} else {
			closed++
		}
		return true
	})
	return open, closed
}

// scanDelimiters calls fn with the byte offset of every structural brace.
// Scanning stops early when fn returns false.
func scanDelimiters(text string, fn func(i int, c byte) bool) {
	const (
		code = iota
		lineComment
		blockComment
		stringLit
		charLit
		textBlock
	)
	state := code
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(text) && text[i+1] == '/':
				state = lineComment
				i++
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				state = blockComment
				i++
			case strings.HasPrefix(text[i:], `"""`):
				state = textBlock
				i += 2
			case c == '"':
				state = stringLit
			case c == '\'':
				state = charLit
			case c == '{' || c == '}':
				if !fn(i, c) {
					return
				}
			}
		case lineComment:
			if c == '\n' {
				state = code
			}
		case blockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				state = code
				i++
			}
		case stringLit, charLit:
			quote := byte('"')
			if state == charLit {
				quote = '\''
			}
			switch c {
			case '\\':
				i++
			case quote, '\n':
				// an unterminated literal ends at the line break
				state = code
			}
		case textBlock:
			if c == '\\' {
				i++
			} else if strings.HasPrefix(text[i:], `"""`) {
				state = code
				i += 2
			}
		}
	}
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
