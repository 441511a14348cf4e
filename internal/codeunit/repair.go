package codeunit

import (
	"strings"
)

// Repair truncates a candidate block at its last closing delimiter, strips
// every import line and balances delimiters. Missing closers are appended at
// the end. A surplus closer ahead of the declaration is dropped on its own;
// past the declaration it is cut off together with whatever follows it.
//
// Repair is idempotent: repairing a repaired body returns it unchanged.
func Repair(b CandidateBlock) RepairedUnit {
	body, stripped := stripImports(b.Text)
	u := RepairedUnit{Name: b.Name, StrippedImports: stripped}

	body, u.DroppedExcess = dropUnmatchedClosers(body, declarationOffset(body))
	body = truncateAtLastClose(body, declarationOffset(body))
	body = trimBlankEdges(body)

	if open, closed := CountDelimiters(body); open > closed && body != "" {
		body += strings.Repeat("\n}", open-closed)
		u.AppendedClosers = open - closed
	}
	u.Body = body
	return u
}

// Declares reports whether the repaired body still declares the unit's type.
func (u RepairedUnit) Declares() bool {
	if u.Name == "" {
		return false
	}
	for _, m := range looseNameRe.FindAllStringSubmatch(u.Body, -1) {
		if m[1] == u.Name {
			return true
		}
	}
	return false
}

func stripImports(text string) (string, []string) {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	var stripped []string
	for _, line := range lines {
		if imp, ok := normalizeImport(line); ok {
			stripped = append(stripped, imp)
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), stripped
}

// normalizeImport returns the canonical single-spaced form of an import line.
func normalizeImport(line string) (string, bool) {
	m := importLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	path := strings.Join(strings.Fields(m[2]), "")
	if m[1] != "" {
		return "import static " + path + ";", true
	}
	return "import " + path + ";", true
}

// declarationOffset returns where the first type declaration in text begins,
// or 0 when there is none.
func declarationOffset(text string) int {
	if m := declAnchorRe.FindStringSubmatchIndex(text); m != nil {
		return m[2]
	}
	if loc := looseNameRe.FindStringIndex(text); loc != nil {
		return loc[0]
	}
	return 0
}

// truncateAtLastClose cuts text after its last structural closing delimiter.
// A closer before from, or none at all, leaves text unchanged.
func truncateAtLastClose(text string, from int) string {
	last := -1
	scanDelimiters(text, func(i int, c byte) bool {
		if c == '}' {
			last = i
		}
		return true
	})
	if last < from {
		return text
	}
	return text[:last+1]
}

// dropUnmatchedClosers removes closing delimiters that have no opener. Those
// before declAt are removed one by one; the first one at or after declAt
// ends the text.
func dropUnmatchedClosers(text string, declAt int) (string, bool) {
	var b strings.Builder
	depth, from, cut := 0, 0, -1
	dropped := false
	scanDelimiters(text, func(i int, c byte) bool {
		switch {
		case c == '{':
			depth++
		case depth > 0:
			depth--
		case i < declAt:
			b.WriteString(text[from:i])
			from = i + 1
			dropped = true
		default:
			cut = i
			return false
		}
		return true
	})
	if !dropped && cut < 0 {
		return text, false
	}
	if cut < 0 {
		cut = len(text)
	}
	b.WriteString(text[from:cut])
	return b.String(), true
}

// trimBlankEdges removes whitespace-only lines at the start and trailing
// whitespace at the end.
func trimBlankEdges(text string) string {
	text = strings.TrimRight(text, " \t\r\n")
	for {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 || strings.TrimSpace(text[:nl]) != "" {
			break
		}
		text = text[nl+1:]
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
