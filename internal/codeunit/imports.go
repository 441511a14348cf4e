package codeunit

import (
	"regexp"
	"sort"
	"strings"
)

// ImportTable maps a well-known identifier to the import statement that
// brings it into scope.
type ImportTable map[string]string

// DefaultImportTable covers the container and utility types that show up in
// course exercises.
func DefaultImportTable() ImportTable {
	return ImportTable{
		"List":        "import java.util.List;",
		"ArrayList":   "import java.util.ArrayList;",
		"LinkedList":  "import java.util.LinkedList;",
		"Map":         "import java.util.Map;",
		"HashMap":     "import java.util.HashMap;",
		"TreeMap":     "import java.util.TreeMap;",
		"Set":         "import java.util.Set;",
		"HashSet":     "import java.util.HashSet;",
		"TreeSet":     "import java.util.TreeSet;",
		"Queue":       "import java.util.Queue;",
		"Deque":       "import java.util.Deque;",
		"ArrayDeque":  "import java.util.ArrayDeque;",
		"Iterator":    "import java.util.Iterator;",
		"Arrays":      "import java.util.Arrays;",
		"Collections": "import java.util.Collections;",
		"Objects":     "import java.util.Objects;",
		"Optional":    "import java.util.Optional;",
		"Scanner":     "import java.util.Scanner;",
		"Random":      "import java.util.Random;",
	}
}

// TestImportTable maps JUnit 4 identifiers to their imports.
func TestImportTable() ImportTable {
	return ImportTable{
		"Test":          "import org.junit.Test;",
		"Before":        "import org.junit.Before;",
		"BeforeClass":   "import org.junit.BeforeClass;",
		"After":         "import org.junit.After;",
		"AfterClass":    "import org.junit.AfterClass;",
		"Assert":        "import static org.junit.Assert.*;",
		"assertEquals":  "import static org.junit.Assert.*;",
		"assertTrue":    "import static org.junit.Assert.*;",
		"assertFalse":   "import static org.junit.Assert.*;",
		"assertNull":    "import static org.junit.Assert.*;",
		"assertNotNull": "import static org.junit.Assert.*;",
		"assertThrows":  "import static org.junit.Assert.*;",
	}
}

// Merge returns a copy of t with the entries of other added or overriding.
func (t ImportTable) Merge(other ImportTable) ImportTable {
	out := make(ImportTable, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

type tableEntry struct {
	word *regexp.Regexp
	stmt string
}

// Resolver re-derives the import block of a repaired unit.
type Resolver struct {
	entries []tableEntry
}

// NewResolver compiles the whole-word matchers for table.
func NewResolver(table ImportTable) *Resolver {
	idents := make([]string, 0, len(table))
	for id := range table {
		idents = append(idents, id)
	}
	sort.Strings(idents)

	r := &Resolver{entries: make([]tableEntry, 0, len(idents))}
	for _, id := range idents {
		stmt := strings.TrimSpace(table[id])
		if norm, ok := normalizeImport(stmt); ok {
			stmt = norm
		}
		r.entries = append(r.entries, tableEntry{word: wordRe(id), stmt: stmt})
	}
	return r
}

func wordRe(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

// Resolve builds the compilation unit. Stripped imports are re-admitted when
// they are wildcards or their simple name is used in the body; table imports
// are added for every known identifier used in the body. Each import appears
// once, in sorted order, followed by a blank line and the body.
func (r *Resolver) Resolve(u RepairedUnit) CompilationUnit {
	set := make(map[string]struct{})
	for _, imp := range u.StrippedImports {
		if importUsed(imp, u.Body) {
			set[imp] = struct{}{}
		}
	}
	for _, e := range r.entries {
		if e.word.MatchString(u.Body) {
			set[e.stmt] = struct{}{}
		}
	}

	imports := make([]string, 0, len(set))
	for imp := range set {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	return CompilationUnit{
		Name:    u.Name,
		Imports: imports,
		Body:    u.Body,
		Source:  assemble(imports, u.Body),
	}
}

// importUsed reports whether a normalised import line is still needed by body.
func importUsed(imp, body string) bool {
	path := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(imp, "import "), "static "), ";")
	simple := path[strings.LastIndexByte(path, '.')+1:]
	if simple == "*" {
		return true
	}
	return wordRe(simple).MatchString(body)
}

// assemble prepends the import block, keeping a leading package declaration first.
func assemble(imports []string, body string) string {
	if len(imports) == 0 {
		return body
	}
	block := strings.Join(imports, "\n")

	first, rest, _ := strings.Cut(body, "\n")
	if Classify(first) == LinePackage {
		rest = strings.TrimLeft(rest, "\r\n")
		return strings.TrimSpace(first) + "\n\n" + block + "\n\n" + rest
	}
	return block + "\n\n" + body
}
