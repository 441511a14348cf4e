package codeunit

import (
	"strings"
)

const (
	DefaultImplementPlaceholder = "// TODO: Implement this method."
	DefaultReturnPlaceholder    = "// TODO: Implement logic and return the appropriate value."
	defaultIndent               = "    "
)

// DeriverOptions tunes template derivation.
type DeriverOptions struct {
	// TrackDepth ends a method only when its delimiter depth returns to zero.
	// Without it, the first line holding a lone closing delimiter ends the
	// method, which assumes method bodies contain no nested blocks.
	TrackDepth bool

	ImplementPlaceholder string
	ReturnPlaceholder    string
	Indent               string
}

func (o DeriverOptions) withDefaults() DeriverOptions {
	if o.ImplementPlaceholder == "" {
		o.ImplementPlaceholder = DefaultImplementPlaceholder
	}
	if o.ReturnPlaceholder == "" {
		o.ReturnPlaceholder = DefaultReturnPlaceholder
	}
	if o.Indent == "" {
		o.Indent = defaultIndent
	}
	return o
}

// Deriver replaces method bodies with placeholder comments.
type Deriver struct {
	opts DeriverOptions
}

// NewDeriver returns a Deriver with unset options filled with defaults.
func NewDeriver(opts DeriverOptions) *Deriver {
	return &Deriver{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (d *Deriver) Options() DeriverOptions { return d.opts }

type deriveState int

const (
	outsideMethod deriveState = iota
	insideMethodBody
)

// Derive walks the unit line by line. Outside a method every line is kept; a
// line ending with an opening delimiter that is not a type header opens a
// method. Inside a method every line is dropped until the closing line, which
// is kept and preceded by exactly one placeholder.
func (d *Deriver) Derive(u CompilationUnit) TemplateUnit {
	var (
		out       []string
		state     = outsideMethod
		sigIndent string
		returns   bool
		depth     int
		afterDecl bool
	)
	t := TemplateUnit{Name: u.Name}

	for _, line := range strings.Split(u.Source, "\n") {
		kind := Classify(line)

		if state == insideMethodBody {
			if d.endsMethod(line, kind, &depth) {
				out = append(out, d.placeholder(sigIndent, returns), line)
				t.PlaceholderCount++
				state = outsideMethod
				continue
			}
			if returnValueRe.MatchString(line) {
				returns = true
			}
			continue
		}

		out = append(out, line)
		opens := kind == LineBlockOpen || (kind == LineOpenBrace && !afterDecl)
		if kind != LineBlank {
			afterDecl = kind == LineTypeDecl && !strings.HasSuffix(strings.TrimSpace(line), "{")
		}
		if !opens {
			continue
		}
		t.MethodCount++
		state = insideMethodBody
		sigIndent = leadingWhitespace(line)
		returns = false
		open, closed := CountDelimiters(line)
		depth = max(open-closed, 1)
	}

	if state == insideMethodBody {
		out = append(out, d.placeholder(sigIndent, returns))
		t.PlaceholderCount++
	}
	t.Source = strings.Join(out, "\n")
	return t
}

func (d *Deriver) endsMethod(line string, kind LineKind, depth *int) bool {
	if !d.opts.TrackDepth {
		return kind == LineClose
	}
	open, closed := CountDelimiters(line)
	*depth += open - closed
	return *depth <= 0
}

func (d *Deriver) placeholder(indent string, returns bool) string {
	if returns {
		return indent + d.opts.Indent + d.opts.ReturnPlaceholder
	}
	return indent + d.opts.Indent + d.opts.ImplementPlaceholder
}

// CountMethodSignatures counts the lines that open a method body under opts.
func CountMethodSignatures(source string, opts DeriverOptions) int {
	return NewDeriver(opts).Derive(CompilationUnit{Source: source}).MethodCount
}
