package codeunit

import "errors"

// ErrNoDeclaredName marks a candidate block whose type name could not be resolved.
var ErrNoDeclaredName = errors.New("no declared type name")

// ErrDeclarationLost marks a unit whose repaired body no longer declares its type.
var ErrDeclarationLost = errors.New("declaration lost during repair")

// Range is a half-open byte range into the raw batch.
type Range struct {
	Start int
	End   int
}

// CandidateBlock is a slice of the raw batch believed to hold one type.
// An empty Name means the declaration could not be resolved.
type CandidateBlock struct {
	Name   string
	Text   string
	Source Range
}

// Valid reports whether the block resolved a declared name.
func (b CandidateBlock) Valid() bool { return b.Name != "" }

// Preview returns at most n bytes of the block text, for diagnostics.
func (b CandidateBlock) Preview(n int) string {
	if len(b.Text) <= n {
		return b.Text
	}
	return b.Text[:n]
}

// RepairedUnit is a candidate block after delimiter balancing and import stripping.
type RepairedUnit struct {
	Name string
	Body string

	// StrippedImports holds every import line removed from the block, normalised.
	StrippedImports []string
	// AppendedClosers counts synthetic closing delimiters added at the end.
	AppendedClosers int
	// DroppedExcess is true when surplus closing delimiters were cut off.
	DroppedExcess bool
}

// CompilationUnit is a repaired unit with its final import block. It is the
// unit written to the solutions sink, one file per declared name.
type CompilationUnit struct {
	Name    string
	Imports []string
	Body    string
	Source  string
}

// TemplateUnit is a compilation unit with each method body replaced by a
// single placeholder line.
type TemplateUnit struct {
	Name             string
	Source           string
	MethodCount      int
	PlaceholderCount int
}
