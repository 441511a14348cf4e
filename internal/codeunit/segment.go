package codeunit

import (
	"regexp"
	"strings"
)

// Segmenter splits a raw batch into candidate blocks, one per type.
type Segmenter interface {
	Segment(raw string) []CandidateBlock
}

var (
	// declAnchorRe finds a type declaration at the start of a line or right
	// after a statement or block end. Group 1 marks where the block begins.
	declAnchorRe = regexp.MustCompile(`(?m)(?:^|[;}])[ \t]*(` + modifiersPattern + typeKeywordPattern + `\s+` + identPattern + `)`)
	// declNameRe resolves the declared name: keyword, identifier, then an
	// opening delimiter on the same line or the next one.
	declNameRe = regexp.MustCompile(`^` + modifiersPattern + typeKeywordPattern + `\s+(` + identPattern + `)[^{};\n]*(?:\n[^{};\n]*)?\{`)
	// looseNameRe is used when no anchored declaration exists at all.
	looseNameRe = regexp.MustCompile(`\b` + typeKeywordPattern + `\s+(` + identPattern + `)[^{};\n]*(?:\n[^{};\n]*)?\{`)
)

// KeywordSegmenter anchors blocks on type-declaration keywords.
//
// By default a declaration only starts a new block when the preceding block
// is closed (brace depth back to zero) or the declaration is indented no
// deeper than the one that opened the running block, so nested types stay
// inside their enclosing type. SplitNested starts a block at every
// declaration.
type KeywordSegmenter struct {
	SplitNested bool
}

var _ Segmenter = KeywordSegmenter{}

// Segment implements Segmenter. Text before the first declaration is
// prepended to the first block. Without any declaration the whole batch
// becomes a single block.
func (s KeywordSegmenter) Segment(raw string) []CandidateBlock {
	starts := s.blockStarts(raw)
	if len(starts) == 0 {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		block := CandidateBlock{Text: raw, Source: Range{Start: 0, End: len(raw)}}
		if m := looseNameRe.FindStringSubmatch(raw); m != nil {
			block.Name = m[1]
		}
		return []CandidateBlock{block}
	}

	blocks := make([]CandidateBlock, 0, len(starts))
	for i, start := range starts {
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		from := start
		if i == 0 {
			// leftover context belongs to the first block
			from = 0
		}
		block := CandidateBlock{Text: raw[from:end], Source: Range{Start: from, End: end}}
		if m := declNameRe.FindStringSubmatch(raw[start:end]); m != nil {
			block.Name = m[1]
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func (s KeywordSegmenter) blockStarts(raw string) []int {
	var starts []int
	col := 0
	for _, m := range declAnchorRe.FindAllStringSubmatchIndex(raw, -1) {
		start := m[2]
		if len(starts) == 0 || s.SplitNested {
			starts = append(starts, start)
			col = column(raw, start)
			continue
		}
		open, closed := CountDelimiters(raw[starts[len(starts)-1]:start])
		// a nested type is indented deeper than the type that encloses it
		if c := column(raw, start); open-closed <= 0 || c <= col {
			starts = append(starts, start)
			col = c
		}
	}
	return starts
}

// column returns the byte offset of i from the start of its line.
func column(raw string, i int) int {
	return i - (strings.LastIndexByte(raw[:i], '\n') + 1)
}
