package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/taskforge/internal/codeunit"
	"github.com/tensorplex-labs/taskforge/internal/output"
	"github.com/tensorplex-labs/taskforge/internal/prompts"
)

// writeUnits sanitizes raw, segments it, repairs and resolves every block and
// writes one file per unit to dir. Blocks without a usable declaration, later
// blocks repeating an earlier name and failed writes are recorded in r and do
// not stop the batch.
func (f *Forge) writeUnits(raw string, resolver *codeunit.Resolver, dir *output.Dir, r *Report) ([]codeunit.CompilationUnit, error) {
	blocks := f.deps.Segmenter.Segment(codeunit.Sanitize(raw))

	var units []codeunit.CompilationUnit
	seen := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		if !b.Valid() {
			f.skip(r, b, codeunit.ErrNoDeclaredName)
			continue
		}
		repaired := codeunit.Repair(b)
		if !repaired.Declares() {
			f.skip(r, b, codeunit.ErrDeclarationLost)
			continue
		}
		if seen[repaired.Name] {
			f.skip(r, b, ErrDuplicateUnit)
			continue
		}
		seen[repaired.Name] = true
		if repaired.AppendedClosers > 0 || repaired.DroppedExcess {
			log.Debug().
				Str("unit", repaired.Name).
				Int("appended_closers", repaired.AppendedClosers).
				Bool("dropped_excess", repaired.DroppedExcess).
				Msg("repaired delimiters")
		}
		units = append(units, resolver.Resolve(repaired))
	}
	log.Debug().Int("blocks", len(blocks)).Str("units", blockNames(units)).Msg("segmented response")
	if len(units) == 0 {
		return nil, fmt.Errorf("%w in generated text (%d blocks skipped)", ErrNoUnits, len(r.Skipped))
	}

	written := units[:0:0]
	for _, u := range units {
		if f.write(dir, u.Name, u.Source, "unit", r) {
			written = append(written, u)
		}
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("%w written to %s", ErrNoUnits, dir.Root())
	}
	return written, nil
}

func (f *Forge) skip(r *Report, b codeunit.CandidateBlock, reason error) {
	preview := b.Preview(previewLen)
	log.Warn().Err(reason).Str("unit", b.Name).Str("block", preview).Msg("skipping block")
	r.Skipped = append(r.Skipped, Skipped{Name: b.Name, Preview: preview, Reason: reason.Error()})
}

// writeTemplates derives, optionally reviews and writes a template per unit.
func (f *Forge) writeTemplates(ctx context.Context, units []codeunit.CompilationUnit, r *Report) {
	for _, u := range units {
		t := f.deps.Deriver.Derive(u)
		source := t.Source
		if f.deps.Reviewer != nil {
			source = f.review(ctx, t)
		}
		f.write(f.deps.Templates, t.Name, source, "template", r)
	}
}

// review asks the reviewer to tidy a derived template. The answer is kept only
// if it declares the same type, is delimiter balanced and has the same number
// of method signatures; otherwise the derived template stands.
func (f *Forge) review(ctx context.Context, t codeunit.TemplateUnit) string {
	prompt, err := prompts.Review(t.Source)
	if err != nil {
		log.Error().Err(err).Str("unit", t.Name).Msg("build review prompt")
		return t.Source
	}
	raw, err := f.deps.Reviewer.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("unit", t.Name).Msg("template review failed, keeping derived template")
		return t.Source
	}
	reviewed := codeunit.Sanitize(raw)
	if reason := f.rejectReview(t, reviewed); reason != "" {
		log.Warn().Str("unit", t.Name).Str("reason", reason).Msg("discarding reviewed template")
		return t.Source
	}
	log.Debug().Str("unit", t.Name).Msg("reviewed template accepted")
	return reviewed
}

func (f *Forge) rejectReview(t codeunit.TemplateUnit, reviewed string) string {
	var name string
	for _, b := range f.deps.Segmenter.Segment(reviewed) {
		if b.Valid() {
			name = b.Name
			break
		}
	}
	if name != t.Name {
		return fmt.Sprintf("declares %q", name)
	}
	if open, closed := codeunit.CountDelimiters(reviewed); open != closed {
		return fmt.Sprintf("unbalanced delimiters (%d open, %d closed)", open, closed)
	}
	if n := codeunit.CountMethodSignatures(reviewed, f.deps.Deriver.Options()); n != t.MethodCount {
		return fmt.Sprintf("has %d methods, want %d", n, t.MethodCount)
	}
	return ""
}

func (f *Forge) write(dir *output.Dir, name, source, artifact string, r *Report) bool {
	path, err := dir.WriteUnit(name, source)
	if err != nil {
		log.Error().Err(err).Str("unit", name).Str("artifact", artifact).Msg("write failed")
		r.Failed = append(r.Failed, Failure{Name: name, Error: err.Error()})
		return false
	}
	log.Info().Str("unit", name).Str("path", path).Str("artifact", artifact).Msg("wrote file")
	r.Written = append(r.Written, Written{Name: name, Path: path, Artifact: artifact})
	return true
}

func blockNames(units []codeunit.CompilationUnit) string {
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name)
	}
	return strings.Join(names, ",")
}
