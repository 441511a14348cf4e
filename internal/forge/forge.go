// Package forge runs the generation pipelines: it asks the generator for
// source text, splits and repairs it into compilation units, derives
// templates and hands the written files to the version-control sink.
package forge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/taskforge/internal/codeunit"
	"github.com/tensorplex-labs/taskforge/internal/gitsink"
	"github.com/tensorplex-labs/taskforge/internal/llmapi"
	"github.com/tensorplex-labs/taskforge/internal/output"
	"github.com/tensorplex-labs/taskforge/internal/prompts"
)

// ErrNoUnits aborts a run that found or wrote no compilation units at all.
var ErrNoUnits = errors.New("forge: no compilation units")

// ErrDuplicateUnit marks a block declaring a name an earlier block already took.
var ErrDuplicateUnit = errors.New("duplicate declared name")

const previewLen = 50

// Deps wires a Forge. Generator is only needed by runs that call it; a nil
// Reviewer disables the template review step; a nil Sink means no commits.
type Deps struct {
	RunID string

	Generator llmapi.Generator
	Reviewer  llmapi.Generator

	Segmenter    codeunit.Segmenter
	Resolver     *codeunit.Resolver
	TestResolver *codeunit.Resolver
	Deriver      *codeunit.Deriver

	Solutions *output.Dir
	Templates *output.Dir
	Tests     *output.Dir
	Ext       string
	// TaskFile is where the task description run writes its markdown.
	TaskFile  string

	Sink gitsink.Sink
}

type Forge struct {
	deps Deps
}

func New(deps Deps) (*Forge, error) {
	if deps.Solutions == nil {
		return nil, fmt.Errorf("solutions dir cannot be nil")
	}
	if deps.Segmenter == nil {
		deps.Segmenter = codeunit.KeywordSegmenter{}
	}
	if deps.Resolver == nil {
		deps.Resolver = codeunit.NewResolver(codeunit.DefaultImportTable())
	}
	if deps.TestResolver == nil {
		deps.TestResolver = codeunit.NewResolver(codeunit.DefaultImportTable().Merge(codeunit.TestImportTable()))
	}
	if deps.Deriver == nil {
		deps.Deriver = codeunit.NewDeriver(codeunit.DeriverOptions{})
	}
	if deps.Ext == "" {
		deps.Ext = ".java"
	}
	if deps.Sink == nil {
		deps.Sink = gitsink.Nop{}
	}
	return &Forge{deps: deps}, nil
}

// TaskRequest seeds a task description run.
type TaskRequest struct {
	Theme         string
	Language      string
	LearningGoals []string
}

// Task asks the generator for a new task description and writes it to the
// task file, which the solution and improve runs read.
func (f *Forge) Task(ctx context.Context, req TaskRequest) (*Report, error) {
	if f.deps.TaskFile == "" {
		return nil, fmt.Errorf("task file cannot be empty")
	}
	prompt, err := prompts.Task(req.Theme, req.Language, req.LearningGoals)
	if err != nil {
		return nil, err
	}
	raw, err := f.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate task description: %w", err)
	}
	desc := strings.TrimSpace(raw)
	if desc == "" {
		return nil, fmt.Errorf("generate task description: %w", llmapi.ErrEmptyResponse)
	}

	r := newReport(f.deps.RunID, KindTask)
	name := strings.TrimSuffix(filepath.Base(f.deps.TaskFile), filepath.Ext(f.deps.TaskFile))
	if err := output.WriteFile(f.deps.TaskFile, desc); err != nil {
		log.Error().Err(err).Str("path", f.deps.TaskFile).Msg("write failed")
		r.Failed = append(r.Failed, Failure{Name: name, Error: err.Error()})
		return r, err
	}
	log.Info().Str("path", f.deps.TaskFile).Str("artifact", "task").Msg("wrote file")
	r.Written = append(r.Written, Written{Name: name, Path: f.deps.TaskFile, Artifact: "task"})
	return r, f.commit(ctx, r, "Add new task description")
}

// Solution generates a fresh solution for task and writes its units.
func (f *Forge) Solution(ctx context.Context, task string) (*Report, error) {
	prompt, err := prompts.Solution(task)
	if err != nil {
		return nil, err
	}
	raw, err := f.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate solution: %w", err)
	}
	r := newReport(f.deps.RunID, KindSolution)
	if _, err := f.writeUnits(raw, f.deps.Resolver, f.deps.Solutions, r); err != nil {
		return r, err
	}
	return r, f.commit(ctx, r, "Add generated solution")
}

// Templates derives a template for every unit in the solutions directory.
func (f *Forge) Templates(ctx context.Context) (*Report, error) {
	if f.deps.Templates == nil {
		return nil, fmt.Errorf("templates dir cannot be nil")
	}
	files, err := output.ReadUnits(f.deps.Solutions.Root(), f.deps.Ext)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoUnits, f.deps.Solutions.Root())
	}
	units := make([]codeunit.CompilationUnit, 0, len(files))
	for _, file := range files {
		units = append(units, codeunit.CompilationUnit{Name: file.Name, Source: file.Content})
	}
	r := newReport(f.deps.RunID, KindTemplate)
	f.writeTemplates(ctx, units, r)
	if len(r.Written) == 0 {
		return r, fmt.Errorf("%w written to %s", ErrNoUnits, f.deps.Templates.Root())
	}
	return r, f.commit(ctx, r, "Add generated templates")
}

// Improve asks the generator to correct the existing solution against task
// and rewrites the solution units from its answer.
func (f *Forge) Improve(ctx context.Context, task string) (*Report, error) {
	current, err := f.readSolutions()
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Improve(task, current)
	if err != nil {
		return nil, err
	}
	raw, err := f.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate improved solution: %w", err)
	}
	r := newReport(f.deps.RunID, KindImprove)
	if _, err := f.writeUnits(raw, f.deps.Resolver, f.deps.Solutions, r); err != nil {
		return r, err
	}
	return r, f.commit(ctx, r, "Improve generated solution")
}

// Tests asks the generator for unit tests of the existing solution.
func (f *Forge) Tests(ctx context.Context) (*Report, error) {
	if f.deps.Tests == nil {
		return nil, fmt.Errorf("tests dir cannot be nil")
	}
	current, err := f.readSolutions()
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Tests(current)
	if err != nil {
		return nil, err
	}
	raw, err := f.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate tests: %w", err)
	}
	r := newReport(f.deps.RunID, KindTests)
	if _, err := f.writeUnits(raw, f.deps.TestResolver, f.deps.Tests, r); err != nil {
		return r, err
	}
	return r, f.commit(ctx, r, "Add generated tests")
}

// Split runs the pipeline on an already generated response, without calling
// the generator. withTemplates also derives and writes templates.
func (f *Forge) Split(ctx context.Context, raw string, withTemplates bool) (*Report, error) {
	if withTemplates && f.deps.Templates == nil {
		return nil, fmt.Errorf("templates dir cannot be nil")
	}
	r := newReport(f.deps.RunID, KindSplit)
	units, err := f.writeUnits(raw, f.deps.Resolver, f.deps.Solutions, r)
	if err != nil {
		return r, err
	}
	if withTemplates {
		f.writeTemplates(ctx, units, r)
	}
	return r, f.commit(ctx, r, "Add split compilation units")
}

func (f *Forge) generate(ctx context.Context, prompt string) (string, error) {
	if f.deps.Generator == nil {
		return "", fmt.Errorf("generator cannot be nil")
	}
	log.Debug().Int("prompt_bytes", len(prompt)).Msg("calling generator")
	return f.deps.Generator.Generate(ctx, prompt)
}

func (f *Forge) readSolutions() (string, error) {
	files, err := output.ReadUnits(f.deps.Solutions.Root(), f.deps.Ext)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoUnits, f.deps.Solutions.Root())
	}
	return output.Join(files), nil
}

func (f *Forge) commit(ctx context.Context, r *Report, message string) error {
	if err := f.deps.Sink.Commit(ctx, r.Paths(), message); err != nil {
		return fmt.Errorf("commit %s run: %w", r.Kind, err)
	}
	return nil
}
