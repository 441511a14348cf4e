package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/taskforge/internal/codeunit"
	"github.com/tensorplex-labs/taskforge/internal/config"
	"github.com/tensorplex-labs/taskforge/internal/forge"
	"github.com/tensorplex-labs/taskforge/internal/gitsink"
	"github.com/tensorplex-labs/taskforge/internal/llmapi"
	"github.com/tensorplex-labs/taskforge/internal/output"
)

func newTaskCmd(a *app) *cobra.Command {
	var out string
	var goals []string
	req := forge.TaskRequest{}
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Generate a new task description from a theme and learning goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" {
				a.cfg.TaskFile = out
			}
			if req.Theme == "" {
				req.Theme = a.cfg.Theme
			}
			if req.Language == "" {
				req.Language = a.cfg.Language
			}
			req.LearningGoals = a.cfg.LearningGoals
			if len(goals) > 0 {
				req.LearningGoals = goals
			}
			f, err := a.newForge(cmd.Context(), true)
			if err != nil {
				return err
			}
			return a.finish(f.Task(cmd.Context(), req))
		},
	}
	cmd.Flags().StringVar(&req.Theme, "theme", "", "task theme (TASK_THEME)")
	cmd.Flags().StringVar(&req.Language, "language", "", "language the description is written in (TASK_LANGUAGE)")
	cmd.Flags().StringSliceVar(&goals, "goal", nil, "learning goal, repeatable (TASK_LEARNING_GOALS)")
	cmd.Flags().StringVar(&out, "out", "", "task description file to write (TASK_FILE)")
	return cmd
}

func newSolutionCmd(a *app) *cobra.Command {
	var task string
	cmd := &cobra.Command{
		Use:   "solution",
		Short: "Generate a solution for the task description and split it into units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := a.readTask(task)
			if err != nil {
				return err
			}
			f, err := a.newForge(cmd.Context(), true)
			if err != nil {
				return err
			}
			return a.finish(f.Solution(cmd.Context(), desc))
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task description file (TASK_FILE)")
	return cmd
}

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Derive student templates from the solution units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.newForge(cmd.Context(), false)
			if err != nil {
				return err
			}
			return a.finish(f.Templates(cmd.Context()))
		},
	}
	cmd.Flags().BoolVar(&a.review, "review", false, "ask the review model to tidy each derived template")
	return cmd
}

func newImproveCmd(a *app) *cobra.Command {
	var task string
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Ask the generator to correct the existing solution units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := a.readTask(task)
			if err != nil {
				return err
			}
			f, err := a.newForge(cmd.Context(), true)
			if err != nil {
				return err
			}
			return a.finish(f.Improve(cmd.Context(), desc))
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task description file (TASK_FILE)")
	return cmd
}

func newTestsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tests",
		Short: "Generate unit tests for the solution units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.newForge(cmd.Context(), true)
			if err != nil {
				return err
			}
			return a.finish(f.Tests(cmd.Context()))
		},
	}
}

func newSplitCmd(a *app) *cobra.Command {
	var withTemplates bool
	cmd := &cobra.Command{
		Use:   "split <file|->",
		Short: "Split a saved generator response into units without calling the generator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			f, err := a.newForge(cmd.Context(), false)
			if err != nil {
				return err
			}
			return a.finish(f.Split(cmd.Context(), raw, withTemplates))
		},
	}
	cmd.Flags().BoolVar(&withTemplates, "templates", false, "also derive templates for the split units")
	cmd.Flags().BoolVar(&a.review, "review", false, "ask the review model to tidy each derived template")
	return cmd
}

// newForge wires the pipeline from configuration. The generator is only
// built for runs that call it.
func (a *app) newForge(ctx context.Context, withGenerator bool) (*forge.Forge, error) {
	cfg := a.cfg
	table, err := config.LoadImportTable(cfg.ImportTableFile, codeunit.DefaultImportTable())
	if err != nil {
		return nil, err
	}
	deps := forge.Deps{
		RunID:        a.runID,
		Segmenter:    codeunit.KeywordSegmenter{SplitNested: a.splitNested},
		Resolver:     codeunit.NewResolver(table),
		TestResolver: codeunit.NewResolver(table.Merge(codeunit.TestImportTable())),
		Deriver:      codeunit.NewDeriver(codeunit.DeriverOptions{TrackDepth: a.trackDepth}),
		Ext:          cfg.UnitExt,
		TaskFile:     cfg.TaskFile,
		Sink:         gitsink.Nop{},
	}
	if deps.Solutions, err = output.NewDir(cfg.SolutionsDir, cfg.UnitExt); err != nil {
		return nil, err
	}
	if deps.Templates, err = output.NewDir(cfg.TemplatesDir, cfg.UnitExt); err != nil {
		return nil, err
	}
	if deps.Tests, err = output.NewDir(cfg.TestsDir, cfg.UnitExt); err != nil {
		return nil, err
	}

	if withGenerator {
		if deps.Generator, err = llmapi.New(ctx, &cfg.GeneratorEnvConfig, cfg.Model); err != nil {
			return nil, fmt.Errorf("init generator: %w", err)
		}
	}
	if a.review {
		if deps.Reviewer, err = llmapi.New(ctx, &cfg.GeneratorEnvConfig, cfg.ReviewModel); err != nil {
			return nil, fmt.Errorf("init reviewer: %w", err)
		}
	}
	if cfg.Commit {
		g, err := gitsink.NewGit(&cfg.GitEnvConfig)
		if err != nil {
			return nil, err
		}
		deps.Sink = g
	}
	return forge.New(deps)
}

// finish logs the run summary, writes the report file when asked and passes
// the run error through.
func (a *app) finish(r *forge.Report, runErr error) error {
	if r == nil {
		return runErr
	}
	r.Log()
	if a.reportPath != "" {
		if err := r.WriteJSON(a.reportPath); err != nil {
			log.Error().Err(err).Str("path", a.reportPath).Msg("failed to write run report")
		}
	}
	return runErr
}

func (a *app) readTask(path string) (string, error) {
	if path == "" {
		path = a.cfg.TaskFile
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read task description: %w", err)
	}
	return string(b), nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read response file: %w", err)
	}
	return string(b), nil
}
