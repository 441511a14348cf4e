// Package gitsink stages, commits and optionally pushes the files a run wrote.
package gitsink

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/taskforge/internal/config"
)

// Sink records a finished run's files in version control.
type Sink interface {
	Commit(ctx context.Context, paths []string, message string) error
}

// Nop is the sink used when committing is disabled.
type Nop struct{}

func (Nop) Commit(ctx context.Context, paths []string, message string) error {
	log.Debug().Int("files", len(paths)).Msg("commit disabled, leaving files unstaged")
	return nil
}

// Runner executes git with args in dir and returns its combined output.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

func execRunner(ctx context.Context, dir string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// Git shells out to the git binary.
type Git struct {
	cfg *config.GitEnvConfig
	run Runner
}

func NewGit(cfg *config.GitEnvConfig) (*Git, error) {
	return NewGitWithRunner(cfg, execRunner)
}

// NewGitWithRunner is NewGit with a substitute command runner.
func NewGitWithRunner(cfg *config.GitEnvConfig, run Runner) (*Git, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if run == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	return &Git{cfg: cfg, run: run}, nil
}

// Commit stages paths, commits them with message plus a diff stat and pushes
// when configured. Nothing staged is not an error.
func (g *Git) Commit(ctx context.Context, paths []string, message string) error {
	if len(paths) == 0 {
		log.Info().Msg("no files written, skipping commit")
		return nil
	}
	dir := g.workDir()
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		abs = append(abs, a)
	}

	if _, err := g.run(ctx, dir, append([]string{"add", "--"}, abs...)...); err != nil {
		return err
	}
	stat, err := g.run(ctx, dir, append([]string{"diff", "--cached", "--stat", "--"}, abs...)...)
	if err != nil {
		return err
	}
	stat = strings.TrimSpace(stat)
	if stat == "" {
		log.Info().Int("files", len(paths)).Msg("nothing staged, skipping commit")
		return nil
	}

	full := message + "\n\nChanges:\n" + stat
	// pathspecs keep whatever else the user had staged out of the commit
	commit := []string{
		"-c", "user.name=" + g.cfg.UserName,
		"-c", "user.email=" + g.cfg.UserEmail,
		"commit", "-m", full, "--",
	}
	if _, err := g.run(ctx, dir, append(commit, abs...)...); err != nil {
		return err
	}
	log.Info().Int("files", len(paths)).Str("message", message).Msg("committed generated files")

	if !g.cfg.Push {
		return nil
	}
	return g.push(ctx, dir)
}

func (g *Git) push(ctx context.Context, dir string) error {
	branch := g.cfg.Branch
	args := []string{"push", g.remote()}
	if branch != "" {
		args = []string{"push", "--set-upstream", g.remote(), branch}
	} else {
		out, err := g.run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return err
		}
		branch = strings.TrimSpace(out)
		args = append(args, branch)
	}
	if _, err := g.run(ctx, dir, args...); err != nil {
		return err
	}
	log.Info().Str("remote", g.remote()).Str("branch", branch).Msg("pushed generated files")
	return nil
}

func (g *Git) workDir() string {
	if g.cfg.WorkDir == "" {
		return "."
	}
	return g.cfg.WorkDir
}

func (g *Git) remote() string {
	if g.cfg.Remote == "" {
		return "origin"
	}
	return g.cfg.Remote
}
