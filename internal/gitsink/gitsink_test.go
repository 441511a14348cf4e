package gitsink

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/taskforge/internal/config"
)

type recorder struct {
	calls [][]string
	reply func(args []string) (string, error)
}

func (r *recorder) run(ctx context.Context, dir string, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	if r.reply != nil {
		return r.reply(args)
	}
	return "", nil
}

func (r *recorder) verbs() []string {
	var out []string
	for _, c := range r.calls {
		for _, a := range c {
			if a == "-c" || strings.Contains(a, "=") {
				continue
			}
			out = append(out, a)
			break
		}
	}
	return out
}

func testGitConfig() *config.GitEnvConfig {
	return &config.GitEnvConfig{
		Remote:    "origin",
		UserName:  "github-actions",
		UserEmail: "actions@github.com",
		WorkDir:   ".",
	}
}

func TestNewGit_NilConfig(t *testing.T) {
	_, err := NewGit(nil)
	require.Error(t, err)
}

func TestCommit_NoPaths(t *testing.T) {
	rec := &recorder{}
	g, err := NewGitWithRunner(testGitConfig(), rec.run)
	require.NoError(t, err)

	require.NoError(t, g.Commit(context.Background(), nil, "msg"))
	assert.Empty(t, rec.calls)
}

func TestCommit_NothingStaged(t *testing.T) {
	rec := &recorder{}
	g, err := NewGitWithRunner(testGitConfig(), rec.run)
	require.NoError(t, err)

	require.NoError(t, g.Commit(context.Background(), []string{"gen_src/A.java"}, "msg"))
	assert.Equal(t, []string{"add", "diff"}, rec.verbs())
}

func TestCommit_AppendsDiffStat(t *testing.T) {
	rec := &recorder{reply: func(args []string) (string, error) {
		if args[0] == "diff" {
			return " gen_src/A.java | 3 +++\n 1 file changed, 3 insertions(+)\n", nil
		}
		return "", nil
	}}
	g, err := NewGitWithRunner(testGitConfig(), rec.run)
	require.NoError(t, err)

	require.NoError(t, g.Commit(context.Background(), []string{"gen_src/A.java"}, "Add generated solution"))
	require.Equal(t, []string{"add", "diff", "commit"}, rec.verbs())

	abs, err := filepath.Abs("gen_src/A.java")
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "--", abs}, rec.calls[0])

	commit := rec.calls[2]
	assert.Equal(t, []string{"-c", "user.name=github-actions", "-c", "user.email=actions@github.com", "commit", "-m"}, commit[:6])
	assert.Equal(t, "Add generated solution\n\nChanges:\ngen_src/A.java | 3 +++\n 1 file changed, 3 insertions(+)", commit[6])
	assert.Equal(t, []string{"--", abs}, commit[7:])
}

func TestCommit_PushWithBranch(t *testing.T) {
	cfg := testGitConfig()
	cfg.Push = true
	cfg.Branch = "task/rectangle"
	rec := &recorder{reply: func(args []string) (string, error) {
		if args[0] == "diff" {
			return "A.java | 1 +", nil
		}
		return "", nil
	}}
	g, err := NewGitWithRunner(cfg, rec.run)
	require.NoError(t, err)

	require.NoError(t, g.Commit(context.Background(), []string{"A.java"}, "msg"))
	assert.Equal(t, []string{"push", "--set-upstream", "origin", "task/rectangle"}, rec.calls[len(rec.calls)-1])
}

func TestCommit_PushCurrentBranch(t *testing.T) {
	cfg := testGitConfig()
	cfg.Push = true
	rec := &recorder{reply: func(args []string) (string, error) {
		switch args[0] {
		case "diff":
			return "A.java | 1 +", nil
		case "rev-parse":
			return "main\n", nil
		}
		return "", nil
	}}
	g, err := NewGitWithRunner(cfg, rec.run)
	require.NoError(t, err)

	require.NoError(t, g.Commit(context.Background(), []string{"A.java"}, "msg"))
	assert.Equal(t, []string{"push", "origin", "main"}, rec.calls[len(rec.calls)-1])
}

func TestCommit_AddFailure(t *testing.T) {
	boom := errors.New("not a git repository")
	rec := &recorder{reply: func(args []string) (string, error) { return "", boom }}
	g, err := NewGitWithRunner(testGitConfig(), rec.run)
	require.NoError(t, err)

	err = g.Commit(context.Background(), []string{"A.java"}, "msg")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.calls, 1)
}

func TestNop(t *testing.T) {
	var s Sink = Nop{}
	assert.NoError(t, s.Commit(context.Background(), []string{"A.java"}, "msg"))
}

func TestCommit_RealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed; skipping integration test")
	}
	dir := t.TempDir()
	ctx := context.Background()
	_, err := execRunner(ctx, dir, "init", "-q")
	require.NoError(t, err)

	file := filepath.Join(dir, "gen_src", "A.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("class A {\n}\n"), 0o644))

	cfg := testGitConfig()
	cfg.WorkDir = dir
	g, err := NewGit(cfg)
	require.NoError(t, err)
	require.NoError(t, g.Commit(ctx, []string{file}, "Add generated solution"))

	out, err := execRunner(ctx, dir, "log", "--format=%an %s")
	require.NoError(t, err)
	assert.Equal(t, "github-actions Add generated solution", strings.TrimSpace(out))

	// a second commit of unchanged files is skipped
	require.NoError(t, g.Commit(ctx, []string{file}, "again"))
	out, err = execRunner(ctx, dir, "rev-list", "--count", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))
}

func TestCommit_LeavesOtherStagedFilesAlone(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed; skipping integration test")
	}
	dir := t.TempDir()
	ctx := context.Background()
	_, err := execRunner(ctx, dir, "init", "-q")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("draft\n"), 0o644))
	_, err = execRunner(ctx, dir, "add", "notes.txt")
	require.NoError(t, err)

	file := filepath.Join(dir, "gen_src", "A.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("class A {\n}\n"), 0o644))

	cfg := testGitConfig()
	cfg.WorkDir = dir
	g, err := NewGit(cfg)
	require.NoError(t, err)
	require.NoError(t, g.Commit(ctx, []string{file}, "Add generated solution"))

	out, err := execRunner(ctx, dir, "show", "--name-only", "--format=", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "gen_src/A.java", strings.TrimSpace(out))

	out, err = execRunner(ctx, dir, "diff", "--cached", "--name-only")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", strings.TrimSpace(out))
}
