package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/taskforge/internal/codeunit"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "o1-mini", cfg.Model)
	assert.Equal(t, "gpt-4", cfg.ReviewModel)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 120*time.Second, cfg.ClientTimeout)
	assert.Equal(t, ".hidden_tasks", cfg.SolutionsDir)
	assert.Equal(t, "gen_src", cfg.TemplatesDir)
	assert.Equal(t, "gen_test", cfg.TestsDir)
	assert.Equal(t, ".java", cfg.UnitExt)
	assert.False(t, cfg.Commit)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "github-actions", cfg.UserName)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "English", cfg.Language)
	require.Len(t, cfg.LearningGoals, 7)
	assert.Equal(t, "Designing Java classes", cfg.LearningGoals[0])
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MAX_ATTEMPTS", "5")
	t.Setenv("CLIENT_TIMEOUT", "10s")
	t.Setenv("GIT_COMMIT", "true")
	t.Setenv("GIT_BRANCH", "task/shapes")
	t.Setenv("TEMPLATES_DIR", "out/src")
	t.Setenv("TASK_LEARNING_GOALS", "Recursion;Interfaces")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.ClientTimeout)
	assert.True(t, cfg.Commit)
	assert.Equal(t, "task/shapes", cfg.Branch)
	assert.Equal(t, "out/src", cfg.TemplatesDir)
	assert.Equal(t, []string{"Recursion", "Interfaces"}, cfg.LearningGoals)
}

func TestLoadConfigInvalidValue(t *testing.T) {
	t.Setenv("LLM_MAX_ATTEMPTS", "many")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TASKFORGE_DOTENV_VALUE=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TASKFORGE_DOTENV_VALUE") })

	loaded, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "loaded", os.Getenv("TASKFORGE_DOTENV_VALUE"))
}

func TestLoadDotEnvMissing(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestLoadImportTable(t *testing.T) {
	base := codeunit.ImportTable{"List": "import java.util.List;"}

	got, err := LoadImportTable("", base)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	dir := t.TempDir()
	merge := filepath.Join(dir, "merge.yaml")
	require.NoError(t, os.WriteFile(merge, []byte("imports:\n  Widget: \"import com.example.Widget;\"\n"), 0o644))
	got, err = LoadImportTable(merge, base)
	require.NoError(t, err)
	assert.Equal(t, codeunit.ImportTable{
		"List":   "import java.util.List;",
		"Widget": "import com.example.Widget;",
	}, got)

	replace := filepath.Join(dir, "replace.yaml")
	require.NoError(t, os.WriteFile(replace, []byte("replace: true\nimports:\n  Widget: \"import com.example.Widget;\"\n"), 0o644))
	got, err = LoadImportTable(replace, base)
	require.NoError(t, err)
	assert.Equal(t, codeunit.ImportTable{"Widget": "import com.example.Widget;"}, got)
}

func TestLoadImportTableErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadImportTable(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("imports: [unclosed"), 0o644))
	_, err = LoadImportTable(bad, nil)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("replace: true\n"), 0o644))
	_, err = LoadImportTable(empty, nil)
	require.Error(t, err)
}
