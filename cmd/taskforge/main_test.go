package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/taskforge/internal/forge"
)

const response = "```java\n" +
	"public class Counter {\n" +
	"    private Map<String, Integer> counts = new HashMap<>();\n" +
	"\n" +
	"    public int get(String key) {\n" +
	"        return counts.getOrDefault(key, 0);\n" +
	"    }\n" +
	"}\n" +
	"```\n" +
	"class Helper {\n" +
	"    void help() {\n" +
	"        System.out.println(\"help\");\n" +
	"    }\n" +
	"}\n" +
	"Hope this helps!"

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "response.txt")
	require.NoError(t, os.WriteFile(in, []byte(response), 0o644))
	solutions := filepath.Join(dir, "solutions")
	templates := filepath.Join(dir, "templates")
	report := filepath.Join(dir, "report.json")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"split", in, "--templates",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--solutions-dir", solutions,
		"--templates-dir", templates,
		"--report", report,
	})
	require.NoError(t, cmd.Execute())

	counter, err := os.ReadFile(filepath.Join(solutions, "Counter.java"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(counter), "import java.util.HashMap;\nimport java.util.Map;\n\npublic class Counter {"))

	helper, err := os.ReadFile(filepath.Join(templates, "Helper.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Helper {\n    void help() {\n        // TODO: Implement this method.\n    }\n}\n", string(helper))

	b, err := os.ReadFile(report)
	require.NoError(t, err)
	var r forge.Report
	require.NoError(t, sonic.Unmarshal(b, &r))
	assert.Equal(t, forge.KindSplit, r.Kind)
	assert.Len(t, r.Written, 4)
	assert.NotEmpty(t, r.RunID)
}

func TestSplitCommandWithoutUnits(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "response.txt")
	require.NoError(t, os.WriteFile(in, []byte("Sorry, I cannot do that."), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"split", in, "--env-file", filepath.Join(dir, "missing.env"), "--solutions-dir", filepath.Join(dir, "out")})
	err := cmd.Execute()
	require.ErrorIs(t, err, forge.ErrNoUnits)
}

func TestSplitCommandRequiresInput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"split"})
	require.Error(t, cmd.Execute())
}

func TestSolutionCommandMissingTask(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"solution", "--env-file", filepath.Join(dir, "missing.env"), "--task", filepath.Join(dir, "none.md")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read task description")
}

func TestTaskCommand(t *testing.T) {
	var prompt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		prompt = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"# Library Lending\n"}}]}`))
	}))
	defer ts.Close()
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", ts.URL)

	dir := t.TempDir()
	out := filepath.Join(dir, "tasks", "new_task.md")
	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"task",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--theme", "A library lending system",
		"--goal", "Recursion",
		"--out", out,
	})
	require.NoError(t, cmd.Execute())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Library Lending\n", string(b))
	assert.Contains(t, prompt, "A library lending system")
	assert.Contains(t, prompt, "Recursion")
	assert.NotContains(t, prompt, "Designing Java classes")
}
