// Package prompts renders the prompts sent to the generator for each run kind.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl templates/*.java templates/*.md
var templatesFS embed.FS

var tmpl = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// Inspiration returns the example solution shown to the generator.
func Inspiration() string { return mustRead("templates/inspiration.java") }

// ExampleTests returns the example test classes shown to the generator.
func ExampleTests() string { return mustRead("templates/example_tests.java") }

// ExampleTask returns the task description shown as a structural example.
func ExampleTask() string { return mustRead("templates/example_task.md") }

// Task asks for a new task description on theme, written in language and
// covering every learning goal.
func Task(theme, language string, learningGoals []string) (string, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return "", fmt.Errorf("task theme cannot be empty")
	}
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	goals := make([]string, 0, len(learningGoals))
	for _, g := range learningGoals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	return render("task.tmpl", struct {
		Theme, Language, Example string
		LearningGoals            []string
	}{
		Theme:         theme,
		Language:      strings.TrimSpace(language),
		Example:       ExampleTask(),
		LearningGoals: goals,
	})
}

// Solution asks for a fresh solution to task.
func Solution(task string) (string, error) {
	return render("solution.tmpl", struct{ Task, Inspiration string }{
		Task:        strings.TrimSpace(task),
		Inspiration: Inspiration(),
	})
}

// Review asks for a structural review of a derived template.
func Review(source string) (string, error) {
	return render("review.tmpl", struct{ Template string }{Template: source})
}

// Improve asks for a corrected version of an existing solution.
func Improve(task, solution string) (string, error) {
	return render("improve.tmpl", struct{ Task, Solution string }{
		Task:     strings.TrimSpace(task),
		Solution: solution,
	})
}

// Tests asks for unit tests covering solution.
func Tests(solution string) (string, error) {
	return render("tests.tmpl", struct{ Solution, Examples string }{
		Solution: solution,
		Examples: ExampleTests(),
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func mustRead(name string) string {
	b, err := templatesFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(b))
}
