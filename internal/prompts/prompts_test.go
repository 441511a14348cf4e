package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/taskforge/internal/codeunit"
)

func TestSolutionPrompt(t *testing.T) {
	p, err := Solution("  Model a bank account.\n")
	require.NoError(t, err)
	assert.Contains(t, p, "### Task Description\n\nModel a bank account.\n\n### Inspirational Code Snippet")
	assert.Contains(t, p, "public class Rectangle {")
	assert.Contains(t, p, "Write NO TEXT beyond the code itself")
}

func TestTaskPrompt(t *testing.T) {
	p, err := Task("A library lending system", "Swedish", []string{"Designing Java classes", " ", "Using the `main` method"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "Create a new programming task in Swedish with the following theme: A library lending system."))
	assert.Contains(t, p, "* Designing Java classes\n* Using the `main` method\n")
	assert.Contains(t, p, "### Example Task\n\n# Is this a Triangle?")

	p, err = Task("Shapes", "", nil)
	require.NoError(t, err)
	assert.Contains(t, p, "in English with")

	_, err = Task("  ", "English", nil)
	require.Error(t, err)
}

func TestReviewPrompt(t *testing.T) {
	p, err := Review("class A {\n}")
	require.NoError(t, err)
	assert.Contains(t, p, "### Template Code:\nclass A {\n}")
}

func TestImprovePrompt(t *testing.T) {
	p, err := Improve("task", "class A {\n}")
	require.NoError(t, err)
	assert.Contains(t, p, "### Task Description\ntask")
	assert.Contains(t, p, "### Current Solution\nclass A {\n}")
}

func TestTestsPrompt(t *testing.T) {
	p, err := Tests("class A {\n}")
	require.NoError(t, err)
	assert.Contains(t, p, "### Solution\nclass A {\n}")
	assert.Contains(t, p, "public class RectangleTest {")
}

func TestInspirationSegmentsIntoTwoUnits(t *testing.T) {
	blocks := codeunit.KeywordSegmenter{}.Segment(Inspiration())
	require.Len(t, blocks, 2)
	assert.Equal(t, "Rectangle", blocks[0].Name)
	assert.Equal(t, "Triangle", blocks[1].Name)
}

func TestExampleTestsSegmentIntoTwoUnits(t *testing.T) {
	blocks := codeunit.KeywordSegmenter{}.Segment(ExampleTests())
	require.Len(t, blocks, 2)
	assert.Equal(t, "RectangleTest", blocks[0].Name)
	assert.Equal(t, "TriangleTest", blocks[1].Name)
}
