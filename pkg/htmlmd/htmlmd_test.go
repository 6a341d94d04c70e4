package htmlmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertEmptyInput(t *testing.T) {
	assert.Equal(t, "", Convert(""))
	assert.Equal(t, "", Convert("   \n\t"))
}

func TestConvertStripsScriptAndStyle(t *testing.T) {
	out := Convert("<script>alert('x')</script><style>p{color:red}</style><p>Hi</p>")

	assert.Contains(t, out, "Hi")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "color:red")
}

func TestConvertUsesATXHeadings(t *testing.T) {
	out := Convert("<h1>Title</h1><h2>Section</h2><p>Body text.</p>")

	assert.True(t, strings.HasPrefix(out, "# Title"), "expected ATX heading, got %q", out)
	assert.Contains(t, out, "## Section")
	assert.Contains(t, out, "Body text.")
}

func TestConvertTrimsWhitespace(t *testing.T) {
	out := Convert("  <p>padded</p>  ")

	assert.Equal(t, out, strings.TrimSpace(out))
	assert.Contains(t, out, "padded")
}
