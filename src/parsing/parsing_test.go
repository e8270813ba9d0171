package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	t.Run("emphasis", func(t *testing.T) {
		html := ParsePostInput("*A*")
		assert.Equal(t, "<p><em>A</em></p>\n", html)
	})
	t.Run("raw html is not passed through", func(t *testing.T) {
		html := ParsePostInput("<script>alert('hi')</script>")
		assert.NotContains(t, html, "<script>")
	})
	t.Run("fenced code blocks", func(t *testing.T) {
		t.Run("multiple lines", func(t *testing.T) {
			html := ParsePostInput("```\nmultiple lines\n\tof code\n```")
			t.Log(html)
			assert.Equal(t, 1, strings.Count(html, "<pre"))
			assert.Contains(t, html, `class="bst-code"`)
			assert.Contains(t, html, "multiple lines\n\tof code")
		})
		t.Run("multiple lines with language", func(t *testing.T) {
			html := ParsePostInput("```go\nfunc main() {\n\tfmt.Println(\"Hello, world!\")\n}\n```")
			t.Log(html)
			assert.Equal(t, 1, strings.Count(html, "<pre"))
			assert.Contains(t, html, `class="bst-code"`)
			assert.Contains(t, html, "Println")
			assert.Contains(t, html, "Hello, world!")
		})
	})
}
