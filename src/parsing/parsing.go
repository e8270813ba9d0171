package parsing

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/util"
)

/*
Used for generating the final HTML for a post. This is the "render" function
of the content pipeline: pure, synchronous, and safe to call anywhere. Raw
HTML in the source is not passed through, so the output is safe for display.
*/
var RealMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlightExtension,
	),
)

func ParseMarkdown(source string, md goldmark.Markdown) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}

	return buf.String()
}

// Renders a post's markdown into sanitized display HTML.
func ParsePostInput(source string) string {
	return ParseMarkdown(source, RealMarkdown)
}

var highlightExtension = highlighting.NewHighlighting(
	highlighting.WithFormatOptions(BiostarChromaOptions...),
	highlighting.WithWrapperRenderer(func(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
		if entering {
			w.WriteString(`<pre class="bst-code">`)
		} else {
			w.WriteString(`</pre>`)
		}
	}),
)
