// Package htmlmd converts HTML documentation fragments to markdown.
//
// The Private Automation Hub serves role and collection READMEs as rendered
// HTML; the migration agent consumes markdown.
package htmlmd

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Convert renders an HTML fragment as markdown.
//
// Script and style elements are dropped, headings use ATX style and the
// result is trimmed. Empty input yields an empty string and conversion
// failures degrade to an empty string rather than an error, matching the
// best-effort policy of the enrichment pipeline.
func Convert(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle: "atx",
	})
	converter.Remove("script", "style")

	out, err := converter.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
