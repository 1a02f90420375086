package normalize

import (
	"html"
	"strings"
)

// entityTable maps the named and numeric entities a clipped note should show
// as plain ASCII. amp, lt, gt and quot stay encoded here so the HTML parser
// can still tell markup from text.
var entityTable = []string{
	"&nbsp;", " ",
	"&#160;", " ",
	"&#xa0;", " ",
	"&apos;", "'",
	"&#39;", "'",
	"&#x27;", "'",
	"&lsquo;", "'",
	"&rsquo;", "'",
	"&#8216;", "'",
	"&#8217;", "'",
	"&ldquo;", `"`,
	"&rdquo;", `"`,
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&mdash;", "—",
	"&ndash;", "–",
	"&#8212;", "—",
	"&#8211;", "–",
	"&hellip;", "...",
	"&#8230;", "...",
}

var entityReplacer = strings.NewReplacer(entityTable...)

// DecodeEntities decodes a plain-text string: the fixed typographic table
// first, then every remaining HTML entity.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(entityReplacer.Replace(s))
}
