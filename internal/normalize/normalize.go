// Package normalize strips dead weight from raw HTML before content selection.
//
// Clean runs a single linear pass over the x/net/html tokenizer, so malformed
// or adversarial markup is bounded: an unterminated element simply runs to the
// end of the input.
package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stripped lists elements whose whole subtree is dropped.
var stripped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Svg:      true,
}

// Clean removes scripts, styles, noscript, iframes, svg, comments and on*
// event attributes, and decodes the typographic entity table in text.
// Everything else is kept as written.
func Clean(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var out strings.Builder
	out.Grow(len(raw))

	var skip atom.Atom
	depth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a tokenizer failure; both end the scan.
			return out.String()
		}

		if depth > 0 {
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch tt {
			case html.StartTagToken:
				if a == skip {
					depth++
				}
			case html.EndTagToken:
				if a == skip {
					depth--
				}
			}
			continue
		}

		switch tt {
		case html.CommentToken:
			continue
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if a := atom.Lookup([]byte(tok.Data)); stripped[a] {
				if tt == html.StartTagToken {
					skip = a
					depth = 1
				}
				continue
			}
			if dropEventAttrs(&tok) {
				out.WriteString(tok.String())
				continue
			}
			out.WriteString(raw)
		case html.EndTagToken:
			name, _ := z.TagName()
			if stripped[atom.Lookup(name)] {
				continue
			}
			out.Write(z.Raw())
		case html.TextToken:
			out.WriteString(entityReplacer.Replace(string(z.Raw())))
		default:
			out.Write(z.Raw())
		}
	}
}

// dropEventAttrs removes on* handler attributes and reports whether any
// were present.
func dropEventAttrs(tok *html.Token) bool {
	kept := tok.Attr[:0]
	for _, a := range tok.Attr {
		if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
			kept = append(kept, a)
		}
	}
	dropped := len(kept) != len(tok.Attr)
	tok.Attr = kept
	return dropped
}

// Parse cleans raw and parses it into a DOM tree.
func Parse(raw string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(Clean(raw)))
	if err != nil {
		return nil, fmt.Errorf("normalize: parse: %w", err)
	}
	return doc, nil
}

// Render serializes the children of n back to HTML.
func Render(n *html.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("normalize: render: %w", err)
		}
	}
	return buf.String(), nil
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// HasMarkup reports whether raw contains at least one tag, comment or doctype.
func HasMarkup(raw string) bool {
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken,
			html.CommentToken, html.DoctypeToken:
			return true
		}
	}
}
