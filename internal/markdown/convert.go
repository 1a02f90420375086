// Package markdown converts selected HTML fragments into Markdown.
package markdown

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/vaultclip/internal/normalize"
)

// Engine converts an HTML fragment into Markdown. base resolves relative
// links and may be nil.
type Engine interface {
	Convert(fragment string, base *url.URL) (string, error)
}

// Converter is the built-in rule-table converter.
type Converter struct{}

// New creates a Converter.
func New() *Converter {
	return &Converter{}
}

// Convert parses fragment in a body context and renders it as Markdown.
func (c *Converter) Convert(fragment string, base *url.URL) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(normalize.Clean(fragment)), ctx)
	if err != nil {
		return "", fmt.Errorf("markdown: parse fragment: %w", err)
	}

	w := &walker{base: base}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(w.node(n))
	}
	return NormalizeWhitespace(b.String()), nil
}

// ConvertNode renders an already parsed tree.
func (c *Converter) ConvertNode(n *html.Node, base *url.URL) string {
	w := &walker{base: base}
	return NormalizeWhitespace(w.children(n))
}

type walker struct {
	base  *url.URL
	inPre bool
}

func (w *walker) node(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		if w.inPre {
			return n.Data
		}
		return collapseSpace(n.Data)
	case html.ElementNode:
		if r, ok := rules[n.DataAtom]; ok {
			return r(w, n)
		}
		return w.children(n)
	case html.DocumentNode:
		return w.children(n)
	default:
		return ""
	}
}

func (w *walker) children(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(w.node(c))
	}
	return b.String()
}

func (w *walker) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if w.base == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return w.base.ResolveReference(u).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapseSpace folds runs of HTML whitespace, including no-break spaces,
// into one space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\u00a0':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
