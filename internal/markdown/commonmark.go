package markdown

import (
	"fmt"
	"net/url"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/starford/vaultclip/internal/normalize"
)

// CommonMark converts with html-to-markdown, which renders tables and
// nested structures more completely than the built-in rule table.
type CommonMark struct{}

// NewCommonMark creates a CommonMark engine.
func NewCommonMark() *CommonMark {
	return &CommonMark{}
}

// Convert converts fragment using html-to-markdown.
func (c *CommonMark) Convert(fragment string, base *url.URL) (string, error) {
	var (
		md  string
		err error
	)
	if base != nil {
		md, err = htmltomarkdown.ConvertString(normalize.Clean(fragment), converter.WithDomain(base.Scheme+"://"+base.Host))
	} else {
		md, err = htmltomarkdown.ConvertString(normalize.Clean(fragment))
	}
	if err != nil {
		return "", fmt.Errorf("markdown: converting HTML to markdown: %w", err)
	}
	return NormalizeWhitespace(md), nil
}

// ForName returns the engine configured by name.
func ForName(name string) (Engine, error) {
	switch name {
	case "", "builtin":
		return New(), nil
	case "commonmark":
		return NewCommonMark(), nil
	default:
		return nil, fmt.Errorf("markdown: unknown converter %q", name)
	}
}
