// Package parser splits Markdown notes into their YAML frontmatter block and body.
package parser

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Result holds the output of parsing a Markdown note.
type Result struct {
	// Frontmatter is the decoded YAML block, nil when the note has none.
	Frontmatter map[string]interface{}
	// Header is the raw frontmatter block including both delimiter lines
	// and the newline that ends the closing one.
	Header string
	Body   string
}

// HasFrontmatter reports whether a valid frontmatter block was found.
func (r *Result) HasFrontmatter() bool {
	return r.Header != ""
}

// Parse separates YAML frontmatter (between leading --- delimiters) from the
// Markdown body. A missing closing delimiter or invalid YAML makes the whole
// input body.
func Parse(data []byte) *Result {
	whole := &Result{Body: string(data)}

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim+"\n")) && !bytes.HasPrefix(trimmed, []byte(delim+"\r\n")) {
		return whole
	}
	lead := len(data) - len(trimmed)

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return whole
	}
	yamlBlock := rest[:idx]

	end := len(delim) + idx + 1 + len(delim)
	if nl := bytes.IndexByte(trimmed[end:], '\n'); nl >= 0 && len(bytes.TrimSpace(trimmed[end:end+nl])) == 0 {
		end += nl + 1
	} else if len(bytes.TrimSpace(trimmed[end:])) != 0 {
		// "---" followed by more text on the same line is not a delimiter.
		return whole
	} else {
		end = len(trimmed)
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return whole
	}
	if fm == nil {
		fm = map[string]interface{}{}
	}

	return &Result{
		Frontmatter: fm,
		Header:      string(data[:lead+end]),
		Body:        string(trimmed[end:]),
	}
}
