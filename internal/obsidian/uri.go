// Package obsidian builds obsidian:// URIs that hand a rendered clip to the
// Obsidian app instead of writing the vault directly.
package obsidian

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/starford/vaultclip/internal/models"
)

// MaxInlineContent is the longest content, in characters, carried in the URI.
// Longer notes go through the clipboard.
const MaxInlineContent = 2000

// Options tune the generated URI.
type Options struct {
	// Vault overrides the request's vault.
	Vault  string
	Silent bool
}

// Link is an Obsidian URI plus the text the caller must put on the
// clipboard before opening it, if any.
type Link struct {
	URI       string `json:"uri"`
	Clipboard string `json:"clipboard,omitempty"`
}

type param struct{ key, value string }

// URI builds the obsidian://new or obsidian://daily link for req.
func URI(req models.ClipRequest, opts Options) Link {
	action := "new"
	if req.Behavior.IsDaily() {
		action = "daily"
	}

	var params []param
	vault := req.Vault
	if opts.Vault != "" {
		vault = opts.Vault
	}
	if vault != "" {
		params = append(params, param{"vault", vault})
	}
	if !req.Behavior.IsDaily() {
		params = append(params, param{"file", filePath(req)})
	}

	var link Link
	if utf8.RuneCountInString(req.Content) > MaxInlineContent {
		link.Clipboard = req.Content
		params = append(params, param{"clipboard", "true"})
	} else {
		params = append(params, param{"content", req.Content})
	}

	switch {
	case req.Behavior.IsAppend():
		params = append(params, param{"append", "true"})
	case req.Behavior.IsPrepend():
		params = append(params, param{"prepend", "true"})
	case req.Behavior == models.BehaviorOverwrite:
		params = append(params, param{"overwrite", "true"})
	}
	if opts.Silent {
		params = append(params, param{"silent", "true"})
	}

	var b strings.Builder
	b.WriteString("obsidian://")
	b.WriteString(action)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escape(p.value))
	}
	link.URI = b.String()
	return link
}

func filePath(req models.ClipRequest) string {
	dir := strings.Trim(req.Path, "/")
	if dir == "" {
		return req.NoteName
	}
	return dir + "/" + req.NoteName
}

// escape percent-encodes s. Obsidian decodes parameters with
// decodeURIComponent, which leaves '+' alone, so spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
