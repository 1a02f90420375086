package obsidian

import (
	"net/url"
	"strings"
	"testing"

	"github.com/starford/vaultclip/internal/models"
)

func TestURI(t *testing.T) {
	cases := []struct {
		name string
		req  models.ClipRequest
		opts Options
		want string
	}{
		{
			name: "create",
			req:  models.ClipRequest{NoteName: "My Page", Path: "Clippings/", Content: "a+b & c", Behavior: models.BehaviorCreate, Vault: "Main"},
			want: "obsidian://new?vault=Main&file=Clippings%2FMy%20Page&content=a%2Bb%20%26%20c",
		},
		{
			name: "append specific silent",
			req:  models.ClipRequest{NoteName: "Log", Content: "x", Behavior: models.BehaviorAppendSpecific},
			opts: Options{Silent: true},
			want: "obsidian://new?file=Log&content=x&append=true&silent=true",
		},
		{
			name: "prepend daily drops file",
			req:  models.ClipRequest{NoteName: "ignored", Content: "x", Behavior: models.BehaviorPrependDaily},
			opts: Options{Vault: "Override"},
			want: "obsidian://daily?vault=Override&content=x&prepend=true",
		},
		{
			name: "overwrite",
			req:  models.ClipRequest{NoteName: "N", Content: "", Behavior: models.BehaviorOverwrite},
			want: "obsidian://new?file=N&content=&overwrite=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := URI(tc.req, tc.opts)
			if got.URI != tc.want {
				t.Errorf("URI = %q\nwant  %q", got.URI, tc.want)
			}
			if got.Clipboard != "" {
				t.Errorf("unexpected clipboard content")
			}
		})
	}
}

func TestURI_LongContentUsesClipboard(t *testing.T) {
	content := strings.Repeat("é", MaxInlineContent+1)
	got := URI(models.ClipRequest{NoteName: "Long", Content: content, Behavior: models.BehaviorCreate}, Options{})
	if got.Clipboard != content {
		t.Fatal("clipboard should carry the content")
	}
	u, err := url.Parse(got.URI)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("clipboard") != "true" || q.Has("content") {
		t.Errorf("query = %v", q)
	}

	// Exactly at the limit stays inline.
	inline := URI(models.ClipRequest{NoteName: "Edge", Content: strings.Repeat("é", MaxInlineContent), Behavior: models.BehaviorCreate}, Options{})
	if inline.Clipboard != "" {
		t.Error("content at the limit should stay inline")
	}
}
