package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/vaultclip/internal/apperr"
)

func TestFetch_FollowsRedirectAndSetsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>hello</p>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := New(WithUserAgent("test-agent")).Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.URL != srv.URL+"/new" {
		t.Errorf("URL = %q, want final location", page.URL)
	}
	if page.HTML != "<p>hello</p>" {
		t.Errorf("HTML = %q", page.HTML)
	}
	if gotUA != "test-agent" || !strings.Contains(gotAccept, "text/html") {
		t.Errorf("headers: ua=%q accept=%q", gotUA, gotAccept)
	}
}

func TestFetch_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer srv.Close()

	page, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.HTML != "<p>café</p>" {
		t.Errorf("HTML = %q", page.HTML)
	}
}

func TestFetch_BodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer srv.Close()

	page, err := New(WithMaxBytes(10)).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(page.HTML) != 10 {
		t.Errorf("len = %d, want 10", len(page.HTML))
	}
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	cases := []string{srv.URL, "ftp://example.com/file", "not a url", "http://"}
	for _, u := range cases {
		if _, err := New().Fetch(context.Background(), u); !errors.Is(err, apperr.ErrFetch) {
			t.Errorf("Fetch(%q) err = %v, want ErrFetch", u, err)
		}
	}
}
