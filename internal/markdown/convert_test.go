package markdown

import (
	"net/url"
	"testing"
)

func convert(t *testing.T, in string, base *url.URL) string {
	t.Helper()
	out, err := New().Convert(in, base)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return out
}

func TestConvert_Rules(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			name: "heading and inline marks",
			in:   `<h1>Title</h1><p>Some <strong>bold</strong> and <em>it</em> and <mark>hl</mark>.</p>`,
			want: "# Title\n\nSome **bold** and *it* and ==hl==.",
		},
		{
			name: "deep heading",
			in:   `<h3>Sub  section</h3>`,
			want: "### Sub section",
		},
		{
			name: "marks keep outer spacing",
			in:   `<p>a<b> bold </b>c</p>`,
			want: "a **bold** c",
		},
		{
			name: "image attribute order",
			in:   `<p><img alt="A" src="a.png"> <img src="b.png" alt="B"> <img src="c.png"></p>`,
			want: "![A](a.png) ![B](b.png) ![](c.png)",
		},
		{
			name: "nested list",
			in:   "<ul>\n  <li>One</li>\n  <li>Two <ul><li>Sub</li></ul></li>\n</ul>",
			want: "- One\n- Two\n  - Sub",
		},
		{
			name: "blockquote",
			in:   `<blockquote><p>Line one</p><p>Line two</p></blockquote>`,
			want: "> Line one\n>\n> Line two",
		},
		{
			name: "code",
			in:   "<p>Use <code>go test</code></p><pre><code class=\"language-go\">func main() {\n}\n</code></pre>",
			want: "Use `go test`\n\n```go\nfunc main() {\n}\n```",
		},
		{
			name: "br and hr",
			in:   `<p>a<br>b</p><hr><p>c</p>`,
			want: "a\nb\n\n---\n\nc",
		},
		{
			name: "entities",
			in:   `<p>Tom &amp; Jerry&rsquo;s &ldquo;show&rdquo;&hellip;&nbsp;end &lt;tag&gt;</p>`,
			want: `Tom & Jerry's "show"... end <tag>`,
		},
		{
			name: "unknown tags stripped",
			in:   `<div><span class="x">kept <custom-tag>text</custom-tag></span></div>`,
			want: "kept text",
		},
		{
			name: "empty and script links",
			in:   `<p><a href="/x"></a>go <a href="javascript:void(0)">here</a></p>`,
			want: "go here",
		},
		{
			name: "table cells",
			in:   `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`,
			want: "A B\n\n1 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convert(t, tt.in, nil); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestConvert_ResolvesRelativeLinks(t *testing.T) {
	base, _ := url.Parse("https://example.com/blog/post")
	got := convert(t, `<p><a href="/about">About</a> <img src="img/a.png" alt="a"></p>`, base)
	want := "[About](https://example.com/about) ![a](https://example.com/blog/img/a.png)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeWhitespace_Idempotent(t *testing.T) {
	inputs := []string{
		"  a  \n\n\n\nb \t\n c\n\n\n",
		"\n\n# x\n \n \n\n\ny",
		"plain",
		"",
	}
	for _, in := range inputs {
		once := NormalizeWhitespace(in)
		if twice := NormalizeWhitespace(once); twice != once {
			t.Errorf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
	if got := NormalizeWhitespace("a  \n\n\n\nb"); got != "a\n\nb" {
		t.Errorf("got %q", got)
	}
}

func TestConvert_OutputIsNormalized(t *testing.T) {
	out := convert(t, `<div><p>one</p>   <div><p>two</p></div></div><p>three</p>`, nil)
	if again := NormalizeWhitespace(out); again != out {
		t.Errorf("converted output changed on renormalization: %q", out)
	}
}

func TestForName(t *testing.T) {
	if _, err := ForName("builtin"); err != nil {
		t.Error(err)
	}
	if _, err := ForName("commonmark"); err != nil {
		t.Error(err)
	}
	if _, err := ForName("pandoc"); err == nil {
		t.Error("expected error for unknown converter")
	}
}
