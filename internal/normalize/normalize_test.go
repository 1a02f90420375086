package normalize

import (
	"strings"
	"testing"
)

func TestClean_StripsDeadWeight(t *testing.T) {
	in := `<html><head><style>p{color:red}</style><script>var a = "<p>x</p>";</script></head>` +
		`<body><!-- tracking --><p>Keep me</p><noscript><img src="pixel.gif"></noscript>` +
		`<iframe src="ad.html"></iframe><svg><svg><path d="M0"/></svg><text>icon</text></svg><p>And me</p></body></html>`
	got := Clean(in)

	for _, gone := range []string{"color:red", "var a", "tracking", "pixel.gif", "ad.html", "icon", "<svg", "<!--"} {
		if strings.Contains(got, gone) {
			t.Errorf("Clean kept %q in %q", gone, got)
		}
	}
	for _, kept := range []string{"<p>Keep me</p>", "<p>And me</p>"} {
		if !strings.Contains(got, kept) {
			t.Errorf("Clean dropped %q: %q", kept, got)
		}
	}
}

func TestClean_DropsEventAttributes(t *testing.T) {
	got := Clean(`<p onclick="steal()" class="lead">Hi</p><img src="a.png" OnError="x()"/><a href="/one">one</a>`)
	for _, gone := range []string{"onclick", "steal", "OnError", "x()"} {
		if strings.Contains(got, gone) {
			t.Errorf("Clean kept %q in %q", gone, got)
		}
	}
	for _, kept := range []string{`<p class="lead">Hi</p>`, `src="a.png"`, `<a href="/one">one</a>`} {
		if !strings.Contains(got, kept) {
			t.Errorf("Clean dropped %q: %q", kept, got)
		}
	}
}

func TestClean_UnterminatedRunsToEnd(t *testing.T) {
	got := Clean(`<p>before</p><script>never closed <p>after</p>`)
	if got != "<p>before</p>" {
		t.Errorf("got %q", got)
	}
}

func TestClean_AdversarialInputIsBounded(t *testing.T) {
	in := strings.Repeat("<svg><div>", 20000) + strings.Repeat("<", 20000)
	got := Clean(in)
	if got != "" {
		t.Errorf("expected empty output, got %d bytes", len(got))
	}
}

func TestClean_DecodesTypographicEntities(t *testing.T) {
	got := Clean(`<p title="a&rsquo;b">It&rsquo;s &ldquo;fine&rdquo;&hellip; &amp; done</p>`)
	want := `<p title="a&rsquo;b">It's "fine"... &amp; done</p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParse_Text(t *testing.T) {
	doc, err := Parse(`<p>a&nbsp;b &lt;c&gt;</p><script>x()</script>`)
	if err != nil {
		t.Fatal(err)
	}
	if got := Text(doc); got != "a b <c>" {
		t.Errorf("Text = %q", got)
	}
}

func TestDecodeEntities(t *testing.T) {
	if got := DecodeEntities("Tom &amp; Jerry&rsquo;s &eacute;t&eacute;"); got != "Tom & Jerry's été" {
		t.Errorf("got %q", got)
	}
	if got := DecodeEntities("plain"); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func TestHasMarkup(t *testing.T) {
	if HasMarkup(`{"json": true}`) {
		t.Error("json reported as markup")
	}
	if !HasMarkup(`text <b>bold</b>`) {
		t.Error("markup not detected")
	}
}
