package markdown

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/vaultclip/internal/normalize"
)

type rule func(w *walker, n *html.Node) string

var rules map[atom.Atom]rule

func init() {
	rules = map[atom.Atom]rule{
		atom.H1: heading(1), atom.H2: heading(2), atom.H3: heading(3),
		atom.H4: heading(4), atom.H5: heading(5), atom.H6: heading(6),

		atom.Strong: wrap("**"), atom.B: wrap("**"),
		atom.Em: wrap("*"), atom.I: wrap("*"),
		atom.Mark: wrap("=="),

		atom.A:          anchor,
		atom.Img:        image,
		atom.Code:       inlineCode,
		atom.Pre:        codeBlock,
		atom.Blockquote: quote,
		atom.Ul:         list,
		atom.Ol:         list,
		atom.Li:         listItem,
		atom.Br:         func(*walker, *html.Node) string { return "\n" },
		atom.Hr:         func(*walker, *html.Node) string { return "\n\n---\n\n" },
		atom.Tr:         func(w *walker, n *html.Node) string { return "\n" + strings.TrimSpace(w.children(n)) + "\n" },
		atom.Td:         cell,
		atom.Th:         cell,
		atom.Head:       drop,
		atom.Template:   drop,
		atom.Button:     drop,
		atom.Select:     drop,
	}
	for _, a := range []atom.Atom{
		atom.P, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header,
		atom.Footer, atom.Aside, atom.Nav, atom.Figure, atom.Figcaption,
		atom.Address, atom.Dl, atom.Dt, atom.Dd, atom.Table, atom.Form,
		atom.Details, atom.Summary, atom.Fieldset,
	} {
		rules[a] = block
	}
}

func drop(*walker, *html.Node) string { return "" }

func block(w *walker, n *html.Node) string {
	inner := strings.TrimSpace(w.children(n))
	if inner == "" {
		return ""
	}
	return "\n\n" + inner + "\n\n"
}

func heading(level int) rule {
	marker := strings.Repeat("#", level)
	return func(w *walker, n *html.Node) string {
		text := strings.TrimSpace(collapseSpace(w.children(n)))
		if text == "" {
			return ""
		}
		return "\n\n" + marker + " " + text + "\n\n"
	}
}

// wrap surrounds the trimmed inner text with a marker, keeping the
// surrounding whitespace outside so "a<b> bold </b>c" stays readable.
func wrap(marker string) rule {
	return func(w *walker, n *html.Node) string {
		inner := w.children(n)
		core := strings.TrimSpace(inner)
		if core == "" {
			return inner
		}
		lead := inner[:strings.Index(inner, core)]
		trail := inner[len(lead)+len(core):]
		return lead + marker + core + marker + trail
	}
}

func anchor(w *walker, n *html.Node) string {
	text := strings.TrimSpace(w.children(n))
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return text
	}
	if text == "" {
		return ""
	}
	return "[" + text + "](" + w.resolve(href) + ")"
}

func image(w *walker, n *html.Node) string {
	src := attr(n, "src")
	if src == "" {
		src = attr(n, "data-src")
	}
	if strings.TrimSpace(src) == "" {
		return ""
	}
	return "![" + strings.TrimSpace(attr(n, "alt")) + "](" + w.resolve(src) + ")"
}

func inlineCode(w *walker, n *html.Node) string {
	text := normalize.Text(n)
	if w.inPre {
		return text
	}
	if text == "" {
		return ""
	}
	fence := "`"
	if strings.Contains(text, "`") {
		fence = "``"
	}
	return fence + text + fence
}

func codeBlock(w *walker, n *html.Node) string {
	lang := ""
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			lang = codeLanguage(attr(c, "class"))
			break
		}
	}
	if lang == "" {
		lang = codeLanguage(attr(n, "class"))
	}

	w.inPre = true
	text := w.children(n)
	w.inPre = false

	text = strings.Trim(text, "\n")
	return "\n\n```" + lang + "\n" + text + "\n```\n\n"
}

func codeLanguage(class string) string {
	for _, c := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(c, prefix) {
				return strings.TrimPrefix(c, prefix)
			}
		}
	}
	return ""
}

func quote(w *walker, n *html.Node) string {
	inner := NormalizeWhitespace(w.children(n))
	if inner == "" {
		return ""
	}
	lines := strings.Split(inner, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

// list drops the whitespace text between items so every item starts its
// own line.
func list(w *walker, n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		b.WriteString(w.node(c))
	}
	inner := strings.Trim(b.String(), "\n")
	if strings.TrimSpace(inner) == "" {
		return ""
	}
	return "\n\n" + inner + "\n\n"
}

func listItem(w *walker, n *html.Node) string {
	inner := NormalizeWhitespace(w.children(n))
	if inner == "" {
		return ""
	}
	lines := strings.Split(inner, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	for i := 1; i < len(out); i++ {
		out[i] = "  " + out[i]
	}
	return "- " + strings.Join(out, "\n") + "\n"
}

func cell(w *walker, n *html.Node) string {
	return strings.TrimSpace(collapseSpace(w.children(n))) + " "
}
