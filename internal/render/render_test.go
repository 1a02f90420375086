package render

import (
	"errors"
	"testing"

	"github.com/starford/vaultclip/internal/apperr"
)

func mustRender(t *testing.T, tpl string, vars Vars) string {
	t.Helper()
	out, err := String(tpl, vars, Options{})
	if err != nil {
		t.Fatalf("String(%q): %v", tpl, err)
	}
	return out
}

func TestString_Interpolation(t *testing.T) {
	vars := Vars{"title": Text("Hello")}
	if got := mustRender(t, "{{title}}", vars); got != "Hello" {
		t.Errorf("got %q", got)
	}
	if got := mustRender(t, "{{ title }}!", vars); got != "Hello!" {
		t.Errorf("got %q", got)
	}
	if got := mustRender(t, "[{{missing}}]", vars); got != "[]" {
		t.Errorf("unknown variable should render empty, got %q", got)
	}
}

func TestString_NonScalarIsJSON(t *testing.T) {
	vars := Vars{
		"tags": Strings([]string{"a", "<b>"}),
		"meta": Map(Field{"og:title", Text("T")}, Field{"author", Text("A")}),
	}
	if got := mustRender(t, "{{tags}}", vars); got != `["a","<b>"]` {
		t.Errorf("list = %q", got)
	}
	if got := mustRender(t, "{{meta}}", vars); got != `{"og:title":"T","author":"A"}` {
		t.Errorf("map = %q", got)
	}
}

func TestString_Filters(t *testing.T) {
	tests := []struct {
		tpl, value, want string
	}{
		{"{{v|upper}}", "hello", "HELLO"},
		{"{{v|lower}}", "HeLLo", "hello"},
		{"{{v|capitalize}}", "hello world", "Hello world"},
		{"{{v|title}}", "hello wORLD-foo", "Hello WORLD-Foo"},
		{"{{v|trim}}", "  x  ", "x"},
		{`{{v|slice:"0,5"}}`, "Hello World", "Hello"},
		{`{{v|slice:"-5"}}`, "Hello World", "World"},
		{`{{v|slice:"6"}}`, "Hello World", "World"},
		{`{{v|slice:"4,2"}}`, "Hello", ""},
		{`{{v|replace:"World:There"}}`, "Hello World World", "Hello There There"},
		{`{{v|replace:" :-"}}`, "a b c", "a-b-c"},
		{"{{v|date}}", "2024-03-15T10:30:45-05:00", "2024-03-15"},
		{`{{v|date:"DD/MM/YYYY HH:mm:ss"}}`, "2024-03-15T10:30:45-05:00", "15/03/2024 10:30:45"},
		{"{{v|date}}", "not a date", "not a date"},
		{"{{v|wikilink}}", "Note", "[[Note]]"},
		{"{{v|link}}", "Note", "[Note]"},
		{"{{v|blockquote}}", "a\nb", "> a\n> b"},
		{`{{v|callout:"warning"}}`, "a\nb", "> [!warning]\n> a\n> b"},
		{"{{v|callout}}", "x", "> [!info]\n> x"},
		{"{{v|safe_name}}", `a/b:c?d"e`, "abcde"},
		{"{{v|kebab}}", "Hello World Again!", "hello-world-again"},
		{"{{v|snake}}", "Hello World Again!", "hello_world_again"},
		{"{{v|camel}}", "hello world again", "helloWorldAgain"},
		{"{{v|camel}}", "Hello World", "helloWorld"},
		{"{{v|length}}", "héllo", "5"},
		{`{{v|trim|upper|slice:"0,3"}}`, "  abcdef ", "ABC"},
		{"{{ v | upper }}", "spaced", "SPACED"},
		{"{{v|nope}}", "same", "same"},
	}
	for _, tt := range tests {
		got := mustRender(t, tt.tpl, Vars{"v": Text(tt.value)})
		if got != tt.want {
			t.Errorf("%s on %q: got %q, want %q", tt.tpl, tt.value, got, tt.want)
		}
	}
}

func TestString_ListFilters(t *testing.T) {
	vars := Vars{"tags": Strings([]string{"go", "web"})}
	if got := mustRender(t, "{{tags|wikilink}}", vars); got != "[[go]], [[web]]" {
		t.Errorf("wikilink = %q", got)
	}
	if got := mustRender(t, "{{tags|length}}", vars); got != "2" {
		t.Errorf("length = %q", got)
	}
}

func TestString_FilterOnUnknownVariable(t *testing.T) {
	if got := mustRender(t, "[{{nope|upper}}]", Vars{}); got != "[]" {
		t.Errorf("got %q", got)
	}
}

func TestString_If(t *testing.T) {
	tpl := "{% if author %}By {{author}}{% endif %}"
	if got := mustRender(t, tpl, Vars{"author": Text("")}); got != "" {
		t.Errorf("empty author: %q", got)
	}
	if got := mustRender(t, tpl, Vars{"author": Text("Jane")}); got != "By Jane" {
		t.Errorf("got %q", got)
	}
	for _, falsy := range []string{"0", "false"} {
		if got := mustRender(t, tpl, Vars{"author": Text(falsy)}); got != "" {
			t.Errorf("%q should be falsy, got %q", falsy, got)
		}
	}
	if got := mustRender(t, "{% if tags %}x{% endif %}", Vars{"tags": List()}); got != "" {
		t.Errorf("empty list should be falsy, got %q", got)
	}
}

func TestString_For(t *testing.T) {
	vars := Vars{
		"tags": Strings([]string{"a", "b"}),
		"highlights": List(
			Map(Field{"content", Text("first")}, Field{"id", Text("1")}),
			Map(Field{"content", Text("second")}, Field{"id", Text("2")}),
		),
		"title": Text("T"),
	}
	if got := mustRender(t, "{% for t in tags %}#{{t}} {% endfor %}", vars); got != "#a #b " {
		t.Errorf("scalar loop = %q", got)
	}
	got := mustRender(t, "{% for h in highlights %}- {{h.content}} ({{h.id}}){{h.missing}}\n{% endfor %}", vars)
	if got != "- first (1)\n- second (2)\n" {
		t.Errorf("map loop = %q", got)
	}
	if got := mustRender(t, "{% for t in title %}x{% endfor %}", vars); got != "" {
		t.Errorf("non-list loop = %q", got)
	}
}

func TestString_ForInsideIf(t *testing.T) {
	vars := Vars{"tags": Strings([]string{"a", "b"})}
	got := mustRender(t, "{% if tags %}Tags:{% for t in tags %} {{t}}{% endfor %}{% endif %}", vars)
	if got != "Tags: a b" {
		t.Errorf("got %q", got)
	}
}

// Filters are evaluated before loops, so a filter on the loop variable sees
// an unknown name.
func TestString_FilterInsideLoopNotEvaluated(t *testing.T) {
	vars := Vars{"tags": Strings([]string{"a", "b"})}
	if got := mustRender(t, "{% for t in tags %}[{{t|upper}}]{% endfor %}", vars); got != "[][]" {
		t.Errorf("got %q", got)
	}
}

func TestString_SyntaxErrors(t *testing.T) {
	bad := []string{
		"{% if a %}{% if b %}x{% endif %}{% endif %}",
		"{% for a in b %}{% for c in d %}{% endfor %}{% endfor %}",
		"{% if a %}unclosed",
		"{% endif %}",
		"{% if a %}{% for x in y %}{% endif %}{% endfor %}",
		"{% else %}",
		"{% if a.b %}x{% endif %}",
		"{% if a %",
		"{{title|}}",
		"{{title||upper}}",
		`{{title|replace:"a}}`,
		`{{title|slice:"x,y"}}`,
		"{{a b|upper}}",
	}
	for _, tpl := range bad {
		_, err := String(tpl, Vars{"a": Text("1")}, Options{})
		if !errors.Is(err, apperr.ErrRender) {
			t.Errorf("String(%q): expected ErrRender, got %v", tpl, err)
		}
		var syn *SyntaxError
		if !errors.As(err, &syn) {
			t.Errorf("String(%q): expected *SyntaxError", tpl)
		}
	}
}

func TestString_SubstitutedContentIsNotValidated(t *testing.T) {
	vars := Vars{"content": Text("Jinja uses {% raw %} and {{x|")}
	got := mustRender(t, "{{content}}", vars)
	if got != "Jinja uses {% raw %} and {{x|" {
		t.Errorf("got %q", got)
	}
}

func TestString_PageBracesSurvive(t *testing.T) {
	page := "In Vue you write {{ message }} to bind, or {{user.name}}. Jinja: {{ name|upper }} {% if x %}y{% endif %}"
	vars := Vars{
		"content": Text(page),
		"title":   Text("{{title}}"),
		"tags":    Strings([]string{"{{a}}", "b"}),
	}
	if got := mustRender(t, "{{content}}{{missing}}", vars); got != page {
		t.Errorf("plain: got %q", got)
	}
	if got := mustRender(t, "{{content|trim}}", vars); got != page {
		t.Errorf("filtered: got %q", got)
	}
	if got := mustRender(t, "{% if content %}{{content}}{% endif %}", vars); got != page {
		t.Errorf("inside if: got %q", got)
	}
	if got := mustRender(t, "{{title}}", vars); got != "{{title}}" {
		t.Errorf("value is not re-expanded: got %q", got)
	}
	if got := mustRender(t, "{% for t in tags %}[{{t}}]{% endfor %}", vars); got != "[{{a}}][b]" {
		t.Errorf("loop items: got %q", got)
	}
}

func TestString_PromptResponseBracesSurvive(t *testing.T) {
	out, err := String(`{{"summarize"}}`, Vars{}, Options{Responses: map[string]string{"summarize": "uses {{ message }}"}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "uses {{ message }}" {
		t.Errorf("got %q", out)
	}
}
