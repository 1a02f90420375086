package render

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

// DefaultDateFormat is used by the date filter when no format is given.
const DefaultDateFormat = "YYYY-MM-DD"

type filterFunc func(v Value, arg string) Value

var filters map[string]filterFunc

func init() {
	filters = map[string]filterFunc{
		"upper":      textFilter(func(s, _ string) string { return strings.ToUpper(s) }),
		"lower":      textFilter(func(s, _ string) string { return strings.ToLower(s) }),
		"capitalize": textFilter(capitalize),
		"title":      textFilter(titleCase),
		"trim":       textFilter(func(s, _ string) string { return strings.TrimSpace(s) }),
		"slice":      textFilter(slice),
		"replace":    textFilter(replace),
		"date":       textFilter(formatDate),
		"wikilink":   eachItem(func(s string) string { return "[[" + s + "]]" }),
		"link":       eachItem(func(s string) string { return "[" + s + "]" }),
		"blockquote": textFilter(func(s, _ string) string { return quoteLines(s) }),
		"callout":    textFilter(callout),
		"safe_name":  textFilter(func(s, _ string) string { return unsafeNameChars.Replace(s) }),
		"kebab":      textFilter(func(s, _ string) string { return caseJoin(s, "-") }),
		"snake":      textFilter(func(s, _ string) string { return caseJoin(s, "_") }),
		"camel":      textFilter(camel),
		"length":     func(v Value, _ string) Value { return Int(v.Len()) },
	}
}

// Known reports whether name is a catalog filter.
func Known(name string) bool {
	_, ok := filters[name]
	return ok
}

// apply runs one filter. Unknown filters pass the value through.
func apply(v Value, name, arg string) Value {
	f, ok := filters[name]
	if !ok {
		return v
	}
	return f(v, arg)
}

func textFilter(fn func(s, arg string) string) filterFunc {
	return func(v Value, arg string) Value {
		return Text(fn(v.String(), arg))
	}
}

// eachItem applies fn to every element of a list and joins the results
// with ", " so a multitext property splits them again.
func eachItem(fn func(string) string) filterFunc {
	return func(v Value, _ string) Value {
		if v.Kind() != KindList {
			return Text(fn(v.String()))
		}
		parts := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			parts = append(parts, fn(item.String()))
		}
		return Text(strings.Join(parts, ", "))
	}
}

func capitalize(s, _ string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// titleCase upper-cases the first character of every word.
func titleCase(s, _ string) string {
	var b strings.Builder
	prev := ' '
	for _, r := range s {
		if isWord(r) && !isWord(prev) {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

var sliceArg = regexp.MustCompile(`^\s*(-?\d*)\s*(?:,\s*(-?\d*)\s*)?$`)

// slice takes "start,end" with end optional; negative indexes count from
// the end.
func slice(s, arg string) string {
	m := sliceArg.FindStringSubmatch(arg)
	if m == nil {
		return s
	}
	runes := []rune(s)
	n := len(runes)
	bound := func(raw string, def int) int {
		if raw == "" {
			return def
		}
		i, err := strconv.Atoi(raw)
		if err != nil {
			return def
		}
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	start := bound(m[1], 0)
	end := bound(m[2], n)
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// replace takes "search:replacement" and replaces every literal occurrence.
func replace(s, arg string) string {
	search, replacement, ok := strings.Cut(arg, ":")
	if !ok {
		return s
	}
	search = trimQuotes(search)
	if search == "" {
		return s
	}
	return strings.ReplaceAll(s, search, trimQuotes(replacement))
}

var dateTokens = regexp.MustCompile(`YYYY|MM|DD|HH|mm|ss`)

// formatDate parses s in any common layout and formats it with the tokens
// YYYY MM DD HH mm ss. Unparsable input passes through.
func formatDate(s, format string) string {
	t, err := dateparse.ParseAny(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	if format == "" {
		format = DefaultDateFormat
	}
	return FormatDate(t, format)
}

// FormatDate formats t with the tokens YYYY MM DD HH mm ss.
func FormatDate(t time.Time, format string) string {
	return dateTokens.ReplaceAllStringFunc(format, func(tok string) string {
		switch tok {
		case "YYYY":
			return t.Format("2006")
		case "MM":
			return t.Format("01")
		case "DD":
			return t.Format("02")
		case "HH":
			return t.Format("15")
		case "mm":
			return t.Format("04")
		default:
			return t.Format("05")
		}
	})
}

func quoteLines(s string) string {
	return "> " + strings.ReplaceAll(s, "\n", "\n> ")
}

func callout(s, kind string) string {
	if kind == "" {
		kind = "info"
	}
	return "> [!" + kind + "]\n" + quoteLines(s)
}

var unsafeNameChars = strings.NewReplacer(`\`, "", "/", "", ":", "", "*", "", "?", "", `"`, "", "<", "", ">", "", "|", "")

// caseJoin lower-cases s, joins whitespace runs with sep and drops anything
// that is not a-z, 0-9 or sep.
func caseJoin(s, sep string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), sep)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || string(r) == sep {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// camel lower-cases a leading character, upper-cases every other word
// start and removes whitespace.
func camel(s, _ string) string {
	var b strings.Builder
	prev := ' '
	for i, r := range s {
		switch {
		case unicode.IsSpace(r):
		case i == 0 && isWord(r):
			b.WriteRune(unicode.ToLower(r))
		case isWord(r) && !isWord(prev):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return strings.Trim(s, `"'`)
}

func trimQuotes(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if n := len(s); n > 0 && (s[n-1] == '"' || s[n-1] == '\'') {
		s = s[:n-1]
	}
	return s
}
