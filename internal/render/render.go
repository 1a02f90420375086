// Package render evaluates clip templates against a variable bag.
//
// A render is one fixed sequence of textual rewrites over the template:
// resolved prompts, plain {{name}} interpolation, {{name|filter}}
// pipelines, {% if %} blocks, {% for %} blocks, then blanking of any
// placeholder left unresolved. Every step rewrites template text only:
// substituted values are held as opaque slots and spliced in at the end, so
// braces inside page content are never evaluated or blanked. Steps still run
// in order, so a filter expression cannot be evaluated inside a loop body,
// and an if inside a for tests the top-level bag, not the loop item.
package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Options tune one render.
type Options struct {
	// Responses maps prompt text to the resolved response.
	Responses map[string]string
}

var (
	plainRe    = regexp.MustCompile(`\{\{\s*([A-Za-z_]\w*)\s*\}\}`)
	filterRe   = regexp.MustCompile(`\{\{([^|{}]+)\|([^{}]+)\}\}`)
	ifBlockRe  = regexp.MustCompile(`\{%\s*if\s+(\w+)\s*%\}([\s\S]*?)\{%\s*endif\s*%\}`)
	forBlockRe = regexp.MustCompile(`\{%\s*for\s+(\w+)\s+in\s+(\w+)\s*%\}([\s\S]*?)\{%\s*endfor\s*%\}`)
	leftoverRe = regexp.MustCompile(`\{\{\s*[A-Za-z_]\w*(?:\.[\w:-]+)*\s*\}\}`)
	slotRe     = regexp.MustCompile("\uE000([0-9]+)\uE001")
)

// slots holds rendered values until the template text is final.
type slots []string

func (s *slots) put(v string) string {
	*s = append(*s, v)
	return "\uE000" + strconv.Itoa(len(*s)-1) + "\uE001"
}

func (s slots) expand(out string) string {
	return slotRe.ReplaceAllStringFunc(out, func(m string) string {
		i, err := strconv.Atoi(slotRe.FindStringSubmatch(m)[1])
		if err != nil || i >= len(s) {
			return m
		}
		return s[i]
	})
}

// String renders a template string. It fails only with a *SyntaxError, which
// wraps apperr.ErrRender.
func String(tpl string, vars Vars, opts Options) (string, error) {
	if err := Validate(tpl); err != nil {
		return "", err
	}

	var vals slots
	out := tpl
	if len(opts.Responses) > 0 {
		out = substitutePrompts(out, opts.Responses, &vals)
	}

	out = plainRe.ReplaceAllStringFunc(out, func(m string) string {
		name := plainRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return vals.put(v.String())
		}
		return m
	})

	out = filterRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := filterRe.FindStringSubmatch(m)
		name := strings.TrimSpace(sub[1])
		if strings.HasPrefix(name, `"`) {
			return m
		}
		v, ok := vars[name]
		if !ok {
			return ""
		}
		calls, _ := parseChain(sub[2], false)
		for _, c := range calls {
			v = apply(v, c.name, c.arg)
		}
		return vals.put(v.String())
	})

	out = ifBlockRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := ifBlockRe.FindStringSubmatch(m)
		if vars.Lookup(sub[1]).Truthy() {
			return sub[2]
		}
		return ""
	})

	out = forBlockRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := forBlockRe.FindStringSubmatch(m)
		return loop(sub[1], vars.Lookup(sub[2]), sub[3], &vals)
	})

	return vals.expand(leftoverRe.ReplaceAllString(out, "")), nil
}

// loop renders body once per element of list. Inside body {{item}} is a
// text element and {{item.field}} a field of a map element.
func loop(item string, list Value, body string, vals *slots) string {
	if list.Kind() != KindList {
		return ""
	}
	ref := regexp.MustCompile(`\{\{\s*` + item + `(?:\.([\w-]+))?\s*\}\}`)

	var b strings.Builder
	for _, el := range list.Items() {
		b.WriteString(ref.ReplaceAllStringFunc(body, func(m string) string {
			field := ref.FindStringSubmatch(m)[1]
			switch {
			case field == "" && el.Kind() == KindText:
				return vals.put(el.String())
			case field != "" && el.Kind() == KindMap:
				if v, ok := el.Get(field); ok {
					return vals.put(v.String())
				}
			}
			return m
		}))
	}
	return b.String()
}
