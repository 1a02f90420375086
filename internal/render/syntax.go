package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/vaultclip/internal/apperr"
)

var (
	tagRe   = regexp.MustCompile(`\{%([\s\S]*?)%\}`)
	exprRe  = regexp.MustCompile(`\{\{([^{}]*)\}\}`)
	ifTag   = regexp.MustCompile(`^if\s+(\w+)$`)
	forTag  = regexp.MustCompile(`^for\s+(\w+)\s+in\s+(\w+)$`)
	varName = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)
	fnName  = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)
)

// SyntaxError describes template source the renderer cannot evaluate.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return "template syntax: " + e.Msg }

// Unwrap makes every syntax error match apperr.ErrRender.
func (e *SyntaxError) Unwrap() error { return apperr.ErrRender }

func syntaxErr(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// Validate checks the control blocks and filter expressions of a template
// source. Blocks may not nest inside a block of the same kind, since the
// single-pass rewrite would pair them wrongly.
func Validate(tpl string) error {
	var stack []string
	for _, m := range tagRe.FindAllStringSubmatch(tpl, -1) {
		tag := strings.TrimSpace(m[1])
		switch {
		case ifTag.MatchString(tag):
			if err := push(&stack, "if"); err != nil {
				return err
			}
		case forTag.MatchString(tag):
			if err := push(&stack, "for"); err != nil {
				return err
			}
		case tag == "endif":
			if err := pop(&stack, "if"); err != nil {
				return err
			}
		case tag == "endfor":
			if err := pop(&stack, "for"); err != nil {
				return err
			}
		default:
			return syntaxErr("unsupported block tag {%% %s %%}", tag)
		}
	}
	if len(stack) > 0 {
		return syntaxErr("unclosed {%% %s %%} block", stack[len(stack)-1])
	}
	if strings.Contains(tagRe.ReplaceAllString(tpl, ""), "{%") {
		return syntaxErr("unterminated {%% tag")
	}

	for _, m := range exprRe.FindAllStringSubmatch(tpl, -1) {
		if err := validateExpr(m[1]); err != nil {
			return err
		}
	}
	return nil
}

func push(stack *[]string, kind string) error {
	for _, k := range *stack {
		if k == kind {
			return syntaxErr("nested {%% %s %%} blocks are not supported", kind)
		}
	}
	*stack = append(*stack, kind)
	return nil
}

func pop(stack *[]string, kind string) error {
	s := *stack
	if len(s) == 0 {
		return syntaxErr("{%% end%s %%} without {%% %s %%}", kind, kind)
	}
	if top := s[len(s)-1]; top != kind {
		return syntaxErr("{%% end%s %%} closes an open {%% %s %%} block", kind, top)
	}
	*stack = s[:len(s)-1]
	return nil
}

func validateExpr(inner string) error {
	trimmed := strings.TrimSpace(inner)
	if strings.HasPrefix(trimmed, `"`) {
		end := closingQuote(trimmed)
		if end < 0 {
			return syntaxErr("unterminated prompt in {{%s}}", inner)
		}
		rest := strings.TrimSpace(trimmed[end+1:])
		if rest == "" {
			return nil
		}
		if !strings.HasPrefix(rest, "|") {
			return syntaxErr("unexpected text after prompt in {{%s}}", inner)
		}
		_, err := parseChain(rest[1:], true)
		return err
	}

	name, chain, ok := strings.Cut(inner, "|")
	if !ok {
		return nil
	}
	if !varName.MatchString(strings.TrimSpace(name)) {
		return syntaxErr("invalid variable name in {{%s}}", inner)
	}
	_, err := parseChain(chain, true)
	return err
}

// closingQuote returns the index of the quote closing the one at s[0], or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case s[0]:
			return i
		}
	}
	return -1
}

type filterCall struct {
	name string
	arg  string
}

// parseChain splits "f1|f2:arg|f3:\"a|b\"" into calls. A quote opens only at
// the start of an argument, so apostrophes inside plain arguments are text.
// In strict mode malformed chains are errors; otherwise they are read as far
// as possible.
func parseChain(chain string, strict bool) ([]filterCall, error) {
	var (
		segments []string
		cur      strings.Builder
		quote    byte
		argStart bool
	)
	for i := 0; i < len(chain); i++ {
		c := chain[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(chain) {
				i++
				cur.WriteByte(chain[i])
			} else if c == quote {
				quote = 0
			}
			continue
		case c == '|':
			segments = append(segments, cur.String())
			cur.Reset()
			argStart = false
			continue
		case (c == '"' || c == '\'') && argStart:
			quote = c
		}
		switch c {
		case ':', ',':
			argStart = true
		case ' ', '\t':
		default:
			if quote == 0 {
				argStart = false
			}
		}
		cur.WriteByte(c)
	}
	if quote != 0 && strict {
		return nil, syntaxErr("unterminated quoted filter argument in %q", chain)
	}
	segments = append(segments, cur.String())

	calls := make([]filterCall, 0, len(segments))
	for _, seg := range segments {
		name, arg, _ := strings.Cut(seg, ":")
		name = strings.TrimSpace(name)
		if strict {
			if name == "" {
				return nil, syntaxErr("empty filter name in %q", chain)
			}
			if !fnName.MatchString(name) {
				return nil, syntaxErr("invalid filter name %q", name)
			}
			if name == "slice" && !sliceArg.MatchString(unquote(arg)) {
				return nil, syntaxErr("slice expects \"start,end\", got %q", arg)
			}
		}
		calls = append(calls, filterCall{name: name, arg: unquote(arg)})
	}
	return calls, nil
}
