package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Prompt is one language-model directive found in a template, written as
// {{"instruction"}} with optional filters.
type Prompt struct {
	Key  string `json:"key"`
	Text string `json:"prompt"`
}

var promptRe = regexp.MustCompile(`\{\{\s*"((?:[^"\\]|\\.)*)"\s*((?:\|[^{}]*)?)\}\}`)

// HasPromptMarker reports whether s holds a prompt, in plain or
// JSON-escaped form.
func HasPromptMarker(s string) bool {
	return strings.Contains(s, `{{"`) || strings.Contains(s, `{{\"`)
}

// CollectPrompts lists the distinct prompts in the given template strings in
// first-seen order, keyed prompt_1, prompt_2, ...
func CollectPrompts(templates ...string) []Prompt {
	var out []Prompt
	seen := make(map[string]bool)
	for _, tpl := range templates {
		for _, m := range promptRe.FindAllStringSubmatch(tpl, -1) {
			text := promptText(m[1])
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, Prompt{Key: "prompt_" + strconv.Itoa(len(out)+1), Text: text})
		}
	}
	return out
}

// Resolved reports whether every prompt in s has a response.
func Resolved(s string, responses map[string]string) bool {
	if !HasPromptMarker(s) {
		return true
	}
	if strings.Contains(s, `{{\"`) {
		return false
	}
	for _, m := range promptRe.FindAllStringSubmatch(s, -1) {
		if _, ok := responses[promptText(m[1])]; !ok {
			return false
		}
	}
	return !strings.Contains(promptRe.ReplaceAllString(s, ""), `{{"`)
}

// substitutePrompts replaces resolved prompts with their filtered response.
// Unresolved prompts stay in place as markers.
func substitutePrompts(s string, responses map[string]string, vals *slots) string {
	return promptRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := promptRe.FindStringSubmatch(m)
		resp, ok := responses[promptText(sub[1])]
		if !ok {
			return m
		}
		v := Text(resp)
		if chain := strings.TrimSpace(sub[2]); chain != "" {
			calls, _ := parseChain(chain[1:], false)
			for _, c := range calls {
				v = apply(v, c.name, c.arg)
			}
		}
		return vals.put(v.String())
	})
}

func promptText(raw string) string {
	if s, err := strconv.Unquote(`"` + raw + `"`); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(raw)
}
