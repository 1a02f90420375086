package render

import (
	"strings"

	"github.com/starford/vaultclip/internal/models"
)

// Note is a fully rendered template.
type Note struct {
	Name        string
	Frontmatter string
	Body        string
	// Properties holds every written property as rendered text.
	Properties map[string]string
}

// Content joins frontmatter and body.
func (n Note) Content() string {
	return n.Frontmatter + n.Body
}

// Template renders the note name, the frontmatter built from the template
// properties and the body.
func Template(t models.Template, vars Vars, opts Options) (Note, error) {
	nameFormat := t.NoteNameFormat
	if nameFormat == "" {
		nameFormat = models.DefaultNoteNameFormat
	}
	name, err := String(nameFormat, vars, opts)
	if err != nil {
		return Note{}, err
	}

	fm, props, err := Frontmatter(t.Properties, vars, opts)
	if err != nil {
		return Note{}, err
	}

	body, err := String(t.NoteContentFormat, vars, opts)
	if err != nil {
		return Note{}, err
	}

	return Note{
		Name:        models.NoteName(name),
		Frontmatter: fm,
		Body:        body,
		Properties:  props,
	}, nil
}

// Frontmatter renders properties in declaration order into a YAML block
// delimited by --- lines and followed by a blank line. A property is skipped
// when it holds an unresolved prompt or renders to nothing but whitespace
// and empty brackets. The block is empty when no property is written.
func Frontmatter(props []models.TemplateProperty, vars Vars, opts Options) (string, map[string]string, error) {
	var b strings.Builder
	written := make(map[string]string)

	for _, p := range props {
		if !Resolved(p.Value, opts.Responses) {
			continue
		}
		value, err := String(p.Value, vars, opts)
		if err != nil {
			return "", nil, err
		}
		if blank(value) {
			continue
		}

		switch p.Type {
		case models.PropertyMultitext:
			items := splitItems(value)
			switch len(items) {
			case 0:
				continue
			case 1:
				b.WriteString(p.Name + ": " + EscapeYAML(items[0]) + "\n")
			default:
				b.WriteString(p.Name + ":\n")
				for _, item := range items {
					b.WriteString("  - " + EscapeYAML(item) + "\n")
				}
			}
			written[p.Name] = strings.Join(items, ", ")
		case models.PropertyCheckbox:
			checked := "false"
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				checked = "true"
			}
			b.WriteString(p.Name + ": " + checked + "\n")
			written[p.Name] = checked
		default:
			b.WriteString(p.Name + ": " + EscapeYAML(value) + "\n")
			written[p.Name] = value
		}
	}

	if b.Len() == 0 {
		return "", written, nil
	}
	return "---\n" + b.String() + "---\n\n", written, nil
}

var emptyBrackets = strings.NewReplacer("[[]]", "", "[]", "")

func blank(s string) bool {
	return strings.TrimSpace(emptyBrackets.Replace(s)) == ""
}

func splitItems(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" || item == "[[]]" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// EscapeYAML double-quotes a scalar when YAML would otherwise misread it:
// it holds ": # \" '" or a newline, has outer spaces, or starts with an
// indicator such as [ or {.
func EscapeYAML(s string) string {
	needs := strings.ContainsAny(s, ":#\"'\n") ||
		strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") ||
		strings.HasPrefix(s, "- ") || s == "-" ||
		(s != "" && strings.ContainsRune("[{]},&*!|>%@`", rune(s[0])))
	if !needs {
		return s
	}
	return `"` + yamlEscaper.Replace(s) + `"`
}

var yamlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
