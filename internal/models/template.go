// Package models defines the domain types for vaultclip.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/vaultclip/internal/apperr"
)

// Default template formats.
const (
	DefaultNoteNameFormat    = "{{title}}"
	DefaultNoteContentFormat = "{{content}}"
)

// TemplateBehavior decides how a rendered note merges into the vault.
type TemplateBehavior string

const (
	BehaviorCreate          TemplateBehavior = "create"
	BehaviorAppendSpecific  TemplateBehavior = "append-specific"
	BehaviorPrependSpecific TemplateBehavior = "prepend-specific"
	BehaviorAppendDaily     TemplateBehavior = "append-daily"
	BehaviorPrependDaily    TemplateBehavior = "prepend-daily"
	BehaviorOverwrite       TemplateBehavior = "overwrite"
)

// behaviorAliases maps accepted spellings to the canonical wire value.
var behaviorAliases = map[string]TemplateBehavior{
	"create":           BehaviorCreate,
	"append-specific":  BehaviorAppendSpecific,
	"appendSpecific":   BehaviorAppendSpecific,
	"prepend-specific": BehaviorPrependSpecific,
	"prependSpecific":  BehaviorPrependSpecific,
	"append-daily":     BehaviorAppendDaily,
	"appendDaily":      BehaviorAppendDaily,
	"prepend-daily":    BehaviorPrependDaily,
	"prependDaily":     BehaviorPrependDaily,
	"overwrite":        BehaviorOverwrite,
}

// ParseBehavior resolves a behavior name. Unknown names are an import error.
func ParseBehavior(s string) (TemplateBehavior, error) {
	if b, ok := behaviorAliases[s]; ok {
		return b, nil
	}
	return "", fmt.Errorf("%w: unknown behavior %q", apperr.ErrImport, s)
}

// IsDaily reports whether the behavior targets the daily note.
func (b TemplateBehavior) IsDaily() bool {
	return b == BehaviorAppendDaily || b == BehaviorPrependDaily
}

// IsAppend reports whether the behavior appends to an existing note.
func (b TemplateBehavior) IsAppend() bool {
	return b == BehaviorAppendSpecific || b == BehaviorAppendDaily
}

// IsPrepend reports whether the behavior prepends to an existing note.
func (b TemplateBehavior) IsPrepend() bool {
	return b == BehaviorPrependSpecific || b == BehaviorPrependDaily
}

// UnmarshalJSON accepts both kebab-case and camelCase behavior names.
func (b *TemplateBehavior) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: behavior must be a string", apperr.ErrImport)
	}
	parsed, err := ParseBehavior(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// PropertyType selects how a property is written into frontmatter.
type PropertyType string

const (
	PropertyText      PropertyType = "text"
	PropertyNumber    PropertyType = "number"
	PropertyCheckbox  PropertyType = "checkbox"
	PropertyDate      PropertyType = "date"
	PropertyDatetime  PropertyType = "datetime"
	PropertyMultitext PropertyType = "multitext"
)

// TemplateProperty is one frontmatter entry. Value is a template string.
type TemplateProperty struct {
	ID    string       `json:"id,omitempty"`
	Name  string       `json:"name"`
	Value string       `json:"value"`
	Type  PropertyType `json:"type,omitempty"`
}

// Validate validates the property.
func (p TemplateProperty) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Type, validation.In(
			PropertyText, PropertyNumber, PropertyCheckbox,
			PropertyDate, PropertyDatetime, PropertyMultitext,
		)),
	)
}

// Template is a named rendering recipe.
type Template struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Behavior          TemplateBehavior   `json:"behavior"`
	NoteNameFormat    string             `json:"noteNameFormat"`
	Path              string             `json:"path"`
	NoteContentFormat string             `json:"noteContentFormat"`
	Properties        []TemplateProperty `json:"properties"`
	Triggers          []string           `json:"triggers,omitempty"`
	Vault             string             `json:"vault,omitempty"`
	Context           string             `json:"context,omitempty"`
}

// NewTemplate returns a template with a fresh id and default formats.
func NewTemplate(name string) Template {
	return Template{
		ID:                uuid.NewString(),
		Name:              name,
		Behavior:          BehaviorCreate,
		NoteNameFormat:    DefaultNoteNameFormat,
		NoteContentFormat: DefaultNoteContentFormat,
		Properties:        []TemplateProperty{},
	}
}

// Validate validates the template.
func (t Template) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Behavior, validation.Required, validation.By(func(v interface{}) error {
			_, err := ParseBehavior(string(v.(TemplateBehavior)))
			return err
		})),
		validation.Field(&t.Properties),
	)
}

// ApplyDefaults fills every optional field an externally authored template
// may omit.
func (t *Template) ApplyDefaults() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Behavior == "" {
		t.Behavior = BehaviorCreate
	}
	if t.NoteNameFormat == "" {
		t.NoteNameFormat = DefaultNoteNameFormat
	}
	if t.NoteContentFormat == "" {
		t.NoteContentFormat = DefaultNoteContentFormat
	}
	if t.Properties == nil {
		t.Properties = []TemplateProperty{}
	}
	for i := range t.Properties {
		if t.Properties[i].Type == "" {
			t.Properties[i].Type = PropertyText
		}
	}
}

// ParseTemplate decodes one template from its JSON interchange form.
// A missing id is generated. Any schema problem wraps apperr.ErrImport.
func ParseTemplate(data []byte) (Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		if errors.Is(err, apperr.ErrImport) {
			return Template{}, err
		}
		return Template{}, fmt.Errorf("%w: %v", apperr.ErrImport, err)
	}
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return Template{}, fmt.Errorf("%w: %v", apperr.ErrImport, err)
	}
	return t, nil
}

// SplitTemplates splits an interchange document into raw template objects.
// The document may be a single object or an array of objects.
func SplitTemplates(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", apperr.ErrImport)
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrImport, err)
		}
		return items, nil
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}
