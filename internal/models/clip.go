package models

import (
	"net/url"
	"strings"
)

// Highlight is a passage the user marked on the page.
type Highlight struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Notes   []string `json:"notes,omitempty"`
}

// MetaTag is one raw meta tag, keyed by its name, property or itemprop.
type MetaTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PageMetadata holds the page-level fields read from meta and title tags.
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Published   string `json:"published,omitempty"`
	Image       string `json:"image,omitempty"`
	Site        string `json:"site,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
}

// ClipVariables is the variable bag a page yields for rendering.
type ClipVariables struct {
	Title         string      `json:"title"`
	URL           string      `json:"url"`
	Content       string      `json:"content"`
	ContentHTML   string      `json:"contentHtml"`
	Selection     string      `json:"selection,omitempty"`
	SelectionHTML string      `json:"selectionHtml,omitempty"`
	Author        string      `json:"author,omitempty"`
	Description   string      `json:"description,omitempty"`
	Domain        string      `json:"domain"`
	Favicon       string      `json:"favicon,omitempty"`
	Image         string      `json:"image,omitempty"`
	Site          string      `json:"site,omitempty"`
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	Published     string      `json:"published,omitempty"`
	Words         int         `json:"words"`
	NoteName      string      `json:"noteName"`
	FullHTML      string      `json:"fullHtml,omitempty"`
	Highlights    []Highlight `json:"highlights,omitempty"`
	Meta          []MetaTag   `json:"meta,omitempty"`
}

// Override replaces metadata fields with the non-empty values of alt.
// The note name follows the title.
func (v *ClipVariables) Override(alt PageMetadata) {
	if alt.Title != "" && alt.Title != v.Title {
		v.Title = alt.Title
		v.NoteName = NoteName(alt.Title)
	}
	if alt.Author != "" {
		v.Author = alt.Author
	}
	if alt.Description != "" {
		v.Description = alt.Description
	}
	if alt.Published != "" {
		v.Published = alt.Published
	}
	if alt.Image != "" {
		v.Image = alt.Image
	}
	if alt.Site != "" {
		v.Site = alt.Site
	}
}

// MetaValue returns the value of the named meta tag.
func (v *ClipVariables) MetaValue(name string) (string, bool) {
	for _, m := range v.Meta {
		if m.Name == name {
			return m.Value, true
		}
	}
	return "", false
}

var noteNameReplacer = strings.NewReplacer(
	`\`, "", "/", "", ":", "", "*", "", "?", "", `"`, "", "<", "", ">", "", "|", "",
	"\r\n", " ", "\n", " ", "\r", " ", "\t", " ",
)

// NoteName derives a filesystem-safe note name from a title.
// The result may be empty when the title holds only invalid characters.
func NoteName(title string) string {
	return strings.TrimSpace(noteNameReplacer.Replace(title))
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Domain returns the host of rawURL, or "" when it cannot be parsed.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ClipRequest is the rendered note handed to the vault writer.
// NoteName has no .md suffix and no path separators.
type ClipRequest struct {
	NoteName   string            `json:"noteName"`
	Content    string            `json:"content"`
	Path       string            `json:"path"`
	Vault      string            `json:"vault,omitempty"`
	Behavior   TemplateBehavior  `json:"behavior"`
	Properties map[string]string `json:"properties"`
}
