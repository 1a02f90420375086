package metadata

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/starford/vaultclip/internal/models"
)

// Readability reads metadata with go-readability. Its heuristics often find
// a cleaner title and byline than the raw meta tags, so callers use the
// result to override the tag-based fields where it is non-empty.
func Readability(raw string, pageURL *url.URL) (models.PageMetadata, error) {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		return models.PageMetadata{}, fmt.Errorf("metadata: readability: %w", err)
	}

	m := models.PageMetadata{
		Title:       clean(article.Title),
		Author:      clean(article.Byline),
		Description: clean(article.Excerpt),
		Image:       article.Image,
		Site:        clean(article.SiteName),
		Favicon:     article.Favicon,
	}
	if article.PublishedTime != nil {
		m.Published = article.PublishedTime.Format(time.RFC3339)
	}
	return m, nil
}
