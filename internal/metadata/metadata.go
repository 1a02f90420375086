// Package metadata reads page-level fields from meta, title and link tags.
package metadata

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/starford/vaultclip/internal/models"
)

// Fallback title when the page has none.
const Untitled = "Untitled"

// Priority-ordered meta keys per field.
var (
	authorKeys      = []string{"author", "article:author", "og:article:author", "twitter:creator"}
	descriptionKeys = []string{"description", "og:description", "twitter:description"}
	publishedKeys   = []string{"article:published_time", "og:article:published_time", "datePublished", "date"}
	imageKeys       = []string{"og:image", "twitter:image", "twitter:image:src"}
	siteKeys        = []string{"og:site_name", "application-name"}
	titleKeys       = []string{"og:title", "twitter:title"}
)

// Page is the result of Extract.
type Page struct {
	models.PageMetadata
	Meta []models.MetaTag
}

// Extract reads metadata from the original, uncleaned document.
func Extract(doc *html.Node, pageURL *url.URL) Page {
	d := goquery.NewDocumentFromNode(doc)
	meta := Tags(d)
	lookup := func(keys []string) string {
		for _, k := range keys {
			for _, m := range meta {
				if m.Name == k && strings.TrimSpace(m.Value) != "" {
					return strings.TrimSpace(m.Value)
				}
			}
		}
		return ""
	}

	p := Page{Meta: meta}
	p.Title = clean(d.Find("title").First().Text())
	if p.Title == "" {
		p.Title = lookup(titleKeys)
	}
	if p.Title == "" {
		p.Title = clean(d.Find("h1").First().Text())
	}
	if p.Title == "" {
		p.Title = Untitled
	}

	p.Author = lookup(authorKeys)
	p.Description = lookup(descriptionKeys)
	p.Published = lookup(publishedKeys)
	if p.Published == "" {
		p.Published, _ = d.Find("time[datetime]").First().Attr("datetime")
		p.Published = strings.TrimSpace(p.Published)
	}
	p.Image = resolve(pageURL, lookup(imageKeys))
	p.Site = lookup(siteKeys)

	d.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		for _, r := range strings.Fields(strings.ToLower(rel)) {
			if r == "icon" || r == "apple-touch-icon" {
				href, _ := s.Attr("href")
				p.Favicon = resolve(pageURL, href)
				return p.Favicon == ""
			}
		}
		return true
	})
	return p
}

// Tags collects meta tags keyed by name, property or itemprop. The first
// occurrence of a key wins, so keys are unique.
func Tags(d *goquery.Document) []models.MetaTag {
	var out []models.MetaTag
	seen := make(map[string]bool)
	d.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		key := ""
		for _, a := range []string{"name", "property", "itemprop"} {
			if v, ok := s.Attr(a); ok && strings.TrimSpace(v) != "" {
				key = strings.TrimSpace(v)
				break
			}
		}
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		content, _ := s.Attr("content")
		out = append(out, models.MetaTag{Name: key, Value: content})
	})
	return out
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
