package selector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// denylist is removed from every selected fragment.
var denylist = cascadia.MustCompile(strings.Join([]string{
	"nav", "footer", "aside", "header",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[role=complementary]",
	".ad", ".ads", ".advert", ".advertisement", ".sponsored", `[id^="ad-"]`, `[class*="ad-slot"]`,
	".share", ".sharing", ".share-buttons", ".social-share", ".social-links",
	".related", ".related-posts", ".related-articles",
	".newsletter", ".subscribe", ".signup",
	".author-bio", ".author-box", ".about-author",
	".breadcrumb", ".breadcrumbs",
	".tags", ".tag-list", ".post-tags",
	".sidebar", "#sidebar", ".widget",
	".comments", "#comments",
}, ", "))

// Link-density thresholds.
const (
	linkRatio    = 0.8
	minLinks     = 3
	maxLinkBlock = 300
	maxNoticeLen = 200
)

var (
	blocks  = cascadia.MustCompile("div, section, ul, ol, p, table, dl")
	notices = cascadia.MustCompile("p, div, span, small, section")

	// Notice forms only: a copyright line, a rights reservation or a cookie
	// banner. A paragraph that merely mentions copyright is content.
	boilerplate = regexp.MustCompile(`(?i)(^\s*(©|\(c\)|copyright)\s*(©|\(c\))?\s*\d{4}|all rights reserved|cookie (policy|preferences|settings)|accept (all )?cookies|manage cookies|we use cookies)`)
)

// Cleanup removes boilerplate descendants of root in place. root itself is
// never removed.
func Cleanup(root *goquery.Selection) {
	root.FindMatcher(denylist).Remove()

	root.FindMatcher(blocks).Each(func(_ int, s *goquery.Selection) {
		if linkDominated(s) {
			s.Remove()
		}
	})

	root.FindMatcher(notices).Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if runeLen(text) < maxNoticeLen && boilerplate.MatchString(text) {
			s.Remove()
		}
	})
}

func linkDominated(s *goquery.Selection) bool {
	links := s.Find("a")
	if links.Length() <= minLinks {
		return false
	}
	total := runeLen(s.Text())
	if total == 0 || total >= maxLinkBlock {
		return false
	}
	linkText := 0
	links.Each(func(_ int, a *goquery.Selection) {
		linkText += runeLen(a.Text())
	})
	return float64(linkText)/float64(total) > linkRatio
}
