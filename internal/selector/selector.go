// Package selector picks the sub-tree of a page most likely to hold the
// article body and cleans boilerplate out of it.
package selector

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Priority lists, tried in order; the first match with text wins.
var (
	platformSelectors = []string{
		".post-content", ".article-content", ".entry-content", ".post-body",
		".article-body", "[itemprop=articleBody]", ".story-body",
	}
	semanticSelectors = []string{"article", "main", "[role=main]"}
	genericSelectors  = []string{"#content", ".content", "#main-content", "#main"}

	priority = compileAll(platformSelectors, semanticSelectors, genericSelectors)
)

// Heuristic scoring parameters.
const (
	navPenalty   = 80
	minScore     = 140
	candidateSel = "div, section, td"
)

var (
	candidates  = cascadia.MustCompile(candidateSel)
	paragraphs  = cascadia.MustCompile("p, blockquote")
	navigations = cascadia.MustCompile("nav, [role=navigation], .nav, .menu, .navigation")
)

type prioritySelector struct {
	name string
	sel  cascadia.Selector
}

func compileAll(groups ...[]string) []prioritySelector {
	var out []prioritySelector
	for _, g := range groups {
		for _, s := range g {
			out = append(out, prioritySelector{name: s, sel: cascadia.MustCompile(s)})
		}
	}
	return out
}

// Result is the selected fragment and how it was found.
type Result struct {
	Selection *goquery.Selection
	// Matched is the priority selector that matched, "heuristic", or "body".
	Matched string
}

// HTML returns the inner HTML of the selected fragment.
func (r Result) HTML() (string, error) {
	return r.Selection.Html()
}

// Select finds and cleans the main content of doc. It never returns an
// empty selection: in the worst case the whole body is returned, cleaned.
// doc is modified in place.
func Select(doc *html.Node) Result {
	d := goquery.NewDocumentFromNode(doc)

	res := pick(d)
	Cleanup(res.Selection)
	return res
}

func pick(d *goquery.Document) Result {
	for _, p := range priority {
		m := d.FindMatcher(p.sel).First()
		if m.Length() > 0 && strings.TrimSpace(m.Text()) != "" {
			return Result{Selection: m, Matched: p.name}
		}
	}

	if best := bestCandidate(d); best != nil {
		return Result{Selection: best, Matched: "heuristic"}
	}

	body := d.Find("body").First()
	if body.Length() == 0 {
		body = d.Selection
	}
	return Result{Selection: body, Matched: "body"}
}

// bestCandidate scores block containers by paragraph text minus a penalty
// for navigation-like descendants. Parents precede children in document
// order, so a tie goes to the tighter container.
func bestCandidate(d *goquery.Document) *goquery.Selection {
	var (
		best      *goquery.Selection
		bestScore = minScore
	)
	d.FindMatcher(candidates).Each(func(_ int, s *goquery.Selection) {
		score := Score(s)
		if score > minScore && score >= bestScore {
			best = s
			bestScore = score
		}
	})
	return best
}

// Score is the heuristic content score of s.
func Score(s *goquery.Selection) int {
	textLen := 0
	s.FindMatcher(paragraphs).Each(func(_ int, p *goquery.Selection) {
		// A blockquote wrapping paragraphs is counted through them.
		if goquery.NodeName(p) == "blockquote" && p.Find("p").Length() > 0 {
			return
		}
		textLen += runeLen(p.Text())
	})
	return textLen - navPenalty*s.FindMatcher(navigations).Length()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
