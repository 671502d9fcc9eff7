package extract

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pagesentry/pagesentry/internal/model"
)

const (
	minClaimLength = 40
	maxClaimLength = 400
	minScore       = 2
)

// candidateSelector matches the content-bearing elements worth scoring:
// headings, paragraphs, blockquotes, list items and elements whose class
// hints at headline/title/summary content.
const candidateSelector = `h1, h2, h3, h4, p, blockquote, li, [class*="headline"], [class*="title"], [class*="summary"]`

// landmarkSelector matches navigation/UI chrome by tag or ARIA role. Any
// element inside a landmark is excluded outright, regardless of score.
const landmarkSelector = `nav, header, footer, aside, [role="navigation"], [role="banner"], [role="contentinfo"], [role="complementary"]`

// Extractor extracts candidate claims from a parsed document
type Extractor struct {
	maxClaims int
}

// NewExtractor creates a claim extractor returning at most maxClaims
// candidates per scan
func NewExtractor(maxClaims int) *Extractor {
	if maxClaims <= 0 {
		maxClaims = 15
	}
	return &Extractor{maxClaims: maxClaims}
}

// Extract walks the document and returns candidate claims ranked by
// descending score, ties broken by document order. Source elements are
// registered in reg; claims reference them by handle. The document is only
// read, never mutated.
func (e *Extractor) Extract(doc *goquery.Document, reg *Registry) []model.Claim {
	seen := make(map[string]bool)
	var claims []model.Claim

	doc.Find(candidateSelector).Each(func(i int, s *goquery.Selection) {
		if s.Closest(landmarkSelector).Length() > 0 {
			return
		}
		if isHidden(s) {
			return
		}

		text := normalizeText(s.Text())
		// Length band counts characters, not bytes, so non-ASCII text is
		// banded the same as English.
		if n := utf8.RuneCountInString(text); n < minClaimLength || n > maxClaimLength {
			return
		}
		if seen[text] {
			return
		}

		score := Score(text)
		if score < minScore {
			return
		}

		seen[text] = true
		handle := reg.Add(s.Nodes[0])
		claims = append(claims, model.Claim{
			Text:  text,
			Score: score,
			Node:  handle,
			Location: model.Location{
				Index:   i,
				Visible: true,
			},
		})
	})

	// Descending score, document order preserved within equal scores
	sort.SliceStable(claims, func(a, b int) bool {
		return claims[a].Score > claims[b].Score
	})

	if len(claims) > e.maxClaims {
		claims = claims[:e.maxClaims]
	}
	return claims
}

// isHidden reports whether the element or any ancestor is hidden. Without a
// layout engine this inspects inline styles and the hidden/aria-hidden
// attributes, the static equivalent of a missing offsetParent.
func isHidden(s *goquery.Selection) bool {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if _, ok := cur.Attr("hidden"); ok {
			return true
		}
		if v, _ := cur.Attr("aria-hidden"); v == "true" {
			return true
		}
		style, _ := cur.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

// normalizeText collapses runs of whitespace into single spaces and trims
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
