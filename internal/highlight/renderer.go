// Package highlight mutates document presentation to mark verified or
// suspicious fragments. Every mutation is tracked and exactly reversible:
// original inline styles are captured onto the node itself before the first
// change, so restoration never depends on external state.
package highlight

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/pagesentry/pagesentry/internal/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	highlightClass = "pagesentry-highlight"
	riskClassPfx   = "pagesentry-risk-"
	badgeAttr      = "data-pagesentry-badge"
	statusID       = "pagesentry-status"
	statusSelector = "#" + statusID

	attrOrigBackground = "data-pagesentry-orig-background"
	attrOrigShadow     = "data-pagesentry-orig-shadow"
	attrOrigPadding    = "data-pagesentry-orig-padding"
)

// riskTint holds the visual treatment per risk level
var riskTint = map[model.Risk]struct {
	background string
	shadow     string
	badge      string
}{
	model.RiskHigh:   {"rgba(239, 68, 68, 0.25)", "0 0 0 2px rgba(239, 68, 68, 0.8)", "⚠"},
	model.RiskMedium: {"rgba(245, 158, 11, 0.22)", "0 0 0 2px rgba(245, 158, 11, 0.8)", "⚠"},
	model.RiskLow:    {"rgba(59, 130, 246, 0.15)", "0 0 0 2px rgba(59, 130, 246, 0.6)", "ℹ"},
}

// Annotation is the detail record behind one highlight, the data a click on
// the badge surfaces.
type Annotation struct {
	Text        string        `json:"text"`
	Outcome     model.Outcome `json:"outcome"`
	Confidence  float64       `json:"confidence"`
	Explanation string        `json:"explanation,omitempty"`
	Risk        model.Risk    `json:"-"`
	RiskLabel   string        `json:"risk"`
}

// Renderer marks nodes with verdicts and guarantees full reversibility. One
// renderer is bound to one parsed document; a navigation replaces both.
type Renderer struct {
	marked      map[*html.Node]bool
	annotations []Annotation
	logger      *zap.Logger
}

// NewRenderer creates a renderer with an empty tracking set
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		marked: make(map[*html.Node]bool),
		logger: logger,
	}
}

// Mark idempotently applies a verdict's visual treatment to a node. A node
// already in the tracking set is never re-marked; returns whether a
// mutation happened.
func (r *Renderer) Mark(node *html.Node, v model.Verdict, risk model.Risk) bool {
	if node == nil || risk == model.RiskNone {
		return false
	}
	if r.marked[node] {
		return false
	}

	r.saveOriginal(node)
	r.applyTreatment(node, v, risk)
	r.insertBadge(node, risk)

	r.marked[node] = true
	r.annotations = append(r.annotations, Annotation{
		Text:        v.Claim.Text,
		Outcome:     v.Outcome,
		Confidence:  v.Confidence,
		Explanation: v.Explanation,
		Risk:        risk,
		RiskLabel:   risk.String(),
	})

	r.logger.Debug("marked node",
		zap.String("risk", risk.String()),
		zap.String("outcome", string(v.Outcome)))
	return true
}

// Clear restores every marked node to its captured original presentation,
// removes injected badges, and empties the tracking set. Returns the number
// of nodes restored.
func (r *Renderer) Clear() int {
	n := 0
	for node := range r.marked {
		r.restore(node)
		n++
	}
	r.marked = make(map[*html.Node]bool)
	r.annotations = nil
	return n
}

// Count returns the number of currently marked nodes
func (r *Renderer) Count() int {
	return len(r.marked)
}

// Annotations returns the detail records for all current highlights
func (r *Renderer) Annotations() []Annotation {
	out := make([]Annotation, len(r.annotations))
	copy(out, r.annotations)
	return out
}

// saveOriginal captures the inline background, box-shadow and padding onto
// the node itself. Empty values record that the property was absent.
func (r *Renderer) saveOriginal(node *html.Node) {
	style, _ := getAttr(node, "style")
	props := parseStyle(style)
	setAttr(node, attrOrigBackground, styleGet(props, "background"))
	setAttr(node, attrOrigShadow, styleGet(props, "box-shadow"))
	setAttr(node, attrOrigPadding, styleGet(props, "padding"))
}

func (r *Renderer) applyTreatment(node *html.Node, v model.Verdict, risk model.Risk) {
	tint := riskTint[risk]

	style, _ := getAttr(node, "style")
	props := parseStyle(style)
	props = styleSet(props, "background", tint.background)
	props = styleSet(props, "box-shadow", tint.shadow)
	props = styleSet(props, "padding", "2px 4px")
	props = styleSet(props, "border-radius", "4px")
	setAttr(node, "style", formatStyle(props))

	addClass(node, highlightClass, riskClassPfx+risk.String())
	setAttr(node, "title", fmt.Sprintf("PageSentry: %s (%.0f%% confidence)", v.Outcome, v.Confidence*100))
}

// insertBadge places the badge element as the node's first child
func (r *Renderer) insertBadge(node *html.Node, risk model.Risk) {
	badge := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr: []html.Attribute{
			{Key: "class", Val: "pagesentry-badge " + riskClassPfx + risk.String()},
			{Key: badgeAttr, Val: ""},
		},
	}
	badge.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: riskTint[risk].badge + " ",
	})

	if node.FirstChild != nil {
		node.InsertBefore(badge, node.FirstChild)
	} else {
		node.AppendChild(badge)
	}
}

// restore undoes every mutation Mark applied to a single node
func (r *Renderer) restore(node *html.Node) {
	origBackground, _ := getAttr(node, attrOrigBackground)
	origShadow, _ := getAttr(node, attrOrigShadow)
	origPadding, _ := getAttr(node, attrOrigPadding)

	style, _ := getAttr(node, "style")
	props := parseStyle(style)
	props = styleSet(props, "background", origBackground)
	props = styleSet(props, "box-shadow", origShadow)
	props = styleSet(props, "padding", origPadding)
	props = styleSet(props, "border-radius", "")
	if len(props) == 0 {
		removeAttr(node, "style")
	} else {
		setAttr(node, "style", formatStyle(props))
	}

	removeClassPrefix(node, "pagesentry-")
	removeAttr(node, "title")
	removeAttr(node, attrOrigBackground)
	removeAttr(node, attrOrigShadow)
	removeAttr(node, attrOrigPadding)

	// Drop injected badge children
	for c := node.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			if _, ok := getAttr(c, badgeAttr); ok {
				node.RemoveChild(c)
			}
		}
		c = next
	}
}

// ShowStatus injects the "protected" indicator into the document body
func (r *Renderer) ShowStatus(doc *goquery.Document) {
	if doc == nil {
		return
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return
	}
	if doc.Find(statusSelector).Length() > 0 {
		return
	}

	indicator := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr: []html.Attribute{
			{Key: "id", Val: statusID},
			{Key: "class", Val: "pagesentry-status"},
		},
	}
	indicator.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: "🛡 PageSentry active",
	})
	body.Nodes[0].AppendChild(indicator)
}

// RemoveStatus removes the indicator if present
func (r *Renderer) RemoveStatus(doc *goquery.Document) {
	if doc == nil {
		return
	}
	sel := doc.Find(statusSelector)
	if sel.Length() == 0 {
		return
	}
	node := sel.Nodes[0]
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}
