package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return doc
}

func TestExtractor_BasicExtraction(t *testing.T) {
	html := `
	<html>
	<body>
		<p>Scientists confirm 50% increase in cases, according to new study</p>
		<p>Click here to subscribe and learn more about our offers today</p>
		<p>The afternoon was quiet and nothing much happened around here.</p>
	</body>
	</html>
	`

	extractor := NewExtractor(15)
	reg := NewRegistry()
	claims := extractor.Extract(parseDoc(t, html), reg)

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "Scientists confirm") {
		t.Errorf("Expected the study claim, got %q", claims[0].Text)
	}
	if claims[0].Score < 4 {
		t.Errorf("Expected score of at least 4, got %d", claims[0].Score)
	}
	if reg.Node(claims[0].Node) == nil {
		t.Error("Expected a registered source node")
	}
}

func TestExtractor_LengthBand(t *testing.T) {
	long := "According to officials, " + strings.Repeat("the numbers keep growing and growing ", 15)
	html := `
	<html>
	<body>
		<p>Officials confirmed it.</p>
		<p>` + long + `</p>
		<p>According to officials, the reported numbers doubled last month.</p>
	</body>
	</html>
	`

	extractor := NewExtractor(15)
	claims := extractor.Extract(parseDoc(t, html), NewRegistry())

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim within the length band, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "doubled last month") {
		t.Errorf("Expected the mid-length claim, got %q", claims[0].Text)
	}
}

func TestExtractor_LengthBandCountsCharacters(t *testing.T) {
	// 36 characters but 59 bytes; below the band either way only when
	// counting characters
	short := "Учёные confirmed это согласно данным"
	// Over 400 bytes but well under 400 characters
	long := "According to officials, " + strings.Repeat("данные растут ", 15)
	html := `
	<html>
	<body>
		<p>` + short + `</p>
		<p>` + long + `</p>
	</body>
	</html>
	`

	extractor := NewExtractor(15)
	claims := extractor.Extract(parseDoc(t, html), NewRegistry())

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "According to officials") {
		t.Errorf("Expected the long non-ASCII claim, got %q", claims[0].Text)
	}
}

func TestExtractor_LandmarkExclusion(t *testing.T) {
	html := `
	<html>
	<body>
		<nav><p>Officials confirmed the menu changed, according to reports.</p></nav>
		<footer><p>Researchers found the footer also makes claims, they said.</p></footer>
		<div role="navigation"><p>Experts said this sidebar link text is also claim-like.</p></div>
		<main><p>Officials confirmed the policy changed, according to reports.</p></main>
	</body>
	</html>
	`

	extractor := NewExtractor(15)
	claims := extractor.Extract(parseDoc(t, html), NewRegistry())

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim outside landmarks, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "policy changed") {
		t.Errorf("Expected the main-content claim, got %q", claims[0].Text)
	}
}

func TestExtractor_HiddenElements(t *testing.T) {
	html := `
	<html>
	<body>
		<p style="display: none">Officials confirmed the hidden text, according to reports.</p>
		<div aria-hidden="true"><p>Researchers found this aria-hidden text, they announced.</p></div>
		<p hidden>Experts said this hidden-attribute text is also claim-like.</p>
		<p>Officials confirmed the visible claim stands, according to reports.</p>
	</body>
	</html>
	`

	extractor := NewExtractor(15)
	claims := extractor.Extract(parseDoc(t, html), NewRegistry())

	if len(claims) != 1 {
		t.Fatalf("Expected 1 visible claim, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "visible claim") {
		t.Errorf("Expected the visible claim, got %q", claims[0].Text)
	}
}

func TestExtractor_RankingAndCap(t *testing.T) {
	html := `
	<html>
	<body>
		<p>Experts said the first mild finding may cause concern somewhere.</p>
		<p>Scientists confirm 75% spike, according to officials who announced it.</p>
		<p>Researchers found another mild result, due to unknown causes.</p>
	</body>
	</html>
	`

	extractor := NewExtractor(2)
	claims := extractor.Extract(parseDoc(t, html), NewRegistry())

	if len(claims) != 2 {
		t.Fatalf("Expected cap of 2 claims, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "75% spike") {
		t.Errorf("Expected the highest-scoring claim first, got %q", claims[0].Text)
	}
	if claims[0].Score < claims[1].Score {
		t.Errorf("Expected descending scores, got %d then %d", claims[0].Score, claims[1].Score)
	}
}

func TestExtractor_Deduplication(t *testing.T) {
	html := `
	<html>
	<body>
		<p>Officials confirmed the figures rose sharply, according to reports.</p>
		<p>Officials confirmed the figures rose sharply, according to reports.</p>
	</body>
	</html>
	`

	extractor := NewExtractor(15)
	claims := extractor.Extract(parseDoc(t, html), NewRegistry())

	if len(claims) != 1 {
		t.Errorf("Expected duplicate text collapsed to 1 claim, got %d", len(claims))
	}
}
