// Package scrape extracts country records from the source page markup.
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Country is one extracted record. Name is always present (empty string
// when unresolved); the remaining fields are nil when the source markup
// omits them or the numeric text cannot be coerced.
type Country struct {
	Name       string
	Capital    *string
	Population *int64
	Area       *int64
}

// Selectors for the source page. The page groups each country in a
// div.country block; if that structure ever changes, the extractor falls
// back to matching the name headers directly.
const (
	containerSelector  = "div.country"
	fallbackSelector   = "h3.country-name"
	nameSelector       = ".country-name"
	capitalSelector    = ".country-capital"
	populationSelector = ".country-population"
	areaSelector       = ".country-area"
)

// candidateMode records which selector produced the candidate list.
// It is resolved once per document, not per field.
type candidateMode int

const (
	modeContainer candidateMode = iota
	modeBareName
)

// Extract locates up to limit record blocks in doc and returns one
// Country per block, in document order. Every matched block yields a
// record, even when all of its sub-fields are absent; only a document
// with no matching blocks under either selector yields zero records.
func Extract(doc *goquery.Document, limit int) []Country {
	if doc == nil {
		return nil
	}

	mode := modeContainer
	cards := doc.Find(containerSelector)
	if cards.Length() == 0 {
		cards = doc.Find(fallbackSelector)
		mode = modeBareName
	}
	if cards.Length() == 0 {
		return nil
	}
	if cards.Length() > limit {
		cards = cards.Slice(0, limit)
	}

	countries := make([]Country, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		countries = append(countries, extractOne(card, mode))
	})
	return countries
}

func extractOne(card *goquery.Selection, mode candidateMode) Country {
	c := Country{Name: extractName(card, mode)}
	c.Capital = optionalText(card.Find(capitalSelector))
	c.Population = optionalInt(card.Find(populationSelector))
	c.Area = optionalInt(card.Find(areaSelector))
	return c
}

// extractName prefers a dedicated name sub-element; when the candidate
// list came from the fallback selector, the card itself is the name
// header and its own text is used.
func extractName(card *goquery.Selection, mode candidateMode) string {
	if name := strings.TrimSpace(card.Find(nameSelector).First().Text()); name != "" {
		return name
	}
	if mode == modeBareName {
		return strings.TrimSpace(card.Text())
	}
	return ""
}

func optionalText(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return nil
	}
	return &text
}

func optionalInt(sel *goquery.Selection) *int64 {
	if sel.Length() == 0 {
		return nil
	}
	raw := sel.First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return ParseLooseInt(raw)
}
