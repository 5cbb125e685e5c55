// Package holts extracts offers from holts.com pages. Holt's lists a
// whole product family in one table, so the target row is found by
// scoring every row against the vitola and size carried in the catalog
// identifier, then price, stock and quantity are read from the winning
// row only.
package holts

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cigarpricescout/cigar-price-scout/lib/catalog"
	"github.com/cigarpricescout/cigar-price-scout/lib/htmlutil"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
	"github.com/cigarpricescout/cigar-price-scout/lib/textutil"
)

const source = "holts"

// minRowScore is the lowest score a row may have and still be accepted
// as the target product: vitola and size matched plus at least one
// visible price.
const minRowScore = 5

type Extractor struct{}

func New() Extractor {
	return Extractor{}
}

func (Extractor) Source() string {
	return source
}

func (Extractor) Extract(id offer.Identity, url string, body []byte, fetchedAt time.Time) (offer.RawCandidate, error) {
	cid, err := catalog.ParseCID(id.ProductID)
	if err != nil {
		return offer.RawCandidate{}, scrapers.NewError(source, scrapers.ReasonMalformedPage, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return offer.RawCandidate{}, scrapers.NewError(source, scrapers.ReasonMalformedPage, err)
	}

	// the raw CID component and its display form both appear in the wild
	// ("BESTSELLER" vs "Best Seller")
	vitolas := []string{strings.ToLower(cid.Vitola), strings.ToLower(cid.VitolaName())}
	size := strings.ToLower(cid.Size)

	var best *goquery.Selection
	bestScore := 0
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		score := scoreRow(htmlutil.CleanText(row), vitolas, size)
		if score > bestScore && score >= minRowScore {
			best = row
			bestScore = score
		}
	})
	if best == nil {
		return offer.RawCandidate{}, scrapers.NewError(source, scrapers.ReasonNoPriceFound, nil)
	}

	c := offer.RawCandidate{
		Identity:  id,
		URL:       url,
		Title:     cid.VitolaName(),
		FetchedAt: fetchedAt,
	}

	rowText := htmlutil.CleanText(best)
	best.Find("td, th, span, div, del, s, ins").Each(func(_ int, cell *goquery.Selection) {
		// only leaf cells, so nested wrappers do not duplicate mentions
		if cell.Children().Length() > 0 {
			return
		}
		text := htmlutil.CleanText(cell)
		cents, ok := scrapers.ParsePrice(text)
		if !ok {
			return
		}
		struck := htmlutil.IsStruck(cell) || strings.Contains(strings.ToLower(text), "msrp")
		c.Mentions = append(c.Mentions, offer.PriceMention{Cents: cents, Struck: struck})
		if struck {
			c.DiscountSignal = true
		}
	})
	if len(c.Mentions) == 0 {
		return offer.RawCandidate{}, scrapers.NewError(source, scrapers.ReasonNoPriceFound, nil)
	}
	if strings.Contains(strings.ToLower(rowText), "msrp") {
		c.DiscountSignal = true
	}

	c.StockText = rowText

	if qty := scrapers.BoxQtyFromText(rowText); qty != nil {
		c.BoxQty = qty
	} else if qty, ok := cid.BoxQty(); ok {
		c.BoxQty = &qty
	}

	return c, nil
}

// scoreRow rates how well one table row matches the target offer.
// Vitola and size must both be present; rows of a sibling vitola
// routinely carry box wording and prices, so neither alone is evidence.
// Matching is whitespace-insensitive: pages render "Short Story" and
// "4.5 x 55" where the identifier has "SHORTSTORY" and "4.5x55".
func scoreRow(text string, vitolas []string, size string) int {
	norm := textutil.Normalize(text)

	vitolaHit := false
	for _, vitola := range vitolas {
		if vitola != "" && strings.Contains(norm, textutil.Normalize(vitola)) {
			vitolaHit = true
			break
		}
	}
	sizeHit := size != "" &&
		(strings.Contains(norm, size) ||
			strings.Contains(norm, strings.ReplaceAll(size, "x", `"x`)))
	if !vitolaHit || !sizeHit {
		return 0
	}

	score := 4
	if strings.Contains(norm, "box") {
		score++
	}
	switch prices := len(scrapers.ParsePrices(text)); {
	case prices >= 2:
		score += 2
	case prices == 1:
		score++
	}
	return score
}
