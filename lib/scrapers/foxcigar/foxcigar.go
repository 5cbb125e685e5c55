// Package foxcigar extracts offers from foxcigar.com product pages.
// WooCommerce variant pages with two layouts: a "Cigar Count:" option
// list covering every quantity, or a bare "Box Count:" section when
// only boxes remain. The URL can land on a single or 5-pack variant, so
// extraction always targets the box option.
package foxcigar

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cigarpricescout/cigar-price-scout/lib/htmlutil"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
)

const source = "foxcigar"

var (
	// "25ct Box - In stock", "20ct Box – Out of stock"
	boxStockRe = regexp.MustCompile(`(?i)(\d+)ct\s+Box\s*[-–]\s*(In\s+stock|Out\s+of\s+stock)`)
	boxOnlyRe  = regexp.MustCompile(`(?i)(\d+)ct\s+Box`)
)

type Extractor struct{}

func New() Extractor {
	return Extractor{}
}

func (Extractor) Source() string {
	return source
}

func (Extractor) Extract(id offer.Identity, url string, body []byte, fetchedAt time.Time) (offer.RawCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return offer.RawCandidate{}, scrapers.NewError(source, scrapers.ReasonMalformedPage, err)
	}

	c := offer.RawCandidate{
		Identity:  id,
		URL:       url,
		Title:     strings.TrimSpace(htmlutil.CleanText(doc.Find("h1.product_title, h1").First())),
		FetchedAt: fetchedAt,
	}

	summary := doc.Find("div.summary, div.product-summary").First()
	if summary.Length() == 0 {
		summary = doc.Selection
	}
	summary.Find("span.woocommerce-Price-amount, .price .amount").Each(func(_ int, sel *goquery.Selection) {
		cents, ok := scrapers.ParsePrice(htmlutil.CleanText(sel))
		if !ok {
			return
		}
		struck := htmlutil.IsStruck(sel)
		c.Mentions = append(c.Mentions, offer.PriceMention{Cents: cents, Struck: struck})
		if struck {
			c.DiscountSignal = true
		}
	})
	if len(c.Mentions) == 0 {
		return offer.RawCandidate{}, scrapers.NewError(source, scrapers.ReasonNoPriceFound, nil)
	}

	pageText := htmlutil.CleanText(doc.Selection)
	qty, stock := boxOption(pageText)
	c.BoxQty = qty
	c.StructuredStock = stock

	c.StockText = strings.TrimSpace(htmlutil.CleanText(
		doc.Find("button.single_add_to_cart_button, button[class*=add_to_cart]").First()))
	if c.StockText == "" {
		c.StockText = pageText
	}

	return c, nil
}

// boxOption scans the page text for the box quantity option and its
// stock marker. The explicit "Nct Box - In stock" form wins; a bare
// "Nct Box" still yields the quantity with stock left unknown.
func boxOption(pageText string) (*int, *bool) {
	if m := boxStockRe.FindStringSubmatch(pageText); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err == nil && qty > 0 {
			inStock := strings.EqualFold(strings.Join(strings.Fields(m[2]), " "), "in stock")
			return &qty, &inStock
		}
	}
	if m := boxOnlyRe.FindStringSubmatch(pageText); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err == nil && qty > 0 {
			return &qty, nil
		}
	}
	return nil, nil
}
