// Package hilands extracts offers from hilandscigars.com product pages.
// WooCommerce theme: prices live in the product summary region as
// woocommerce-Price-amount spans, the regular price is struck through,
// and stock is signaled by the cart button text.
package hilands

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cigarpricescout/cigar-price-scout/lib/htmlutil"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
)

const source = "hilands"

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
		FetchedAt: fetchedAt,
	}

	title := htmlutil.CleanText(doc.Find("h1.product_title").First())
	if title == "" {
		title = htmlutil.CleanText(doc.Find("h1").First())
	}
	c.Title = strings.TrimSpace(title)

	// price mentions come from the summary region only; related-product
	// and sidebar prices are noise
	summary := doc.Find("div.summary, div.product-summary, div.single-product, div.product-info").First()
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

	c.StockText = stockText(doc)

	if qty := scrapers.BoxQtyFromText(c.Title); qty != nil {
		c.BoxQty = qty
	} else if qty := scrapers.BoxQtyFromURL(canonicalURL(doc, url)); qty != nil {
		c.BoxQty = qty
	}

	return c, nil
}

// stockText picks the text stock inference reads: the cart button when
// present, else the stock status element, else the summary body.
func stockText(doc *goquery.Document) string {
	button := doc.Find("button.single_add_to_cart_button, button[class*=add_to_cart], input[class*=add_to_cart]").First()
	if button.Length() > 0 {
		if text := strings.TrimSpace(htmlutil.CleanText(button)); text != "" {
			return text
		}
	}
	status := doc.Find("p.stock, .stock").First()
	if status.Length() > 0 {
		return strings.TrimSpace(htmlutil.CleanText(status))
	}
	return htmlutil.CleanText(doc.Find("div.summary").First())
}

func canonicalURL(doc *goquery.Document, fallback string) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		return href
	}
	return fallback
}
