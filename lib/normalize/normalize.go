// Package normalize validates one extraction candidate into a persistable
// record. It is a pure function of its inputs: running it twice over the
// same candidate yields the same record.
package normalize

import (
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/pricing"
	"github.com/cigarpricescout/cigar-price-scout/lib/textutil"
)

// Candidate resolves the candidate's price mentions and stock evidence into
// a validated record. Price resolution failures (no valid price, ambiguous
// set) are returned as *pricing.Error and reported by the caller, never
// guessed past.
func Candidate(c offer.RawCandidate, cfg pricing.Config) (offer.Record, error) {
	res, err := pricing.Resolve(c.Mentions, c.DiscountSignal, cfg)
	if err != nil {
		return offer.Record{}, err
	}

	price := res.PriceCents
	return offer.Record{
		Identity:        c.Identity,
		Title:           textutil.CollapseWhitespace(c.Title),
		URL:             c.URL,
		PriceCents:      &price,
		RegularCents:    res.RegularCents,
		DiscountPercent: res.DiscountPercent,
		InStock:         pricing.InferStock(c.StockText, c.StructuredStock),
		BoxQty:          c.BoxQty,
		LastCheckedAt:   c.FetchedAt,
	}, nil
}
