// Package pricing turns the raw price mentions pulled off a retailer page
// into a single current price, an optional regular price, and an optional
// discount. Pages are noisy: navigation widgets, "minimum order" banners and
// related-product tiles all contain dollar amounts, so every decision here is
// a bounded, per-source-configurable filter rather than a guess.
package pricing

import (
	"fmt"
	"math"
	"slices"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

type Reason string

const (
	ReasonNoValidPrice      Reason = "no_valid_price"
	ReasonAmbiguousPriceSet Reason = "ambiguous_price_set"
)

type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return fmt.Sprintf("pricing: %s", e.Reason)
}

// Config bounds the price heuristics for one source. The catalog tracks
// box-level purchases, so the plausible range excludes single-stick prices
// on the low end and unrelated amounts on the high end.
type Config struct {
	// MinCents / MaxCents bound the plausible product-price range in
	// currency minor units.
	MinCents int64 `json:"min_cents"`
	MaxCents int64 `json:"max_cents"`
	// NoiseCents lists exact values known to recur across this source's
	// pages without being product prices (sitewide shipping banners and
	// the like). Adapter-specific configuration, not pipeline logic.
	NoiseCents []int64 `json:"noise_cents"`
	// PremiumSingularCents, when nonzero, enables the per-source policy
	// that listings above this value carry a single price: an ambiguous
	// multi-price page resolves to the highest price instead of erroring
	// when that price clears the threshold. Pragmatic approximation,
	// revisit if false positives appear.
	PremiumSingularCents int64 `json:"premium_singular_cents"`
	// MinDiscountPercent discards computed discounts below it so noise
	// never surfaces as a deal.
	MinDiscountPercent int `json:"min_discount_percent"`
}

func DefaultConfig() Config {
	return Config{
		MinCents:           5_000,
		MaxCents:           200_000,
		MinDiscountPercent: 5,
	}
}

// Resolution is the outcome of resolving a page's price mentions.
type Resolution struct {
	PriceCents      int64
	RegularCents    *int64
	DiscountPercent *int
}

// Resolve applies the price decision rule to the given mentions.
// discountSignal should be true only when the page carries an explicit
// discount marker (strikethrough markup, "you save", a regular-price label);
// a struck mention implies the signal on its own.
//
// With exactly one in-range, non-noise price the result is that price and no
// discount. With several, the lowest is the sale price and the next higher
// one the regular price, but only under an explicit signal; otherwise the
// set is ambiguous unless the premium-singular policy applies.
func Resolve(mentions []offer.PriceMention, discountSignal bool, cfg Config) (Resolution, error) {
	if cfg.MinCents == 0 && cfg.MaxCents == 0 {
		def := DefaultConfig()
		cfg.MinCents, cfg.MaxCents = def.MinCents, def.MaxCents
	}

	values := []int64{}
	struck := map[int64]bool{}
	for _, m := range mentions {
		if m.Cents < cfg.MinCents || m.Cents > cfg.MaxCents {
			continue
		}
		if slices.Contains(cfg.NoiseCents, m.Cents) {
			continue
		}
		if !slices.Contains(values, m.Cents) {
			values = append(values, m.Cents)
		}
		if m.Struck {
			struck[m.Cents] = true
			discountSignal = true
		}
	}
	slices.Sort(values)

	switch len(values) {
	case 0:
		return Resolution{}, &Error{Reason: ReasonNoValidPrice}
	case 1:
		return Resolution{PriceCents: values[0]}, nil
	}

	if !discountSignal {
		highest := values[len(values)-1]
		if cfg.PremiumSingularCents > 0 && highest >= cfg.PremiumSingularCents {
			return Resolution{PriceCents: highest}, nil
		}
		return Resolution{}, &Error{Reason: ReasonAmbiguousPriceSet}
	}

	current := values[0]
	regular := regularFor(values, struck, current)

	res := Resolution{PriceCents: current, RegularCents: &regular}
	percent := DiscountPercent(regular, current)
	if percent >= cfg.MinDiscountPercent {
		res.DiscountPercent = &percent
	}
	return res, nil
}

// regularFor picks the regular price for a sale at current: the lowest
// struck value above it when strikethrough told us which one is the old
// price, otherwise the next distinguishable higher value.
func regularFor(sorted []int64, struck map[int64]bool, current int64) int64 {
	for _, v := range sorted {
		if v > current && struck[v] {
			return v
		}
	}
	for _, v := range sorted {
		if v > current {
			return v
		}
	}
	return current
}

// DiscountPercent is (regular - current) / regular rounded to the nearest
// whole percent.
func DiscountPercent(regular, current int64) int {
	if regular <= 0 || current >= regular {
		return 0
	}
	return int(math.Round(float64(regular-current) / float64(regular) * 100))
}
