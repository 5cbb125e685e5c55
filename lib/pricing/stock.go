package pricing

import (
	"github.com/cigarpricescout/cigar-price-scout/lib/textutil"
)

// Phrase lists for text-based stock inference, matched case- and
// whitespace-insensitively against the primary product section.
var (
	outOfStockPhrases = []string{
		"out of stock",
		"sold out",
		"unavailable",
		"not available",
		"back order",
		"backordered",
		"discontinued",
	}
	inStockPhrases = []string{
		"add to cart",
		"add to bag",
		"add to basket",
		"buy now",
		"in stock",
	}
	notifyPhrases = []string{
		"notify me",
		"email me when",
		"notify when available",
		"join waitlist",
		"call for price",
	}
)

// InferStock decides availability for the primary product section.
// structured is the page's own machine-readable stock flag and wins outright
// when present. Text heuristics run in strict priority: an explicit
// out-of-stock phrase, then an explicit purchase affordance, then a weak
// notify-me affordance, then a conservative false — availability is never
// assumed without positive evidence.
func InferStock(primaryText string, structured *bool) bool {
	if structured != nil {
		return *structured
	}
	if textutil.ContainsAny(primaryText, outOfStockPhrases) {
		return false
	}
	if textutil.ContainsAny(primaryText, inStockPhrases) {
		return true
	}
	if textutil.ContainsAny(primaryText, notifyPhrases) {
		return false
	}
	return false
}
