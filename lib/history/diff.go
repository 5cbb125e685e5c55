// Package history tracks how offers change between runs: a pure diff over
// successive records, and an append-only sqlite store for the resulting
// events and run summaries.
package history

import (
	"strconv"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

// Diff compares the previously stored record (nil when the offer is new)
// against the freshly written one. A new offer yields exactly one
// new_offer event; known offers yield one event per changed field and
// none when nothing changed. Price events require both values to be
// known, a price appearing or vanishing is not a delta.
func Diff(old *offer.Record, current offer.Record) []offer.ChangeEvent {
	if old == nil {
		return []offer.ChangeEvent{{
			Identity:   current.Identity,
			ObservedAt: current.LastCheckedAt,
			Field:      "price",
			New:        centsString(current.PriceCents),
			Kind:       offer.ChangeNewOffer,
		}}
	}

	var events []offer.ChangeEvent

	if old.PriceCents != nil && current.PriceCents != nil && *old.PriceCents != *current.PriceCents {
		kind := offer.ChangePriceIncrease
		if *current.PriceCents < *old.PriceCents {
			kind = offer.ChangePriceDecrease
		}
		events = append(events, offer.ChangeEvent{
			Identity:   current.Identity,
			ObservedAt: current.LastCheckedAt,
			Field:      "price",
			Old:        centsString(old.PriceCents),
			New:        centsString(current.PriceCents),
			Kind:       kind,
		})
	}

	if old.InStock != current.InStock {
		kind := offer.ChangeWentInStock
		if !current.InStock {
			kind = offer.ChangeWentOutOfStock
		}
		events = append(events, offer.ChangeEvent{
			Identity:   current.Identity,
			ObservedAt: current.LastCheckedAt,
			Field:      "in_stock",
			Old:        strconv.FormatBool(old.InStock),
			New:        strconv.FormatBool(current.InStock),
			Kind:       kind,
		})
	}

	return events
}

func centsString(cents *int64) string {
	if cents == nil {
		return ""
	}
	return strconv.FormatInt(*cents, 10)
}
