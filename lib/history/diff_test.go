package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cigarpricescout/cigar-price-scout/lib/history"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

func record(priceCents int64, inStock bool) offer.Record {
	return offer.Record{
		Identity:      offer.Identity{Source: "hilands", ProductID: "CID1"},
		PriceCents:    &priceCents,
		InStock:       inStock,
		LastCheckedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestDiffNewOffer(t *testing.T) {
	current := record(13980, true)
	events := history.Diff(nil, current)
	require.Len(t, events, 1)
	require.Equal(t, offer.ChangeNewOffer, events[0].Kind)
	require.Equal(t, "price", events[0].Field)
	require.Equal(t, "13980", events[0].New)
	require.Equal(t, current.LastCheckedAt, events[0].ObservedAt)
}

func TestDiffNoChange(t *testing.T) {
	old := record(13980, true)
	require.Empty(t, history.Diff(&old, record(13980, true)))
}

func TestDiffPriceAndStock(t *testing.T) {
	old := record(18640, true)
	events := history.Diff(&old, record(13980, false))
	require.Len(t, events, 2)

	require.Equal(t, offer.ChangePriceDecrease, events[0].Kind)
	require.Equal(t, "18640", events[0].Old)
	require.Equal(t, "13980", events[0].New)

	require.Equal(t, offer.ChangeWentOutOfStock, events[1].Kind)
	require.Equal(t, "true", events[1].Old)
	require.Equal(t, "false", events[1].New)
}

func TestDiffPriceIncrease(t *testing.T) {
	old := record(13980, true)
	events := history.Diff(&old, record(18640, true))
	require.Len(t, events, 1)
	require.Equal(t, offer.ChangePriceIncrease, events[0].Kind)
}

func TestDiffUnknownPriceIsNotADelta(t *testing.T) {
	old := record(13980, true)
	current := record(0, true)
	current.PriceCents = nil
	require.Empty(t, history.Diff(&old, current))

	noPrice := record(0, false)
	noPrice.PriceCents = nil
	events := history.Diff(&noPrice, record(13980, false))
	require.Empty(t, events)
}
