package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cigarpricescout/cigar-price-scout/lib/catalog"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

func TestParseCID(t *testing.T) {
	cid, err := catalog.ParseCID("ARTUROFUENTE|ARTUROFUENTE|HEMINGWAY|SHORTSTORY|SHORTSTORY|4x49|CAM|BOX25")
	require.NoError(t, err)
	require.Equal(t, "ARTUROFUENTE", cid.Brand)
	require.Equal(t, "HEMINGWAY", cid.Line)
	require.Equal(t, "SHORTSTORY", cid.Vitola)
	require.Equal(t, "4x49", cid.Size)
	require.Equal(t, "CAM", cid.Wrapper)
	require.Equal(t, "BOX25", cid.Packaging)

	_, err = catalog.ParseCID("PADRON|1964|TORO")
	require.Error(t, err)
}

func TestCIDBoxQty(t *testing.T) {
	for _, tt := range []struct {
		packaging string
		qty       int
		ok        bool
	}{
		{"BOX25", 25, true},
		{"BOX10", 10, true},
		{"PACK5", 5, true},
		{"SINGLE", 1, true},
		{"BOXJUNK", 0, false},
		{"", 0, false},
	} {
		cid := catalog.CID{Packaging: tt.packaging}
		qty, ok := cid.BoxQty()
		require.Equal(t, tt.ok, ok, tt.packaging)
		if ok {
			require.Equal(t, tt.qty, qty, tt.packaging)
		}
	}
}

func TestCIDDisplayNames(t *testing.T) {
	cid := catalog.CID{
		Brand:   "ROMEOYJULIETA",
		Line:    "1875",
		Vitola:  "BESTSELLER",
		Wrapper: "CT",
	}
	require.Equal(t, "Romeo y Julieta", cid.BrandName())
	require.Equal(t, "1875", cid.LineName())
	require.Equal(t, "Best Seller", cid.VitolaName())
	require.Equal(t, "Connecticut Shade", cid.WrapperName())

	unknown := catalog.CID{Brand: "OLIVA", Line: "SERIE V", Wrapper: "Sumatra"}
	require.Equal(t, "Oliva", unknown.BrandName())
	require.Equal(t, "Serie V", unknown.LineName())
	require.Equal(t, "Sumatra", unknown.WrapperName())
}

func newTestCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{
			Brand: "Ashton", Line: "Classic", Vitola: "Cordial",
			Length: "5", RingGauge: "42",
			Wrapper: "Connecticut Shade", WrapperAlias: "Natural",
			BoxQuantity: "25",
		},
		{
			Brand: "Oliva", Line: "Serie V", Vitola: "Robusto",
			Length: "5", RingGauge: "54",
			Wrapper: "Ecuadorian Sungrown", WrapperAlias: "Sun Grown",
			BoxQuantity: "24",
		},
		{
			Brand: "Oliva", Line: "Serie V", Vitola: "Torpedo",
			Length: "6", RingGauge: "56",
			Wrapper: "Ecuadorian Sungrown", WrapperAlias: "Sun Grown",
			BoxQuantity: "24",
		},
	})
}

func TestNormalizeWrapper(t *testing.T) {
	c := newTestCatalog()

	require.Equal(t, "Connecticut Shade", c.NormalizeWrapper("Natural"))
	require.Equal(t, "Connecticut Shade", c.NormalizeWrapper("  CONNECTICUT "))
	require.Equal(t, "Ecuadorian Sungrown", c.NormalizeWrapper("sun grown"))

	// close misspelling resolves through the fuzzy pass
	require.Equal(t, "Connecticut Shade", c.NormalizeWrapper("connecticutt"))

	// nothing close: passes through untouched
	require.Equal(t, "Candela", c.NormalizeWrapper("Candela"))
	require.Equal(t, "Unknown", c.NormalizeWrapper("Unknown"))
}

func TestMatch(t *testing.T) {
	c := newTestCatalog()

	e, ok := c.Match("Oliva", "Serie V", "Sun Grown", "Torpedo")
	require.True(t, ok)
	require.Equal(t, "Torpedo", e.Vitola)
	require.Equal(t, "56", e.RingGauge)

	// unmatched vitola filter is skipped rather than eliminating the brand
	e, ok = c.Match("Oliva", "Serie V", "", "Churchill")
	require.True(t, ok)
	require.Equal(t, "Robusto", e.Vitola)

	_, ok = c.Match("Padron", "", "", "")
	require.False(t, ok)
}

func TestEnrich(t *testing.T) {
	c := newTestCatalog()

	rec := offer.Record{
		Identity: offer.Identity{Source: "hilands", ProductID: "CID1"},
		Extra: map[string]string{
			"brand":      "Oliva",
			"line":       "Serie V",
			"wrapper":    "sun grown",
			"vitola":     "Torpedo",
			"ring_gauge": "57",
		},
	}
	c.Enrich(&rec)

	require.Equal(t, "Ecuadorian Sungrown", rec.Extra["wrapper"])
	require.Equal(t, "6", rec.Extra["length"])
	// the scraped cell wins over master data
	require.Equal(t, "57", rec.Extra["ring_gauge"])

	// unknown brand: wrapper still canonicalized, nothing else added
	rec2 := offer.Record{Extra: map[string]string{"brand": "Padron", "wrapper": "Natural"}}
	c.Enrich(&rec2)
	require.Equal(t, "Connecticut Shade", rec2.Extra["wrapper"])
	require.Empty(t, rec2.Extra["length"])
}

func TestBackfill(t *testing.T) {
	rec := offer.Record{
		Identity: offer.Identity{
			Source:    "holts",
			ProductID: "ARTUROFUENTE|ARTUROFUENTE|HEMINGWAY|SHORTSTORY|SHORTSTORY|4x49|CAM|BOX25",
		},
		Extra: map[string]string{"brand": "Arturo Fuente", "notes": "house favorite"},
	}

	require.NoError(t, catalog.Backfill(&rec))

	require.Equal(t, "Arturo Fuente", rec.Extra["brand"])
	require.Equal(t, "Hemingway", rec.Extra["line"])
	require.Equal(t, "Cameroon", rec.Extra["wrapper"])
	require.Equal(t, "Shortstory", rec.Extra["vitola"])
	require.Equal(t, "4x49", rec.Extra["size"])
	require.Equal(t, "house favorite", rec.Extra["notes"])
	require.Equal(t, "Shortstory", rec.Title)

	bad := offer.Record{Identity: offer.Identity{ProductID: "not-a-cid"}}
	require.Error(t, catalog.Backfill(&bad))
}
