package scrapers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
)

func TestParsePrices(t *testing.T) {
	cents := scrapers.ParsePrices(`MSRP $186.40 Now $139.80 (was $1,250)`)
	require.Equal(t, []int64{18640, 13980, 125000}, cents)

	require.Empty(t, scrapers.ParsePrices("no prices here"))
}

func TestParsePrice(t *testing.T) {
	cents, ok := scrapers.ParsePrice("$ 186.4")
	require.True(t, ok)
	require.Equal(t, int64(18640), cents)

	_, ok = scrapers.ParsePrice("186.40")
	require.False(t, ok)
}

func TestBoxQtyFromText(t *testing.T) {
	for _, tt := range []struct {
		text string
		want int
	}{
		{"Padron 1964 Toro (6x52 / Box of 25)", 25},
		{"Arturo Fuente Cubanitos (Cube of 100)", 100},
		{"Hemingway Classic 25ct Box", 25},
		{"5 Pack", 0},
		{"Single", 0},
	} {
		qty := scrapers.BoxQtyFromText(tt.text)
		if tt.want == 0 {
			require.Nil(t, qty, tt.text)
		} else {
			require.NotNil(t, qty, tt.text)
			require.Equal(t, tt.want, *qty, tt.text)
		}
	}
}

func TestBoxQtyFromURL(t *testing.T) {
	qty := scrapers.BoxQtyFromURL("https://example.com/shop/fuente-y-padron-7x50-box-of-40/")
	require.NotNil(t, qty)
	require.Equal(t, 40, *qty)

	require.Nil(t, scrapers.BoxQtyFromURL("https://example.com/shop/don-carlos-robusto/"))
}

type fakeExtractor string

func (f fakeExtractor) Source() string { return string(f) }

func (f fakeExtractor) Extract(id offer.Identity, url string, body []byte, fetchedAt time.Time) (offer.RawCandidate, error) {
	return offer.RawCandidate{Identity: id}, nil
}

func TestRegistry(t *testing.T) {
	reg := scrapers.NewRegistry(fakeExtractor("holts"), fakeExtractor("foxcigar"), fakeExtractor("hilands"))

	require.Equal(t, []string{"foxcigar", "hilands", "holts"}, reg.Sources())

	e, ok := reg.Lookup("hilands")
	require.True(t, ok)
	require.Equal(t, "hilands", e.Source())

	_, ok = reg.Lookup("famous")
	require.False(t, ok)
}
