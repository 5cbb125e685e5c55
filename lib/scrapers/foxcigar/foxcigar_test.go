package foxcigar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers/foxcigar"
)

const cigarCountPage = `<html><body>
<div class="summary">
  <h1 class="product_title">Arturo Fuente Hemingway Classic</h1>
  <p class="price">
    <del><span class="woocommerce-Price-amount">$286.25</span></del>
    <ins><span class="woocommerce-Price-amount">$257.99</span></ins>
  </p>
  <div class="cigar-count">
    <label>Single - In stock</label>
    <label>5 Pack - In stock</label>
    <label>25ct Box - In stock</label>
  </div>
  <button class="single_add_to_cart_button">Add to cart</button>
</div>
</body></html>`

func TestExtractCigarCountPage(t *testing.T) {
	id := offer.Identity{Source: "foxcigar", ProductID: "CID1"}

	c, err := foxcigar.New().Extract(id, "https://example.com/hemingway-classic", []byte(cigarCountPage), time.Now())
	require.NoError(t, err)

	require.Equal(t, "Arturo Fuente Hemingway Classic", c.Title)
	require.Equal(t, []offer.PriceMention{
		{Cents: 28625, Struck: true},
		{Cents: 25799},
	}, c.Mentions)
	require.True(t, c.DiscountSignal)

	require.NotNil(t, c.BoxQty)
	require.Equal(t, 25, *c.BoxQty)
	require.NotNil(t, c.StructuredStock)
	require.True(t, *c.StructuredStock)
	require.Equal(t, "Add to cart", c.StockText)
}

const boxCountPage = `<html><body>
<div class="summary">
  <h1>Jaime Garcia Reserva Especial Super Gordo</h1>
  <p class="price"><span class="woocommerce-Price-amount">$195.00</span></p>
  <div class="box-count">Box Count: 20ct Box - Out of stock</div>
</div>
</body></html>`

func TestExtractBoxCountOutOfStock(t *testing.T) {
	c, err := foxcigar.New().Extract(offer.Identity{}, "https://example.com/super-gordo", []byte(boxCountPage), time.Now())
	require.NoError(t, err)

	require.Equal(t, []offer.PriceMention{{Cents: 19500}}, c.Mentions)
	require.NotNil(t, c.BoxQty)
	require.Equal(t, 20, *c.BoxQty)
	require.NotNil(t, c.StructuredStock)
	require.False(t, *c.StructuredStock)
}

const bareBoxPage = `<html><body>
<div class="summary">
  <h1>Padron PB-99 Natural</h1>
  <p class="price"><span class="woocommerce-Price-amount">$440.00</span></p>
  <div>10ct Box</div>
</div>
</body></html>`

func TestExtractBareBoxQuantity(t *testing.T) {
	c, err := foxcigar.New().Extract(offer.Identity{}, "https://example.com/pb-99", []byte(bareBoxPage), time.Now())
	require.NoError(t, err)
	require.False(t, c.DiscountSignal)
	require.NotNil(t, c.BoxQty)
	require.Equal(t, 10, *c.BoxQty)
	require.Nil(t, c.StructuredStock)
}

func TestExtractNoPrice(t *testing.T) {
	page := `<html><body><div class="summary"><h1>Sold out page</h1></div></body></html>`

	_, err := foxcigar.New().Extract(offer.Identity{}, "https://example.com/x", []byte(page), time.Now())
	var serr *scrapers.Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, scrapers.ReasonNoPriceFound, serr.Reason)
}
