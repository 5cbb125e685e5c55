package updater_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cigarpricescout/cigar-price-scout/lib/csvstore"
	"github.com/cigarpricescout/cigar-price-scout/lib/fetch"
	"github.com/cigarpricescout/cigar-price-scout/lib/history"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/pricing"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers/hilands"
	"github.com/cigarpricescout/cigar-price-scout/lib/testutil"
	"github.com/cigarpricescout/cigar-price-scout/services/updater"
)

const productPage = `<html><body>
<div class="summary">
  <h1 class="product_title">Test Cigar (6x52 / Box of 25)</h1>
  <p class="price">
    <del><span class="woocommerce-Price-amount">$186.40</span></del>
    <ins><span class="woocommerce-Price-amount">$139.80</span></ins>
  </p>
  <button type="submit" class="single_add_to_cart_button">Add to cart</button>
</div>
</body></html>`

const emptyPage = `<html><body><div class="summary"><h1>Gone</h1></div></body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/broken") {
			fmt.Fprint(w, emptyPage)
			return
		}
		fmt.Fprint(w, productPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHistoryStore(t *testing.T) history.Store {
	testutil.Setup(t, "services/updater")
	return history.NewStore(testutil.TempSQLite(t, history.Schema))
}

func seedStore(t *testing.T, dir, source string, offers int, serverURL string) {
	var b strings.Builder
	b.WriteString("cigar_id,url,promo_note\n")
	for i := 1; i <= offers; i++ {
		path := fmt.Sprintf("/product-%d", i)
		if i == offers {
			path += "/broken"
		}
		fmt.Fprintf(&b, "CID%d,%s%s,note-%d\n", i, serverURL, path, i)
	}
	err := os.WriteFile(filepath.Join(dir, source+".csv"), []byte(b.String()), 0o644)
	if err != nil {
		t.Fatal(err)
	}
}

type captureNotifier struct {
	report *updater.Report
}

func (n *captureNotifier) Notify(ctx context.Context, report updater.Report) error {
	n.report = &report
	return nil
}

func TestRunIsolatesOfferFailures(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()
	seedStore(t, dir, "hilands", 20, srv.URL)
	hist := newHistoryStore(t)
	notifier := &captureNotifier{}

	svc := updater.NewService(updater.Options{
		Store:    csvstore.Store{Dir: dir},
		Registry: scrapers.NewRegistry(hilands.New()),
		History:  hist,
		Fetch:    fetch.Options{Delay: time.Millisecond},
		Pricing:  pricing.DefaultConfig(),
		Notifier: notifier,
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sources, 1)

	sr := report.Sources[0]
	require.Equal(t, updater.StatusOk, sr.Status)
	require.Equal(t, 19, sr.Processed)
	require.Equal(t, 1, sr.Failed)
	require.Len(t, sr.Failures, 1)
	require.Equal(t, "CID20", sr.Failures[0].ProductID)
	require.Equal(t, 19, sr.Changes)

	// merged rows carry the new price, the failed row keeps its seed data
	table, err := csvstore.Store{Dir: dir}.Load("hilands")
	require.NoError(t, err)
	row, ok := table.Row("CID1")
	require.True(t, ok)
	require.Equal(t, "139.80", row["price"])
	require.Equal(t, "note-1", row["promo_note"])

	failedRow, ok := table.Row("CID20")
	require.True(t, ok)
	require.Empty(t, failedRow["price"])
	require.Equal(t, "note-20", failedRow["promo_note"])

	// one new_offer event per successful merge
	events, err := hist.Query(context.Background(), offer.Identity{Source: "hilands", ProductID: "CID1"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, offer.ChangeNewOffer, events[0].Kind)

	require.NotNil(t, notifier.report)
	require.Contains(t, notifier.report.Render(), "hilands")

	// the pre-write backup exists
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	backups := 0
	for _, e := range entries {
		if strings.Contains(e.Name(), "_backup_") {
			backups++
		}
	}
	require.Equal(t, 1, backups)
}

func TestRunSecondPassEmitsNoEvents(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()
	seedStore(t, dir, "hilands", 3, srv.URL)
	hist := newHistoryStore(t)

	svc := updater.NewService(updater.Options{
		Store:    csvstore.Store{Dir: dir},
		Registry: scrapers.NewRegistry(hilands.New()),
		History:  hist,
		Fetch:    fetch.Options{Delay: time.Millisecond},
		Pricing:  pricing.DefaultConfig(),
	})

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Sources[0].Changes)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, second.Sources[0].Changes)
	require.Equal(t, 2, second.Sources[0].Processed)
}

func TestRunDeadlineReportsNotAttempted(t *testing.T) {
	dir := t.TempDir()
	hist := newHistoryStore(t)

	svc := updater.NewService(updater.Options{
		Store:      csvstore.Store{Dir: dir},
		Registry:   scrapers.NewRegistry(hilands.New()),
		History:    hist,
		Pricing:    pricing.DefaultConfig(),
		RunTimeout: time.Nanosecond,
	})

	time.Sleep(time.Millisecond)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sources, 1)
	require.Equal(t, updater.StatusNotAttempted, report.Sources[0].Status)

	runs, err := hist.RecentRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestRunDeadlineCountsSkippedOffers(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		fmt.Fprint(w, productPage)
	}))
	t.Cleanup(slow.Close)

	dir := t.TempDir()
	seedStore(t, dir, "hilands", 3, slow.URL)
	hist := newHistoryStore(t)

	svc := updater.NewService(updater.Options{
		Store:      csvstore.Store{Dir: dir},
		Registry:   scrapers.NewRegistry(hilands.New()),
		History:    hist,
		Fetch:      fetch.Options{Delay: time.Millisecond},
		Pricing:    pricing.DefaultConfig(),
		RunTimeout: 500 * time.Millisecond,
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sources, 1)

	// every seeded offer shows up in the totals, none vanish when the
	// deadline clips the loop
	sr := report.Sources[0]
	require.Equal(t, 0, sr.Processed)
	require.Equal(t, 3, sr.Failed)
	require.Len(t, sr.Failures, 3)
	require.Contains(t, sr.Failures[2].Err, "not attempted")
}

func TestRunUnknownSourceFails(t *testing.T) {
	dir := t.TempDir()
	hist := newHistoryStore(t)

	svc := updater.NewService(updater.Options{
		Store:    csvstore.Store{Dir: dir},
		Registry: scrapers.NewRegistry(),
		History:  hist,
		Pricing:  pricing.DefaultConfig(),
		Sources:  []string{"famous"},
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, updater.StatusFailed, report.Sources[0].Status)
	require.Contains(t, report.Sources[0].Error, "no extractor")
}
