// Package scrapers defines the per-retailer extraction contract and the
// registry the orchestrator dispatches through. Each retailer lives in
// its own subpackage and encodes that one site's page structure; adding
// a retailer is a new package plus a registry entry, never a change to
// shared code.
package scrapers

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

type Reason string

const (
	ReasonNoPriceFound  Reason = "no_price_found"
	ReasonMalformedPage Reason = "malformed_page"
)

type Error struct {
	Reason Reason
	Source string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Source, e.Reason, e.cause)
	}
	return fmt.Sprintf("extract %s: %s", e.Source, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError builds an extraction error for a source.
func NewError(source string, reason Reason, cause error) *Error {
	return &Error{Reason: reason, Source: source, cause: cause}
}

// Extractor maps one fetched page body into a raw candidate for one
// offer. Implementations are pure with respect to the body: no network,
// no shared state.
type Extractor interface {
	Source() string
	Extract(id offer.Identity, url string, body []byte, fetchedAt time.Time) (offer.RawCandidate, error)
}

// Registry is the fixed source_id -> extractor mapping for a run.
type Registry struct {
	extractors map[string]Extractor
}

func NewRegistry(extractors ...Extractor) Registry {
	m := make(map[string]Extractor, len(extractors))
	for _, e := range extractors {
		m[e.Source()] = e
	}
	return Registry{extractors: m}
}

func (r Registry) Lookup(source string) (Extractor, bool) {
	e, ok := r.extractors[source]
	return e, ok
}

// Sources lists registered source ids in sorted order.
func (r Registry) Sources() []string {
	sources := make([]string, 0, len(r.extractors))
	for s := range r.extractors {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

var priceRe = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// ParsePrices pulls every dollar amount out of a text fragment, in
// currency minor units, in order of appearance.
func ParsePrices(text string) []int64 {
	var cents []int64
	for _, m := range priceRe.FindAllStringSubmatch(text, -1) {
		if v, ok := parseCents(m[1]); ok {
			cents = append(cents, v)
		}
	}
	return cents
}

// ParsePrice returns the first dollar amount in a text fragment.
func ParsePrice(text string) (int64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseCents(m[1])
}

func parseCents(amount string) (int64, bool) {
	var digits []byte
	decimals := -1
	for i := 0; i < len(amount); i++ {
		switch c := amount[i]; {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
			if decimals >= 0 {
				decimals++
			}
		case c == '.':
			decimals = 0
		}
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, false
	}
	switch decimals {
	case 0, -1:
		return n * 100, true
	case 1:
		return n * 10, true
	case 2:
		return n, true
	}
	return 0, false
}

var (
	boxOfRe  = regexp.MustCompile(`(?i)(?:box|cube|pack)\s+of\s+(\d+)\)?`)
	countRe  = regexp.MustCompile(`(?i)\b(\d+)\s*ct\b`)
	urlQtyRe = regexp.MustCompile(`(?i)(?:box|cube|pack)-of-(\d+)`)
)

// BoxQtyFromText finds a box quantity in a title or option label:
// "Box of 25", "Cube of 100", "25ct". Values of five or below are
// single and sampler noise, not box counts.
func BoxQtyFromText(text string) *int {
	for _, re := range []*regexp.Regexp{boxOfRe, countRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if qty, err := strconv.Atoi(m[1]); err == nil && qty > 5 {
				return &qty
			}
		}
	}
	return nil
}

// BoxQtyFromURL finds a quantity encoded in a product URL segment, e.g.
// fuente-y-padron-7x50-box-of-40.
func BoxQtyFromURL(url string) *int {
	if m := urlQtyRe.FindStringSubmatch(url); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil && qty > 5 {
			return &qty
		}
	}
	return nil
}
