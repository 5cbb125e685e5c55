// Package offer holds the canonical product-offer records that flow through
// the pricing pipeline: the ephemeral extraction candidate, the persisted
// record, and the change events produced by diffing successive records.
package offer

import "time"

// Identity is the composite key for one product's availability at one
// retailer. ProductID is the catalog CID assigned by the master catalog,
// it is never invented by the pipeline.
type Identity struct {
	Source    string
	ProductID string
}

func (id Identity) String() string {
	return id.Source + "/" + id.ProductID
}

// PriceMention is one price-like token found on a page, in currency minor
// units. Struck marks values rendered with strikethrough or an explicit
// "regular price" label.
type PriceMention struct {
	Cents  int64
	Struck bool
}

// RawCandidate is the unvalidated output of one extractor run against one
// fetched page. It lives for a single fetch cycle and is consumed by
// normalization immediately.
//
// Absence is explicit: no mentions means no price was found, a nil
// StructuredStock means the page carried no machine-readable stock flag.
type RawCandidate struct {
	Identity
	URL   string
	Title string

	Mentions []PriceMention
	// DiscountSignal is true when the page carries an explicit discount
	// marker: strikethrough markup, "you save", a "regular price" label.
	DiscountSignal bool
	// StructuredStock is the page's own machine-readable stock flag
	// (schema.org availability and the like), when present and parseable.
	StructuredStock *bool
	// StockText is the text of the primary product section, used for
	// phrase-based stock inference when StructuredStock is nil.
	StockText string

	BoxQty    *int
	FetchedAt time.Time
}

// Record is the validated, persisted representation of an offer's current
// price and stock state.
type Record struct {
	Identity
	Title string
	URL   string

	// PriceCents and RegularCents are currency minor units, nil when
	// unknown. DiscountPercent is nil unless a discount passed the
	// minimum threshold.
	PriceCents      *int64
	RegularCents    *int64
	DiscountPercent *int

	InStock       bool
	BoxQty        *int
	LastCheckedAt time.Time

	// Extra carries every stored field the pipeline does not interpret.
	// Merge preserves these verbatim; promotional annotations and
	// hand-entered columns live here.
	Extra map[string]string
}

type ChangeKind string

const (
	ChangePriceIncrease  ChangeKind = "price_increase"
	ChangePriceDecrease  ChangeKind = "price_decrease"
	ChangeWentInStock    ChangeKind = "went_in_stock"
	ChangeWentOutOfStock ChangeKind = "went_out_of_stock"
	ChangeNewOffer       ChangeKind = "new_offer"
)

// ChangeEvent records one field transition between two successive records
// for the same identity. Events are append-only and never mutated.
type ChangeEvent struct {
	Identity
	ObservedAt time.Time
	Field      string
	Old        string
	New        string
	Kind       ChangeKind
}
