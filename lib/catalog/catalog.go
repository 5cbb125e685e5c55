// Package catalog holds the master cigar catalog: canonical product
// metadata keyed by catalog identifier. Scraped rows never define
// identity; they are matched and enriched against this data.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

// fuzzyWrapperThreshold is the minimum Jaro-Winkler similarity for a
// wrapper string to adopt an alias's canonical form.
const fuzzyWrapperThreshold = 0.92

// Entry is one master catalog row.
type Entry struct {
	Brand        string
	Line         string
	Vitola       string
	Length       string
	RingGauge    string
	Wrapper      string
	WrapperAlias string
	Binder       string
	Filler       string
	Strength     string
	BoxQuantity  string
	Shape        string
}

// Catalog indexes master entries by brand and carries the wrapper alias
// table built from them.
type Catalog struct {
	byBrand map[string][]Entry
	aliases map[string]string
}

// industry-wide wrapper aliases, applied on top of whatever the master
// data declares.
var commonWrapperAliases = map[string]string{
	"natural":                "Connecticut Shade",
	"connecticut":            "Connecticut Shade",
	"conn":                   "Connecticut Shade",
	"ct":                     "Connecticut Shade",
	"shade":                  "Connecticut Shade",
	"shade grown":            "Connecticut Shade",
	"ecuador connecticut":    "Connecticut Shade",
	"ecuadorian connecticut": "Connecticut Shade",
	"maduro":                 "Connecticut Broadleaf",
	"connecticut broadleaf":  "Connecticut Broadleaf",
	"broadleaf":              "Connecticut Broadleaf",
	"habano":                 "Nicaraguan Habano",
	"nicaraguan":             "Nicaraguan Habano",
	"nicaraguan habano":      "Nicaraguan Habano",
	"ecuadorian habano":      "Ecuadorian Habano",
	"ecuador habano":         "Ecuadorian Habano",
	"sun grown":              "Ecuadorian Sungrown",
	"sungrown":               "Ecuadorian Sungrown",
	"ecuadorian sungrown":    "Ecuadorian Sungrown",
	"cameroon":               "Cameroon",
	"corojo":                 "Honduran Corojo",
	"honduran corojo":        "Honduran Corojo",
	"san andres":             "Mexican San Andres",
	"mexican san andres":     "Mexican San Andres",
	"mexican":                "Mexican San Andres",
}

// New builds a catalog from master entries.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		byBrand: map[string][]Entry{},
		aliases: map[string]string{},
	}
	for _, e := range entries {
		c.byBrand[e.Brand] = append(c.byBrand[e.Brand], e)
		if e.Wrapper != "" {
			c.aliases[strings.ToLower(e.Wrapper)] = e.Wrapper
			if e.WrapperAlias != "" {
				c.aliases[strings.ToLower(e.WrapperAlias)] = e.Wrapper
			}
		}
	}
	for alias, canonical := range commonWrapperAliases {
		c.aliases[alias] = canonical
	}
	return c
}

// LoadTSV reads the master catalog from a tab-separated file with a
// header row.
func LoadTSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master catalog: %w", err)
	}
	if len(rows) == 0 {
		return New(nil), nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, Entry{
			Brand:        field(row, "Brand"),
			Line:         field(row, "Line"),
			Vitola:       field(row, "Vitola"),
			Length:       field(row, "Length"),
			RingGauge:    field(row, "Ring Gauge"),
			Wrapper:      field(row, "Wrapper"),
			WrapperAlias: field(row, "Wrapper_Alias"),
			Binder:       field(row, "Binder"),
			Filler:       field(row, "Filler"),
			Strength:     field(row, "Strength"),
			BoxQuantity:  field(row, "Box Quantity"),
			Shape:        field(row, "Shape"),
		})
	}
	return New(entries), nil
}

// NormalizeWrapper maps a scraped wrapper string onto its canonical
// name: exact alias lookup first, then a fuzzy pass over the alias
// table. Unknown wrappers come back unchanged.
func (c *Catalog) NormalizeWrapper(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" || cleaned == "unknown" {
		return raw
	}
	if canonical, ok := c.aliases[cleaned]; ok {
		return canonical
	}

	best := ""
	bestScore := fuzzyWrapperThreshold
	for alias, canonical := range c.aliases {
		score := matchr.JaroWinkler(cleaned, alias, false)
		if score > bestScore {
			bestScore = score
			best = canonical
		}
	}
	if best != "" {
		return best
	}
	return raw
}

// Match narrows the brand's entries by line, wrapper and vitola in
// turn, skipping any filter that would eliminate every entry, and
// returns the first survivor.
func (c *Catalog) Match(brand, line, wrapper, vitola string) (Entry, bool) {
	entries := c.byBrand[brand]
	if len(entries) == 0 {
		return Entry{}, false
	}

	narrow := func(keep func(Entry) bool) {
		var filtered []Entry
		for _, e := range entries {
			if keep(e) {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) > 0 {
			entries = filtered
		}
	}

	if line != "" {
		narrow(func(e Entry) bool { return e.Line == line })
	}
	if wrapper != "" {
		canonical := c.NormalizeWrapper(wrapper)
		narrow(func(e Entry) bool {
			return e.Wrapper == canonical || e.WrapperAlias == canonical
		})
	}
	if vitola != "" {
		narrow(func(e Entry) bool { return e.Vitola == vitola })
	}
	return entries[0], true
}

// Enrich canonicalizes a record's wrapper column and fills empty
// construction columns from the master entry matched by its brand, line,
// wrapper and vitola. Populated cells are left alone, the master data
// only ever supplements what a page actually said.
func (c *Catalog) Enrich(rec *offer.Record) {
	if rec.Extra == nil {
		rec.Extra = map[string]string{}
	}
	if rec.Extra["wrapper"] != "" {
		rec.Extra["wrapper"] = c.NormalizeWrapper(rec.Extra["wrapper"])
	}

	entry, ok := c.Match(rec.Extra["brand"], rec.Extra["line"], rec.Extra["wrapper"], rec.Extra["vitola"])
	if !ok {
		return
	}
	setIfEmpty := func(key, value string) {
		if value != "" && rec.Extra[key] == "" {
			rec.Extra[key] = value
		}
	}
	setIfEmpty("length", entry.Length)
	setIfEmpty("ring_gauge", entry.RingGauge)
	setIfEmpty("strength", entry.Strength)
	setIfEmpty("binder", entry.Binder)
	setIfEmpty("filler", entry.Filler)
	setIfEmpty("shape", entry.Shape)
}

// Backfill fills empty metadata columns on a record from its catalog
// identifier. Populated columns are left alone; scraped values always
// win over derived ones.
func Backfill(rec *offer.Record) error {
	cid, err := ParseCID(rec.ProductID)
	if err != nil {
		return err
	}

	if rec.Extra == nil {
		rec.Extra = map[string]string{}
	}
	setIfEmpty := func(key, value string) {
		if rec.Extra[key] == "" {
			rec.Extra[key] = value
		}
	}
	setIfEmpty("brand", cid.BrandName())
	setIfEmpty("line", cid.LineName())
	setIfEmpty("wrapper", cid.WrapperName())
	setIfEmpty("vitola", cid.VitolaName())
	setIfEmpty("size", cid.Size)

	if rec.Title == "" {
		rec.Title = cid.VitolaName()
	}
	return nil
}
