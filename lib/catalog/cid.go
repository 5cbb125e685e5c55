package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// CID is the parsed form of a catalog identifier:
// BRAND|BRAND|LINE|VITOLA|VITOLA|SIZE|WRAPPER|PACKAGING.
// The second brand and vitola components are display duplicates and are
// not carried separately.
type CID struct {
	Brand     string
	Line      string
	Vitola    string
	Size      string
	Wrapper   string
	Packaging string
}

// ParseCID splits a catalog identifier into its components. Identifiers
// come from the master catalog, never from scraped pages.
func ParseCID(id string) (CID, error) {
	parts := strings.Split(id, "|")
	if len(parts) < 8 {
		return CID{}, fmt.Errorf("catalog id %q: want 8 components, got %d", id, len(parts))
	}
	return CID{
		Brand:     parts[0],
		Line:      parts[2],
		Vitola:    parts[3],
		Size:      parts[5],
		Wrapper:   parts[6],
		Packaging: parts[7],
	}, nil
}

// BoxQty reads the unit count out of the packaging component
// (BOX25, PACK5, SINGLE).
func (c CID) BoxQty() (int, bool) {
	for _, prefix := range []string{"BOX", "PACK"} {
		if rest, ok := strings.CutPrefix(c.Packaging, prefix); ok {
			n, err := strconv.Atoi(rest)
			if err != nil || n <= 0 {
				return 0, false
			}
			return n, true
		}
	}
	if c.Packaging == "SINGLE" {
		return 1, true
	}
	return 0, false
}

var brandNames = map[string]string{
	"ARTUROFUENTE":    "Arturo Fuente",
	"ROMEOYJULIETA":   "Romeo y Julieta",
	"HOYODEMONTERREY": "Hoyo de Monterrey",
	"MYFATHER":        "My Father",
}

var lineNames = map[string]string{
	"1964ANNIVERSARY":                 "1964 Anniversary",
	"RESERVE10THANNIVERSARYCHAMPAGNE": "Reserve 10th Anniversary Champagne",
}

var wrapperCodes = map[string]string{
	"CAM": "Cameroon",
	"CT":  "Connecticut Shade",
	"MAD": "Maduro",
	"ECU": "Ecuadorian Connecticut",
	"IND": "Indonesian Shade Grown TBN",
}

// BrandName expands the brand code into its display form.
func (c CID) BrandName() string {
	if name, ok := brandNames[c.Brand]; ok {
		return name
	}
	return titleCase(c.Brand)
}

// LineName expands the line code into its display form.
func (c CID) LineName() string {
	if name, ok := lineNames[c.Line]; ok {
		return name
	}
	return titleCase(c.Line)
}

// WrapperName expands the wrapper code into its display form.
func (c CID) WrapperName() string {
	if name, ok := wrapperCodes[c.Wrapper]; ok {
		return name
	}
	return c.Wrapper
}

// VitolaName gives the display form of the vitola component.
func (c CID) VitolaName() string {
	name := titleCase(c.Vitola)
	if name == "Bestseller" {
		return "Best Seller"
	}
	return name
}

// titleCase uppercases the first rune of each space-separated word and
// lowercases the rest. Codes are ASCII by construction.
func titleCase(code string) string {
	words := strings.Fields(strings.ToLower(code))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
