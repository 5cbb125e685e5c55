// Package csvstore is the durable per-source record store. Each source
// owns one CSV file keyed by cigar_id; the pipeline overwrites only the
// columns it owns and carries every other column through untouched, so
// hand-maintained and downstream-added data survives every run.
package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

const keyColumn = "cigar_id"

// ownedColumns are the fields the pipeline writes. Everything else in a
// row is opaque and preserved verbatim.
var ownedColumns = []string{
	"title", "url", "price", "regular_price", "discount_percent",
	"in_stock", "box_qty", "last_checked_at",
}

var baseColumns = append([]string{keyColumn}, ownedColumns...)

type ErrorKind string

const (
	KindBackupFailed ErrorKind = "backup_failed"
	KindWriteFailed  ErrorKind = "write_failed"
	KindLocked       ErrorKind = "locked"
)

type Error struct {
	Kind ErrorKind
	Path string

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("csvstore: %s: %s: %v", e.Kind, e.Path, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Table is one source's record store held in memory: an ordered header
// plus rows in file order, indexed by cigar_id.
type Table struct {
	columns []string
	rows    []map[string]string
	index   map[string]int
}

// NewTable returns an empty table with the pipeline-owned header.
func NewTable() *Table {
	return &Table{
		columns: slices.Clone(baseColumns),
		index:   map[string]int{},
	}
}

// Load reads a source's CSV file. A missing file yields an empty table;
// the first run of a new source starts from nothing.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewTable(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return NewTable(), nil
	}

	t := &Table{columns: all[0], index: map[string]int{}}
	for _, raw := range all[1:] {
		row := map[string]string{}
		for i, col := range t.columns {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		t.rows = append(t.rows, row)
		if id := row[keyColumn]; id != "" {
			t.index[id] = len(t.rows) - 1
		}
	}
	return t, nil
}

// Len reports the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// IDs lists every cigar_id in row order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if id := row[keyColumn]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Row returns a copy of the stored row for an identifier.
func (t *Table) Row(id string) (map[string]string, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	row := map[string]string{}
	for k, v := range t.rows[i] {
		row[k] = v
	}
	return row, true
}

// ensureColumn appends a newly seen column to the header.
func (t *Table) ensureColumn(name string) {
	if !slices.Contains(t.columns, name) {
		t.columns = append(t.columns, name)
	}
}

// Merge writes one validated record into the table. An absent identity
// inserts a full new row. A present one gets only the owned columns
// overwritten, with two exceptions: title fills only an empty cell, and
// record extras fill only empty cells, so externally maintained values
// are never clobbered.
func (t *Table) Merge(rec offer.Record) {
	// seeded stores often start from a hand-written header (cigar_id,url);
	// the owned columns must exist before Save will emit their cells
	for _, col := range baseColumns {
		t.ensureColumn(col)
	}

	i, exists := t.index[rec.ProductID]
	if !exists {
		row := map[string]string{keyColumn: rec.ProductID}
		t.rows = append(t.rows, row)
		i = len(t.rows) - 1
		t.index[rec.ProductID] = i
	}
	row := t.rows[i]

	if row["title"] == "" {
		row["title"] = rec.Title
	}
	row["url"] = rec.URL
	row["price"] = centsField(rec.PriceCents)
	row["regular_price"] = centsField(rec.RegularCents)
	row["discount_percent"] = intField(rec.DiscountPercent)
	row["in_stock"] = boolField(rec.InStock)
	row["box_qty"] = intField(rec.BoxQty)
	row["last_checked_at"] = rec.LastCheckedAt.UTC().Format(time.RFC3339)

	for key, value := range rec.Extra {
		t.ensureColumn(key)
		if row[key] == "" {
			row[key] = value
		}
	}
}

// Record parses the stored row for an identifier back into a record.
// Unparseable numeric cells come back nil rather than failing a run.
func (t *Table) Record(source, id string) (offer.Record, bool) {
	i, ok := t.index[id]
	if !ok {
		return offer.Record{}, false
	}
	row := t.rows[i]

	rec := offer.Record{
		Identity: offer.Identity{Source: source, ProductID: id},
		Title:    row["title"],
		URL:      row["url"],
		InStock:  strings.EqualFold(row["in_stock"], "true"),
		Extra:    map[string]string{},
	}
	rec.PriceCents = parseCents(row["price"])
	rec.RegularCents = parseCents(row["regular_price"])
	rec.DiscountPercent = parseInt(row["discount_percent"])
	rec.BoxQty = parseInt(row["box_qty"])
	if ts, err := time.Parse(time.RFC3339, row["last_checked_at"]); err == nil {
		rec.LastCheckedAt = ts
	}
	for col, v := range row {
		if col != keyColumn && !slices.Contains(ownedColumns, col) {
			rec.Extra[col] = v
		}
	}
	return rec, true
}

// Save writes the table to disk through a temp file and rename, so a
// failed write never leaves a truncated store behind.
func (t *Table) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return &Error{Kind: KindWriteFailed, Path: path, cause: err}
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.columns); err != nil {
		tmp.Close()
		return &Error{Kind: KindWriteFailed, Path: path, cause: err}
	}
	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			cells[i] = row[col]
		}
		if err := w.Write(cells); err != nil {
			tmp.Close()
			return &Error{Kind: KindWriteFailed, Path: path, cause: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return &Error{Kind: KindWriteFailed, Path: path, cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Kind: KindWriteFailed, Path: path, cause: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &Error{Kind: KindWriteFailed, Path: path, cause: err}
	}
	return nil
}

// Backup copies the store file to <name>_backup_<timestamp>.csv beside
// it, before any write touches the original. A missing store file (first
// run) backs up nothing. Any other failure is fatal for the write that
// was about to happen.
func Backup(path string, now time.Time) (string, error) {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", &Error{Kind: KindBackupFailed, Path: path, cause: err}
	}
	defer src.Close()

	stamp := now.Format("20060102_150405")
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	backupPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s_backup_%s.csv", base, stamp))

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", &Error{Kind: KindBackupFailed, Path: path, cause: err}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", &Error{Kind: KindBackupFailed, Path: path, cause: err}
	}
	if err := dst.Close(); err != nil {
		return "", &Error{Kind: KindBackupFailed, Path: path, cause: err}
	}
	return backupPath, nil
}

func centsField(cents *int64) string {
	if cents == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*cents)/100, 'f', 2, 64)
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolField(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func parseCents(s string) *int64 {
	if s == "" {
		return nil
	}
	dollars, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil {
		return nil
	}
	cents := int64(dollars*100 + 0.5)
	return &cents
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
