package csvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store manages the per-source CSV files under one directory.
type Store struct {
	Dir string
}

func (s Store) path(source string) string {
	return filepath.Join(s.Dir, source+".csv")
}

// Load reads the record table for a source.
func (s Store) Load(source string) (*Table, error) {
	return Load(s.path(source))
}

// Backup snapshots a source's current store file.
func (s Store) Backup(source string, now time.Time) (string, error) {
	return Backup(s.path(source), now)
}

// Save writes a source's table back to the store.
func (s Store) Save(source string, t *Table) error {
	return t.Save(s.path(source))
}

// Lock takes the advisory run lock for a source. Two overlapping runs
// against the same store would interleave the backup and merge sequence,
// so a second caller gets a locked error until the first releases. A
// crash leaves the lock file behind; the pid inside identifies the
// stale owner.
func (s Store) Lock(source string) (release func(), err error) {
	path := filepath.Join(s.Dir, source+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &Error{Kind: KindLocked, Path: path, cause: err}
		}
		return nil, &Error{Kind: KindWriteFailed, Path: path, cause: err}
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return func() { os.Remove(path) }, nil
}
