// Package sqldb opens the history database from configuration. Local files
// use the embedded sqlite driver; a url switches to the libsql client so the
// same config struct can point at a hosted replica.
package sqldb

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Struct struct {
	// File is a path to a local sqlite database.
	File string `json:"file"`
	// Url is a libsql url (libsql://... or https://...), used when File
	// is empty.
	Url string `json:"url"`
}

func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	if config.File == "" && config.Url == "" {
		return nil, fmt.Errorf("a database path or url was not specified")
	}

	if config.Url != "" {
		db, err := sql.Open("libsql", config.Url)
		if err != nil {
			return nil, err
		}
		_, err = db.Exec(schema)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	_, statErr := os.Stat(config.File)
	if os.IsNotExist(statErr) {
		f, err := os.Create(config.File)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}
