package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./store.sqlite". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) { return sql.Open(DriverName, dsn) }

// OpenFile opens a file database with a busy timeout and verifies the
// connection, so an unwritable location fails here instead of on first use.
func OpenFile(path string) (*sql.DB, error) {
	db, err := Open(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("engine: open %s: %w", path, err)
	}
	return db, nil
}
