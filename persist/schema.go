package persist

import (
	"context"
	"database/sql"
)

const embeddingsSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
    position  INTEGER PRIMARY KEY,
    video_id  TEXT NOT NULL,
    meta      TEXT NOT NULL,
    embedding BLOB NOT NULL
);
`

// EnsureSchema creates the embeddings table in the provided database if it
// does not already exist. Rows are keyed by insertion position.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, embeddingsSchema)
	return err
}
