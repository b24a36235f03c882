// Package persist stores and restores a snapshot of the embedding store: the
// row-major embedding matrix and its parallel metadata records. Two backends
// are provided:
//   - FileBackend: embeddings.bin plus a human-diffable metadata.json
//   - SQLiteBackend: a single SQLite database replaced in one transaction
package persist
