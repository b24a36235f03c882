// Package store implements the video embedding store: an append-only matrix
// of fixed-dimension embeddings with parallel metadata records, mirrored to a
// persistence backend after every add and searched by exact cosine
// similarity.
//
// A Store is an ordinary value owned by its caller. Several stores, each with
// its own directory, can live in one process.
package store
