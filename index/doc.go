// Package index defines a minimal abstraction for exact vector indexes that
// are fed embeddings in insertion order and queried for the top-k most
// cosine-similar positions.
package index
