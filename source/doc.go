// Package source defines where embeddings come from: an EmbeddingSource
// delivers the finished embeddings of a video task, a QuerySource turns search
// text into a query vector. Implementations live in subpackages.
package source
