// Package bruteforce provides an exact vector index that answers top-k
// queries by scanning every unit-normalized row and scoring it with a dot
// product, which equals cosine similarity for unit vectors.
package bruteforce
