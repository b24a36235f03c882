// Package vector holds the numeric building blocks of the video embedding
// store. It includes:
//   - Embedding validation (empty, non-finite, zero-norm, dimension checks)
//   - Norm, normalization and distance functions
//   - Embedding encoding (BLOB) and the row-major matrix file format
package vector
