package vector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// matrixMagic prefixes every encoded matrix so foreign files are rejected
// instead of being read as garbage floats.
var matrixMagic = [4]byte{'V', 'S', 'E', 'M'}

const (
	matrixVersion    = 1
	matrixHeaderSize = 16
)

// ErrInvalidMatrix reports a matrix blob that cannot be decoded.
var ErrInvalidMatrix = errors.New("vector: invalid matrix data")

// MarshalMatrix stores: magic[4], version(uint32), dim(uint32), rows(uint32),
// then rows*dim float32 values in row-major order. An empty matrix is written
// with dim=0 and rows=0.
func MarshalMatrix(dim int, rows [][]float32) ([]byte, error) {
	if len(rows) == 0 {
		dim = 0
	}
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(r), dim)
		}
	}
	out := make([]byte, matrixHeaderSize+4*dim*len(rows))
	copy(out[0:4], matrixMagic[:])
	binary.LittleEndian.PutUint32(out[4:8], matrixVersion)
	binary.LittleEndian.PutUint32(out[8:12], uint32(dim))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(rows)))
	off := matrixHeaderSize
	for _, r := range rows {
		putFloats(out[off:], r)
		off += 4 * dim
	}
	return out, nil
}

// UnmarshalMatrix restores the dimension and rows written by MarshalMatrix.
func UnmarshalMatrix(data []byte) (int, [][]float32, error) {
	if len(data) < matrixHeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidMatrix, len(data))
	}
	if !bytes.Equal(data[0:4], matrixMagic[:]) {
		return 0, nil, fmt.Errorf("%w: bad magic %q", ErrInvalidMatrix, data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != matrixVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidMatrix, v)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	n := int(binary.LittleEndian.Uint32(data[12:16]))
	if (dim == 0) != (n == 0) {
		return 0, nil, fmt.Errorf("%w: shape (%d, %d)", ErrInvalidMatrix, n, dim)
	}
	if want := matrixHeaderSize + 4*dim*n; len(data) != want {
		return 0, nil, fmt.Errorf("%w: got %d bytes, want %d for shape (%d, %d)", ErrInvalidMatrix, len(data), want, n, dim)
	}
	rows := make([][]float32, n)
	off := matrixHeaderSize
	for i := range rows {
		rows[i] = make([]float32, dim)
		getFloats(rows[i], data[off:])
		off += 4 * dim
	}
	return dim, rows, nil
}
