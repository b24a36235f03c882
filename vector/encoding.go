package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeEmbedding encodes a slice of float32 values into a BLOB representation
// suitable for storage in SQLite. The encoding is a little-endian sequence of
// IEEE 754 float32 values without a length prefix; the length is derived from
// the BLOB size on decode.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	b := make([]byte, len(vec)*4)
	putFloats(b, vec)
	return b, nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding back into a
// slice of float32 values.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	getFloats(vec, b)
	return vec, nil
}

func putFloats(dst []byte, vec []float32) {
	for i, v := range vec {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func getFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
