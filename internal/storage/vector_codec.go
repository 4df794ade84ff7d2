package storage

import (
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zstd"
)

// Embedding vectors compress well (runs of near-zero float32 bytes), so
// the BLOB column holds a zstd frame over the little-endian float32
// encoding. Decoding tolerates raw uncompressed frames for databases
// written before compression landed.

var (
	vectorEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	vectorDecoder, _ = zstd.NewReader(nil)
)

// float32ToBytes encodes a dense vector for the embedding_cache BLOB
// column: little-endian float32s inside a zstd frame.
func float32ToBytes(vec []float32) []byte {
	raw := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return vectorEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

// bytesToFloat32 decodes a vector previously encoded by float32ToBytes.
func bytesToFloat32(buf []byte) []float32 {
	raw, err := vectorDecoder.DecodeAll(buf, nil)
	if err != nil {
		// Pre-compression row: the blob is the raw encoding itself.
		raw = buf
	}
	n := len(raw) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec
}
