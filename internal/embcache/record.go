package embcache

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/semdex/semdex/pkg/types"
)

// Persistent records use an explicit versioned binary layout instead of a
// generic serialization format, so a cross-version format change is
// detected instead of silently decoding garbage:
//
//	byte 0    magic (0xE5)
//	byte 1    version (1)
//	bytes 2-5 dimension, uint32 little-endian
//	bytes 6+  dimension * 4 bytes of float32 little-endian
const (
	recordMagic   = 0xE5
	recordVersion = 1
	recordHeader  = 6
)

// encodeRecord serializes a vector into the versioned record layout.
func encodeRecord(vec []float32) []byte {
	buf := make([]byte, recordHeader+4*len(vec))
	buf[0] = recordMagic
	buf[1] = recordVersion
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[recordHeader+4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeRecord deserializes a record, returning types.ErrCacheCorrupt for
// any malformed input: wrong magic, unknown version, or a length that does
// not match the declared dimension.
func decodeRecord(data []byte) ([]float32, error) {
	if len(data) < recordHeader {
		return nil, fmt.Errorf("%w: record truncated (%d bytes)", types.ErrCacheCorrupt, len(data))
	}
	if data[0] != recordMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%02X", types.ErrCacheCorrupt, data[0])
	}
	if data[1] != recordVersion {
		return nil, fmt.Errorf("%w: unsupported record version %d", types.ErrCacheCorrupt, data[1])
	}
	dim := binary.LittleEndian.Uint32(data[2:6])
	// Compare in int64 so a corrupt dimension cannot wrap the expected
	// length around uint32 and pass the check.
	if int64(len(data)-recordHeader) != int64(dim)*4 {
		return nil, fmt.Errorf("%w: dimension %d does not match payload of %d bytes", types.ErrCacheCorrupt, dim, len(data)-recordHeader)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[recordHeader+4*i:]))
	}
	return vec, nil
}
