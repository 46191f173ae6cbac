package columnar

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of string pool data.
type Compression uint8

const (
	// CompressionNone stores pool bytes as-is and keeps them mappable.
	CompressionNone Compression = iota
	// CompressionLZ4 favours decompression speed.
	CompressionLZ4
	// CompressionZSTD favours ratio.
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block layout: [algorithm uint8][pad 3][uncompressed size uint32][payload].
// Incompressible data is stored with CompressionNone.
const blockHeaderSize = 8

var errShortBlock = errors.New("compressed block truncated")

func compressBlock(data []byte, c Compression) ([]byte, error) {
	var payload []byte
	switch c {
	case CompressionLZ4:
		if len(data) == 0 {
			break
		}
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		payload = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	case CompressionNone:
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}

	// Keep the raw bytes when compression does not save at least 10%.
	if len(payload) == 0 || float64(len(payload)) > float64(len(data))*0.9 {
		c, payload = CompressionNone, data
	}

	out := make([]byte, blockHeaderSize+len(payload))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(data))) //nolint:gosec
	copy(out[blockHeaderSize:], payload)
	return out, nil
}

func decompressBlock(block []byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errShortBlock
	}
	size := int(binary.LittleEndian.Uint32(block[4:]))
	payload := block[blockHeaderSize:]

	switch Compression(block[0]) {
	case CompressionNone:
		if len(payload) < size {
			return nil, errShortBlock
		}
		return payload[:size:size], nil
	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, fmt.Errorf("lz4 block decoded to %d bytes, want %d", n, size)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if len(out) != size {
			return nil, fmt.Errorf("zstd block decoded to %d bytes, want %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown block compression %d", block[0])
	}
}
