package db

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Value encodings stored in kv.encoding.
const (
	EncodingRaw = "raw"
	EncodingXZ  = "xz"
)

// Checksum returns the hex blake3 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// encodeValue compresses data with xz when it is at least compressMin bytes.
// compressMin <= 0 disables compression.
func encodeValue(data []byte, compressMin int) ([]byte, string, error) {
	if compressMin <= 0 || len(data) < compressMin {
		return data, EncodingRaw, nil
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, "", fmt.Errorf("xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, "", fmt.Errorf("xz write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("xz close: %w", err)
	}
	return buf.Bytes(), EncodingXZ, nil
}

// decodeValue reverses encodeValue and verifies the checksum of the result.
func decodeValue(stored []byte, encoding, checksum string) ([]byte, error) {
	var data []byte
	switch encoding {
	case EncodingRaw:
		data = stored
	case EncodingXZ:
		r, err := xz.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("xz read: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}

	if got := Checksum(data); got != checksum {
		return nil, fmt.Errorf("checksum mismatch")
	}
	return data, nil
}
