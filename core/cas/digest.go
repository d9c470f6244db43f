// Package cas computes the content digests used to verify conversions.
// Every digest carries a SHA-256 and a BLAKE3 hash of the same bytes.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Digest holds both hashes of one byte stream.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Size   int64  `json:"size"`
}

// Sum digests data.
func Sum(data []byte) Digest {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return Digest{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
		Size:   int64(len(data)),
	}
}

// SumReader digests everything read from r.
func SumReader(r io.Reader) (Digest, error) {
	s := sha256.New()
	b := blake3.New()
	n, err := io.Copy(io.MultiWriter(s, b), r)
	if err != nil {
		return Digest{}, err
	}
	return Digest{
		SHA256: hex.EncodeToString(s.Sum(nil)),
		BLAKE3: hex.EncodeToString(b.Sum(nil)),
		Size:   n,
	}, nil
}

// Hash returns the SHA-256 hex digest of data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Blake3Hash returns the BLAKE3 hex digest of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Equal reports whether both hashes and the size match.
func (d Digest) Equal(other Digest) bool {
	return d.SHA256 == other.SHA256 && d.BLAKE3 == other.BLAKE3 && d.Size == other.Size
}

// Short returns an abbreviated form for log lines.
func (d Digest) Short() string {
	if len(d.SHA256) < 12 || len(d.BLAKE3) < 12 {
		return d.SHA256 + "/" + d.BLAKE3
	}
	return d.SHA256[:12] + "/" + d.BLAKE3[:12]
}
