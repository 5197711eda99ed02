package fingerprint

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// Digest is an opaque 64-bit image fingerprint.
type Digest [8]byte

// DigestFromUint64 packs v big-endian.
func DigestFromUint64(v uint64) Digest {
	var d Digest
	binary.BigEndian.PutUint64(d[:], v)
	return d
}

// Uint64 unpacks d.
func (d Digest) Uint64() uint64 {
	return binary.BigEndian.Uint64(d[:])
}

// String returns d as 16 lowercase hex digits.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText implements encoding.TextMarshaler so digests serialize as hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the hex form written by MarshalText.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest parses 16 hex digits.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if hex.DecodedLen(len(s)) != len(d) {
		return Digest{}, fmt.Errorf("invalid digest %q: want %d hex digits", s, 2*len(d))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	return d, nil
}

// Hasher computes a digest from an encoded image.
type Hasher interface {
	Hash(encoded []byte) (Digest, error)
}

// EncodeJPEG encodes img as JPEG at the given quality (1-100). A quality
// outside that range falls back to DefaultQuality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// Fingerprint encodes img to JPEG and hashes the bytes with h.
func Fingerprint(img image.Image, h Hasher, quality int) (Digest, error) {
	encoded, err := EncodeJPEG(img, quality)
	if err != nil {
		return Digest{}, err
	}

	d, err := h.Hash(encoded)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to hash image: %w", err)
	}
	return d, nil
}
