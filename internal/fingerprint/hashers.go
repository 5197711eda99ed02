package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// imageHashFunc is the common shape of the goimagehash constructors.
type imageHashFunc func(image.Image) (*goimagehash.ImageHash, error)

// imageHasher decodes the encoded bytes and applies one goimagehash routine.
type imageHasher struct {
	name string
	fn   imageHashFunc
}

func (h imageHasher) Hash(encoded []byte) (Digest, error) {
	img, err := imaging.Decode(bytes.NewReader(encoded))
	if err != nil {
		return Digest{}, fmt.Errorf("failed to decode image: %w", err)
	}

	ih, err := h.fn(img)
	if err != nil {
		return Digest{}, fmt.Errorf("%s: %w", h.name, err)
	}
	return DigestFromUint64(ih.GetHash()), nil
}

func (h imageHasher) String() string {
	return h.name
}

// PerceptionHasher is a DCT-based perceptual hash. It tolerates scaling,
// mild blur and JPEG recompression, which makes it the default.
var PerceptionHasher Hasher = imageHasher{name: "phash", fn: goimagehash.PerceptionHash}

// DifferenceHasher hashes the sign of horizontal gradients of a downscaled
// image. It is cheaper than PerceptionHasher and more sensitive to shifts.
var DifferenceHasher Hasher = imageHasher{name: "dhash", fn: goimagehash.DifferenceHash}

// AverageHasher compares each pixel of a downscaled image with the mean.
var AverageHasher Hasher = imageHasher{name: "ahash", fn: goimagehash.AverageHash}

var hashers = map[string]Hasher{
	"phash": PerceptionHasher,
	"dhash": DifferenceHasher,
	"ahash": AverageHasher,
}

// New returns the hasher registered under name: "phash", "dhash" or "ahash".
// An empty name selects "phash".
func New(name string) (Hasher, error) {
	if name == "" {
		name = "phash"
	}
	h, ok := hashers[name]
	if !ok {
		return nil, fmt.Errorf("unknown hasher %q (available: %v)", name, Names())
	}
	return h, nil
}

// Names lists the registered hasher names in sorted order.
func Names() []string {
	names := make([]string, 0, len(hashers))
	for n := range hashers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
