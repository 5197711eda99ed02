// Package fingerprint turns a rectified card image into a compact digest.
//
// The core only encodes the image to JPEG and hands the bytes to a Hasher.
// Hashers are black boxes from encoded bytes to an 8-byte Digest; the
// adapters here wrap github.com/corona10/goimagehash. Comparing or storing
// digests is left to the caller.
package fingerprint
