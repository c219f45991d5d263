// Package checksum computes and compares hex digests using the algorithm
// names of Python's hashlib, which is how asset digests are recorded.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"

	apperrors "romgen/internal/errors"
)

// Algorithm names a digest function, e.g. "sha1".
type Algorithm string

var algorithms = map[Algorithm]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// Supported returns the known algorithm names in sorted order.
func Supported() []Algorithm {
	names := make([]Algorithm, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// SupportedList returns the known algorithm names joined with ", ", for
// error messages.
func SupportedList() string {
	names := Supported()
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = string(name)
	}
	return strings.Join(out, ", ")
}

// New returns a fresh hash for algo.
func New(algo Algorithm) (hash.Hash, error) {
	ctor, ok := algorithms[algo]
	if !ok {
		return nil, apperrors.ValidationError(apperrors.CodeUnknownAlgorithm, "unsupported hash algorithm", nil).
			WithModule("checksum").
			WithOperation("New").
			WithFields(apperrors.Metadata{
				"algorithm": string(algo),
				"supported": SupportedList(),
			})
	}
	return ctor(), nil
}

// HexLen returns the length of a hex digest produced by algo, or 0 when algo
// is unknown.
func HexLen(algo Algorithm) int {
	ctor, ok := algorithms[algo]
	if !ok {
		return 0
	}
	return hex.EncodedLen(ctor().Size())
}

// ValidDigest reports whether digest is lowercase hex of the right length for algo.
func ValidDigest(algo Algorithm, digest string) bool {
	n := HexLen(algo)
	if n == 0 || len(digest) != n {
		return false
	}
	return strings.IndexFunc(digest, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) < 0
}

// Sum returns the lowercase hex digest of data.
func Sum(algo Algorithm, data []byte) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks data against expected. The comparison is an exact string
// match; a mismatch yields an INTEGRITY error naming both digests.
func Verify(algo Algorithm, data []byte, expected string) error {
	actual, err := Sum(algo, data)
	if err != nil {
		return err
	}
	if actual != expected {
		return MismatchError(algo, expected, actual)
	}
	return nil
}

// MismatchError builds the INTEGRITY error for a digest mismatch.
func MismatchError(algo Algorithm, expected, actual string) *apperrors.AppError {
	msg := fmt.Sprintf("%s digest mismatch: expected %s, got %s", algo, expected, actual)
	return apperrors.IntegrityError(apperrors.CodeDigestMismatch, msg, nil).
		WithModule("checksum").
		WithOperation("Verify").
		WithFields(apperrors.Metadata{
			"algorithm": string(algo),
			"expected":  expected,
			"actual":    actual,
		})
}
