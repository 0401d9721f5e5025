/*
 * paperchain: confidential append-only record chains with threshold recovery
 * Copyright (C) 2024 Aleksa Sarai <cyphar@cyphar.com>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package group is the concrete realization of the "GroupOracle" that the
// rest of paperchain treats as an external collaborator: scalar/point
// arithmetic over a prime-order group, a base point, a CSPRNG, hash-to-scalar,
// and canonical 32-byte compressed encodings. It is implemented on
// Ristretto255 via github.com/gtank/ristretto255, the same curve construction
// used by the reference implementation this package's protocol was distilled
// from.
package group

import (
	"crypto/rand"
	"crypto/sha512"

	"github.com/gtank/ristretto255"
	"github.com/pkg/errors"

	"github.com/cyphar/paperchain/pkg/errs"
)

// EncodedSize is the size, in bytes, of a canonical Scalar or Point encoding.
const EncodedSize = 32

// Scalar is an element of the Ristretto255 scalar field.
type Scalar struct {
	inner *ristretto255.Scalar
}

// Point is an element of the Ristretto255 group.
type Point struct {
	inner *ristretto255.Element
}

// BasePoint returns the distinguished generator G of the group.
func BasePoint() Point {
	return Point{inner: ristretto255.NewIdentityElement().ScalarBaseMult(one())}
}

// IdentityPoint returns the group identity element.
func IdentityPoint() Point {
	return Point{inner: ristretto255.NewIdentityElement()}
}

// one returns the scalar value 1, via its (trivially canonical) 32-byte
// little-endian encoding.
func one() *ristretto255.Scalar {
	var buf [EncodedSize]byte
	buf[0] = 1
	s, err := ristretto255.NewScalar().SetCanonicalBytes(buf[:])
	if err != nil {
		panic(err)
	}
	return s
}

// RandomScalar draws a uniformly random scalar from the OS CSPRNG.
func RandomScalar() (Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return Scalar{}, errs.Wrap(errs.Io, err, "read random scalar seed")
	}
	s, err := ristretto255.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		return Scalar{}, errs.Wrap(errs.Decode, err, "reduce random seed to scalar")
	}
	return Scalar{inner: s}, nil
}

// ZeroScalar returns the additive identity of the scalar field.
func ZeroScalar() Scalar {
	return Scalar{inner: ristretto255.NewScalar()}
}

// HashToScalar deterministically derives a scalar from the concatenation of
// the given byte strings, via SHA-512 wide-reduction (matching
// Scalar::from_hash in the reference implementation).
func HashToScalar(parts ...[]byte) Scalar {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors.
	}
	sum := h.Sum(nil)
	s, err := ristretto255.NewScalar().SetUniformBytes(sum)
	if err != nil {
		// SHA-512 always yields exactly 64 bytes, which SetUniformBytes
		// always accepts.
		panic(err)
	}
	return Scalar{inner: s}
}

// ScalarFromUint64 encodes a small non-negative integer (typically a share
// index) as a scalar.
func ScalarFromUint64(v uint64) Scalar {
	var buf [64]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	s, err := ristretto255.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		panic(err)
	}
	return s2(s)
}

func s2(s *ristretto255.Scalar) Scalar { return Scalar{inner: s} }

// DecodeScalar parses a canonical 32-byte little-endian scalar encoding,
// rejecting non-canonical representations.
func DecodeScalar(b []byte) (Scalar, error) {
	if len(b) != EncodedSize {
		return Scalar{}, errs.Errorf(errs.Decode, "scalar must be %d bytes, got %d", EncodedSize, len(b))
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return Scalar{}, errs.Wrap(errs.Decode, err, "non-canonical scalar encoding")
	}
	return Scalar{inner: s}, nil
}

// DecodePoint parses a canonical 32-byte compressed point encoding.
func DecodePoint(b []byte) (Point, error) {
	if len(b) != EncodedSize {
		return Point{}, errs.Errorf(errs.Decode, "point must be %d bytes, got %d", EncodedSize, len(b))
	}
	p, err := ristretto255.NewElement().SetCanonicalBytes(b)
	if err != nil {
		return Point{}, errs.Wrap(errs.Decode, err, "non-decompressible point encoding")
	}
	return Point{inner: p}, nil
}

// Encode returns the canonical 32-byte little-endian encoding of s.
func (s Scalar) Encode() []byte {
	return s.inner.Bytes()
}

// Encode returns the canonical 32-byte compressed encoding of p.
func (p Point) Encode() []byte {
	return p.inner.Bytes()
}

// Add returns s + t.
func (s Scalar) Add(t Scalar) Scalar {
	return Scalar{inner: ristretto255.NewScalar().Add(s.inner, t.inner)}
}

// Sub returns s - t.
func (s Scalar) Sub(t Scalar) Scalar {
	return Scalar{inner: ristretto255.NewScalar().Subtract(s.inner, t.inner)}
}

// Mul returns s * t.
func (s Scalar) Mul(t Scalar) Scalar {
	return Scalar{inner: ristretto255.NewScalar().Multiply(s.inner, t.inner)}
}

// Negate returns -s.
func (s Scalar) Negate() Scalar {
	return Scalar{inner: ristretto255.NewScalar().Negate(s.inner)}
}

// Invert returns s^-1. The behaviour is undefined if s is zero.
func (s Scalar) Invert() Scalar {
	return Scalar{inner: ristretto255.NewScalar().Invert(s.inner)}
}

// Equal reports whether s and t encode the same scalar.
func (s Scalar) Equal(t Scalar) bool {
	return s.inner.Equal(t.inner) == 1
}

// IsZero reports whether s is the additive identity.
func (s Scalar) IsZero() bool {
	return s.Equal(ZeroScalar())
}

// Destroy overwrites the scalar's backing bytes. Go's GC means we cannot
// guarantee the memory is never copied elsewhere, but this closes the
// obvious window where a long-lived Scalar value keeps secret material
// resident after the caller believes it has been discarded.
func (s *Scalar) Destroy() {
	if s.inner == nil {
		return
	}
	zero := make([]byte, 64)
	_, _ = s.inner.SetUniformBytes(zero)
	s.inner = nil
}

// Mul returns the point s*p ("ScalarMult" -- a scalar applied to an
// arbitrary group element, as opposed to the base point).
func (p Point) Mul(s Scalar) Point {
	return Point{inner: ristretto255.NewElement().ScalarMult(s.inner, p.inner)}
}

// ScalarBaseMul returns s*G.
func ScalarBaseMul(s Scalar) Point {
	return Point{inner: ristretto255.NewElement().ScalarBaseMult(s.inner)}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{inner: ristretto255.NewElement().Add(p.inner, q.inner)}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{inner: ristretto255.NewElement().Subtract(p.inner, q.inner)}
}

// Equal reports whether p and q encode the same point.
func (p Point) Equal(q Point) bool {
	return p.inner.Equal(q.inner) == 1
}

// KeyPair is a (secret scalar, public point) pair: s and S = s*G.
type KeyPair struct {
	S   Scalar
	Key Point
}

// NewKeyPair generates a fresh random key pair.
func NewKeyPair() (KeyPair, error) {
	s, err := RandomScalar()
	if err != nil {
		return KeyPair{}, errors.Wrap(err, "generate keypair scalar")
	}
	return KeyPair{S: s, Key: ScalarBaseMul(s)}, nil
}

// Destroy zeroizes the secret half of the key pair.
func (kp *KeyPair) Destroy() {
	kp.S.Destroy()
}
