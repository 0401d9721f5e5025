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

// Package schnorr implements deterministic Schnorr signatures over the
// paperchain group (pkg/group). Unlike the ed25519 signatures the previous
// incarnation of this codebase used purely for share-forgery detection,
// these signatures are the authentication primitive for the record chain
// itself: every Record is signed, and ExtSignature (a signature bundled with
// its own public key) is what gets embedded at the tail of a sealed file.
//
// The nonce is derived deterministically from the signing scalar and the
// message (m = H(s || data...)) rather than drawn from the CSPRNG, which
// means signing the same data twice with the same key always produces the
// same signature -- there is no nonce-reuse failure mode to worry about.
package schnorr

import (
	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
)

// EncodedSize is the length, in bytes, of an encoded Signature: a 32-byte
// challenge scalar followed by a 32-byte response scalar.
const EncodedSize = 2 * group.EncodedSize

// ExtEncodedSize is the length, in bytes, of an encoded ExtSignature: an
// EncodedSize Signature followed by a 32-byte compressed public key.
const ExtEncodedSize = EncodedSize + group.EncodedSize

// Signature is a Schnorr signature (c, p) over a public key and a sequence
// of message parts.
type Signature struct {
	C group.Scalar
	P group.Scalar
}

// Sign produces a deterministic Schnorr signature over data under the
// secret scalar s (whose public key is key = s*G).
//
//	m = H(s || data...)
//	M = m*G
//	c = H(key || M || data...)
//	p = m - c*s
func Sign(s group.Scalar, key group.Point, data ...[]byte) Signature {
	parts := append([][]byte{s.Encode()}, data...)
	m := group.HashToScalar(parts...)
	M := group.ScalarBaseMul(m)

	challengeParts := append([][]byte{key.Encode(), M.Encode()}, data...)
	c := group.HashToScalar(challengeParts...)
	p := m.Sub(c.Mul(s))

	return Signature{C: c, P: p}
}

// Verify checks that sig is a valid signature over data under key.
//
//	M = c*key + p*G
//	c' = H(key || M || data...)
//	accept iff c' == c
func Verify(sig Signature, key group.Point, data ...[]byte) bool {
	M := key.Mul(sig.C).Add(group.ScalarBaseMul(sig.P))
	parts := append([][]byte{key.Encode(), M.Encode()}, data...)
	c := group.HashToScalar(parts...)
	return c.Equal(sig.C)
}

// Encode returns the canonical 64-byte encoding of sig: C || P.
func (sig Signature) Encode() []byte {
	out := make([]byte, 0, EncodedSize)
	out = append(out, sig.C.Encode()...)
	out = append(out, sig.P.Encode()...)
	return out
}

// Decode parses a canonical 64-byte signature encoding.
func Decode(b []byte) (Signature, error) {
	if len(b) != EncodedSize {
		return Signature{}, errs.Errorf(errs.Decode, "signature must be %d bytes, got %d", EncodedSize, len(b))
	}
	c, err := group.DecodeScalar(b[:group.EncodedSize])
	if err != nil {
		return Signature{}, errs.Wrap(errs.Decode, err, "decode signature challenge")
	}
	p, err := group.DecodeScalar(b[group.EncodedSize:])
	if err != nil {
		return Signature{}, errs.Wrap(errs.Decode, err, "decode signature response")
	}
	return Signature{C: c, P: p}, nil
}

// ExtSignature bundles a Signature with the public key it was produced
// under, so a verifier that does not already know the signer's key (e.g. a
// reader walking a record chain tail-to-head) can still check it.
type ExtSignature struct {
	Sig Signature
	Key group.Point
}

// SignExt signs data under (s, key) and bundles the result with key.
func SignExt(s group.Scalar, key group.Point, data ...[]byte) ExtSignature {
	return ExtSignature{Sig: Sign(s, key, data...), Key: key}
}

// Verify checks the bundled signature against its own embedded key.
func (e ExtSignature) Verify(data ...[]byte) bool {
	return Verify(e.Sig, e.Key, data...)
}

// Encode returns the canonical 96-byte encoding of e: Sig || Key.
func (e ExtSignature) Encode() []byte {
	out := make([]byte, 0, ExtEncodedSize)
	out = append(out, e.Sig.Encode()...)
	out = append(out, e.Key.Encode()...)
	return out
}

// DecodeExt parses a canonical 96-byte ExtSignature encoding.
func DecodeExt(b []byte) (ExtSignature, error) {
	if len(b) != ExtEncodedSize {
		return ExtSignature{}, errs.Errorf(errs.Decode, "ext signature must be %d bytes, got %d", ExtEncodedSize, len(b))
	}
	sig, err := Decode(b[:EncodedSize])
	if err != nil {
		return ExtSignature{}, err
	}
	key, err := group.DecodePoint(b[EncodedSize:])
	if err != nil {
		return ExtSignature{}, errs.Wrap(errs.Decode, err, "decode ext signature key")
	}
	return ExtSignature{Sig: sig, Key: key}, nil
}
