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

// Package kdf derives per-record symmetric keys (LambdaKey, "λ") from a
// Diffie-Hellman shared point, an id and a set label. The source codebase
// this protocol descends from went through two hash-length eras (SHA-256 and
// SHA-512); this package settles on a single choice -- SHA-512/256, i.e.
// SHA-512 truncated to 32 bytes -- for every persisted artifact. id and set
// are length-prefixed (not separator-delimited) before hashing, the same
// framing pkg/wire uses for its own variable-length fields, so that no byte
// in either string can be mistaken for a boundary.
package kdf

import (
	"crypto/sha512"
	"encoding/binary"
	"hash"

	"github.com/cyphar/paperchain/pkg/group"
)

// Size is the length, in bytes, of a LambdaKey.
const Size = 32

// LambdaKey is the symmetric key derived for a single record's seal/unseal
// operation.
type LambdaKey [Size]byte

// Lambda derives λ = H(alpha || len-prefixed id || len-prefixed set),
// domain-separating on the id and set labels so that the same shared point
// alpha can never be reused as a key for two different records. Each of id
// and set carries its own uint32 length prefix rather than a separator byte:
// a bare delimiter would let id="a\x00b",set="c" and id="a",set="b\x00c"
// hash to the identical byte string.
func Lambda(alpha group.Point, id, set string) LambdaKey {
	h := sha512.New512_256()
	h.Write(alpha.Encode()) //nolint:errcheck // hash.Hash.Write never errors.
	writeLengthPrefixed(h, []byte(id))
	writeLengthPrefixed(h, []byte(set))
	var out LambdaKey
	copy(out[:], h.Sum(nil))
	return out
}

// writeLengthPrefixed writes a uint32 length prefix followed by b, the same
// framing pkg/wire.PutBytes uses for variable-length fields on the wire.
func writeLengthPrefixed(h hash.Hash, b []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	h.Write(lenBuf[:]) //nolint:errcheck
	h.Write(b)         //nolint:errcheck
}

// K128 returns the leading 16 bytes of λ, for use as an AES-128 key.
func (k LambdaKey) K128() []byte { return k[:16] }

// K192 returns the leading 24 bytes of λ, for use as an AES-192 key.
func (k LambdaKey) K192() []byte { return k[:24] }

// K256 returns all 32 bytes of λ, for use as an AES-256 key.
func (k LambdaKey) K256() []byte { return k[:] }

// Destroy overwrites λ's bytes with zero.
func (k *LambdaKey) Destroy() {
	for i := range k {
		k[i] = 0
	}
}
