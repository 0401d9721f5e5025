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

// Package vault gives a party somewhere to keep their own key material
// between runs: a passphrase-protected blob, in the spirit of the teacher's
// schema.Master/EncryptedMaster and schema.Shard/EncryptedShard pair, but
// keyed from an operator passphrase (via pkg/crypto.DeriveKey's Argon2id)
// rather than a bare high-entropy key, since nothing upstream of this
// package generates or distributes one. The AEAD engine itself (Packet,
// Encrypt, Decrypt) is the teacher's pkg/crypto, unmodified; vault only adds
// the passphrase-to-key step and the self-describing framing salt travels
// in. The payload itself is "whatever JSON-able thing the caller wants to
// persist", exactly as schema.Shard wraps a shamir.Share -- here that's
// typically a KeyPairRecord or a ShareRecord.
package vault

import (
	"crypto/rand"
	"encoding/json"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/cyphar/paperchain/pkg/crypto"
	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/shares"
)

const (
	formatVersion byte = 1
	saltSize           = 16
)

// Blob is the self-describing, passphrase-encrypted on-disk representation
// of a vault payload: VERSION(1) || salt(16) || nonce || ChaCha20-Poly1305
// ciphertext of the JSON-encoded payload.
type Blob []byte

// Seal JSON-marshals payload and encrypts it under passphrase.
func Seal(passphrase []byte, payload interface{}) (Blob, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "marshal vault payload")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errs.Wrap(errs.Io, err, "generate vault salt")
	}
	key := crypto.DeriveKey(passphrase, salt)
	packet, err := crypto.Encrypt(plaintext, key, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "encrypt vault payload")
	}

	blob := make(Blob, 0, 1+saltSize+len(packet.Nonce)+len(packet.Ciphertext))
	blob = append(blob, formatVersion)
	blob = append(blob, salt...)
	blob = append(blob, packet.Nonce...)
	blob = append(blob, packet.Ciphertext...)
	return blob, nil
}

// Open decrypts blob under passphrase and unmarshals the JSON payload into
// out, which must be a pointer.
func Open(passphrase []byte, blob Blob, out interface{}) error {
	if len(blob) < 1+saltSize+chacha20poly1305.NonceSize {
		return errs.New(errs.Decode, "vault blob is too short to contain a header")
	}
	if blob[0] != formatVersion {
		return errs.Errorf(errs.Decode, "unsupported vault format version %d", blob[0])
	}

	offset := 1
	salt := blob[offset : offset+saltSize]
	offset += saltSize
	nonce := blob[offset : offset+chacha20poly1305.NonceSize]
	offset += chacha20poly1305.NonceSize
	ciphertext := blob[offset:]

	key := crypto.DeriveKey(passphrase, salt)
	packet := crypto.Packet{Nonce: nonce, Ciphertext: ciphertext}
	plaintext, _, err := crypto.Decrypt(packet, key)
	if err != nil {
		return errs.Wrap(errs.Signature, err, "decrypt vault blob: wrong passphrase or corrupted data")
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return errs.Wrap(errs.Decode, err, "unmarshal vault payload")
	}
	return nil
}

// KeyPairRecord is the JSON-friendly persisted form of a group.KeyPair,
// using the same canonical 32-byte scalar/point encodings as pkg/wire.
type KeyPairRecord struct {
	Scalar []byte `json:"s"`
	Key    []byte `json:"key"`
}

// EncodeKeyPair converts kp to its persisted record form.
func EncodeKeyPair(kp group.KeyPair) KeyPairRecord {
	return KeyPairRecord{Scalar: kp.S.Encode(), Key: kp.Key.Encode()}
}

// Decode parses r back into a group.KeyPair.
func (r KeyPairRecord) Decode() (group.KeyPair, error) {
	s, err := group.DecodeScalar(r.Scalar)
	if err != nil {
		return group.KeyPair{}, errs.Wrap(errs.Decode, err, "decode keypair scalar")
	}
	key, err := group.DecodePoint(r.Key)
	if err != nil {
		return group.KeyPair{}, errs.Wrap(errs.Decode, err, "decode keypair point")
	}
	return group.KeyPair{S: s, Key: key}, nil
}

// ShareRecord is the JSON-friendly persisted form of a single shares.Share,
// the unit a shareholder actually keeps at rest -- this is the non-canonical
// human/operator-facing export the teacher's pkg/shamir/share.go provides
// for its own Share type, not the canonical wire.go binary encoding used for
// chain/record persistence.
type ShareRecord struct {
	Index uint   `json:"index"`
	Value []byte `json:"value"`
}

// EncodeShare converts s to its persisted record form.
func EncodeShare(s shares.Share) ShareRecord {
	return ShareRecord{Index: s.Index, Value: s.Value.Encode()}
}

// Decode parses r back into a shares.Share.
func (r ShareRecord) Decode() (shares.Share, error) {
	v, err := group.DecodeScalar(r.Value)
	if err != nil {
		return shares.Share{}, errs.Wrap(errs.Decode, err, "decode share value")
	}
	return shares.Share{Index: r.Index, Value: v}, nil
}
