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

// Package seal implements RecordSeal: the per-record symmetric encryption
// used by the chain. A fresh ephemeral scalar k is drawn for every record;
// kn = k*G is published alongside the ciphertext, and alpha = k*EK (the
// Diffie-Hellman shared point with the chain's master public key) feeds
// pkg/kdf to derive the record's one-time λ key. Because λ is unique per
// record by construction, AES-128-CBC with an all-zero IV is safe here --
// the zero IV would be catastrophic if the same key were ever reused, which
// is exactly what the DH derivation prevents.
package seal

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/kdf"
)

// blockSize is the AES block size, also the PKCS7 padding modulus.
const blockSize = aes.BlockSize

var zeroIV [blockSize]byte

// Sealed is the output of Seal: the ephemeral public point kn and the
// PKCS7-padded AES-128-CBC ciphertext.
type Sealed struct {
	Kn         group.Point
	Ciphertext []byte
}

// Seal encrypts plaintext for the holder of EK, under the given id and set
// domain-separation labels. It draws a fresh ephemeral scalar internally.
func Seal(ek group.Point, id, set string, plaintext []byte) (Sealed, error) {
	sealed, lambda, err := SealWithLambda(ek, id, set, plaintext)
	lambda.Destroy()
	return sealed, err
}

// SealWithLambda is Seal, additionally returning the λ it derived. Chain
// construction needs this: each record embeds the *previous* record's λ in
// its own plaintext payload, so the chain builder must be able to carry a
// record's λ forward to when it seals the next one.
func SealWithLambda(ek group.Point, id, set string, plaintext []byte) (Sealed, kdf.LambdaKey, error) {
	k, err := group.RandomScalar()
	if err != nil {
		return Sealed{}, kdf.LambdaKey{}, errs.Wrap(errs.Io, err, "generate ephemeral scalar")
	}
	defer k.Destroy()

	kn := group.ScalarBaseMul(k)
	alpha := ek.Mul(k)
	lambda := kdf.Lambda(alpha, id, set)

	ct, err := encrypt(lambda.K128(), plaintext)
	if err != nil {
		return Sealed{}, kdf.LambdaKey{}, err
	}
	return Sealed{Kn: kn, Ciphertext: ct}, lambda, nil
}

// Unseal decrypts a Sealed record given the chain master's secret scalar e
// (so that alpha = e*kn, the same shared point the sealer derived as
// k*EK), or, during threshold recovery, any already-recovered alpha point
// via UnsealWithAlpha.
func Unseal(e group.Scalar, sealed Sealed, id, set string) ([]byte, error) {
	alpha := sealed.Kn.Mul(e)
	return UnsealWithAlpha(alpha, sealed.Ciphertext, id, set)
}

// UnsealWithAlpha decrypts ciphertext given an already-computed shared point
// alpha (e.g. the result of threshold PointVector.Recover, which never
// reconstructs the master scalar e itself).
func UnsealWithAlpha(alpha group.Point, ciphertext []byte, id, set string) ([]byte, error) {
	lambda := kdf.Lambda(alpha, id, set)
	defer lambda.Destroy()
	return decrypt(lambda.K128(), ciphertext)
}

// UnsealWithLambda decrypts ciphertext given an already-derived λ directly,
// skipping the Diffie-Hellman step entirely. This is how chain recovery
// unlocks every record except the tail: each record's plaintext embeds its
// predecessor's λ, so once the tail's alpha is threshold-recovered, every
// earlier record is a direct AES decryption away.
func UnsealWithLambda(lambda kdf.LambdaKey, ciphertext []byte) ([]byte, error) {
	return decrypt(lambda.K128(), ciphertext)
}

func encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "construct AES cipher")
	}
	padded := PKCS7Pad(plaintext, blockSize)
	ct := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, zeroIV[:])
	mode.CryptBlocks(ct, padded)
	return ct, nil
}

func decrypt(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "construct AES cipher")
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, errs.Errorf(errs.Padding, "ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}
	pt := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, zeroIV[:])
	mode.CryptBlocks(pt, ciphertext)
	return PKCS7Unpad(pt)
}

// PKCS7Pad pads data out to a multiple of size, per RFC 5652 -- every
// padding byte is set to the padding length, including a full extra block of
// padding when data is already a multiple of size. Exported so pkg/fileadapter
// can apply the identical padding to its own streamed AES-128-CBC container.
func PKCS7Pad(data []byte, size int) []byte {
	padLen := size - len(data)%size
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// PKCS7Unpad reverses PKCS7Pad, validating that the trailing padding bytes
// are well-formed before stripping them.
func PKCS7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errs.New(errs.Padding, "cannot unpad empty buffer")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > blockSize {
		return nil, errs.Errorf(errs.Padding, "invalid PKCS7 padding length %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errs.New(errs.Padding, "inconsistent PKCS7 padding bytes")
		}
	}
	return data[:len(data)-padLen], nil
}

// EncryptedSizeFor returns the ciphertext length that encrypting a
// plaintext of size n produces, accounting for PKCS7 padding.
func EncryptedSizeFor(n int) int {
	return n + (blockSize - n%blockSize)
}
