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

// Package fileadapter streams a file's contents through AES-128-CBC under
// the dn key embedded in its chain Record, appending a self-describing
// trailer that authenticates the ciphertext: a signature over the
// SHA-512/256 hash of everything written before it. Save and Load never
// buffer the whole file -- both sides intercept the byte stream as it
// passes through (the same shape as the teacher's WriteInterceptor /
// ReadInterceptor from the pre-chain design, now feeding a running hash
// instead of a Shamir-share accumulator), and Load's trailerReader always
// holds back the trailing TrailerSize bytes (buffering at most TrailerSize
// plus one read chunk) so it can tell ciphertext from trailer without
// seeking. The CBC container always
// holds back one block of plaintext (on Save) or ciphertext (on Load) so
// that the final, PKCS7-padded block -- produced with pkg/seal's own
// PKCS7Pad/PKCS7Unpad -- is only ever written or unpadded once EOF confirms
// it really is the last block.
package fileadapter

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"hash"
	"io"

	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/schnorr"
	"github.com/cyphar/paperchain/pkg/seal"
	"github.com/cyphar/paperchain/pkg/wire"
)

// scratchSize is the chunk size trailerReader reads from its upstream
// source at a time.
const scratchSize = 32 * 1024

// blockSize is the AES block size, also the PKCS7 padding modulus.
const blockSize = aes.BlockSize

var zeroIV [blockSize]byte

// trailerReader wraps a stream that ends in a fixed trailerN-byte trailer,
// exposing every byte except that trailer to its caller. It reads from src
// in scratchSize chunks only while it holds trailerN bytes or fewer, so it
// buffers at most trailerN+scratchSize bytes regardless of stream length.
type trailerReader struct {
	src      io.Reader
	trailerN int
	scratch  []byte
	ring     []byte
	eof      bool
	trailer  []byte
}

func newTrailerReader(src io.Reader, trailerN int) *trailerReader {
	return &trailerReader{src: src, trailerN: trailerN, scratch: make([]byte, scratchSize)}
}

func (r *trailerReader) Read(p []byte) (int, error) {
	for len(r.ring) <= r.trailerN && !r.eof {
		n, err := r.src.Read(r.scratch)
		if n > 0 {
			r.ring = append(r.ring, r.scratch[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				return 0, errs.Wrap(errs.Io, err, "read sealed file stream")
			}
			r.eof = true
		}
	}
	if len(r.ring) <= r.trailerN {
		r.trailer = r.ring
		r.ring = nil
		return 0, io.EOF
	}

	releasable := len(r.ring) - r.trailerN
	if releasable > len(p) {
		releasable = len(p)
	}
	n := copy(p, r.ring[:releasable])
	r.ring = r.ring[n:]
	return n, nil
}

// trailerBytes returns the trailing trailerN bytes of the stream. It must only
// be called after Read has returned io.EOF.
func (r *trailerReader) trailerBytes() ([]byte, error) {
	if !r.eof {
		return nil, errs.New(errs.Shape, "trailer requested before stream reached EOF")
	}
	if len(r.trailer) != r.trailerN {
		return nil, errs.Errorf(errs.Shape, "sealed file shorter than trailer: got %d bytes, want %d", len(r.trailer), r.trailerN)
	}
	return r.trailer, nil
}

// hashWriter hashes every byte written through it before forwarding it.
type hashWriter struct {
	w io.Writer
	h hash.Hash
}

func (hw *hashWriter) Write(p []byte) (int, error) {
	hw.h.Write(p) //nolint:errcheck
	return hw.w.Write(p)
}

// hashReader hashes every byte read through it.
type hashReader struct {
	r io.Reader
	h hash.Hash
}

func (hr *hashReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n]) //nolint:errcheck
	}
	return n, err
}

func newBlockCipher(dn [16]byte) (cipher.Block, error) {
	block, err := aes.NewCipher(dn[:])
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "construct AES cipher")
	}
	return block, nil
}

// cbcWriter streams plaintext into PKCS7-padded AES-128-CBC ciphertext. It
// always holds back the last blockSize bytes it has been given, so that
// Close -- once the caller knows no more plaintext is coming -- has between
// 1 and blockSize bytes on hand to pad, even when the plaintext written so
// far is an exact multiple of the block size (or none, for an empty
// plaintext, which pads to one full block).
type cbcWriter struct {
	mode cipher.BlockMode
	w    io.Writer
	buf  []byte
}

func (cw *cbcWriter) Write(p []byte) (int, error) {
	cw.buf = append(cw.buf, p...)

	if l := len(cw.buf); l > 0 {
		// heldBack is always in [1, blockSize]: the smallest amount that
		// leaves a multiple of blockSize to flush now.
		heldBack := (l-1)%blockSize + 1
		if flushable := l - heldBack; flushable > 0 {
			encrypted := make([]byte, flushable)
			cw.mode.CryptBlocks(encrypted, cw.buf[:flushable])
			if _, err := cw.w.Write(encrypted); err != nil {
				return 0, errs.Wrap(errs.Io, err, "write ciphertext stream")
			}
			cw.buf = cw.buf[flushable:]
		}
	}
	return len(p), nil
}

// Close pads whatever plaintext remains buffered and encrypts it as the
// final block(s). It must be called exactly once, after every plaintext
// byte has been written.
func (cw *cbcWriter) Close() error {
	padded := seal.PKCS7Pad(cw.buf, blockSize)
	encrypted := make([]byte, len(padded))
	cw.mode.CryptBlocks(encrypted, padded)
	if _, err := cw.w.Write(encrypted); err != nil {
		return errs.Wrap(errs.Io, err, "write final ciphertext block")
	}
	return nil
}

// cbcReader reverses cbcWriter: it decrypts ciphertext one block at a time,
// always holding back the most recently decrypted block until it has
// confirmed (by successfully reading another block, or reaching EOF) whether
// that block was the last one, since only the truly-last block carries PKCS7
// padding to strip.
type cbcReader struct {
	mode cipher.BlockMode
	src  io.Reader
	held []byte
	out  []byte
	done bool
}

func (cr *cbcReader) Read(p []byte) (int, error) {
	for len(cr.out) == 0 && !cr.done {
		block := make([]byte, blockSize)
		n, err := io.ReadFull(cr.src, block)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				if n != 0 {
					return 0, errs.New(errs.Padding, "ciphertext length is not a multiple of the AES block size")
				}
				cr.done = true
				if cr.held == nil {
					// No ciphertext blocks at all: either a truncated
					// sealed file (the trailing trailerBytes() check in
					// Load catches this) or a corrupted one (the
					// signature check catches it). Either way, it's not
					// this reader's job to distinguish the two.
					break
				}
				unpadded, uerr := seal.PKCS7Unpad(cr.held)
				cr.held = nil
				if uerr != nil {
					return 0, uerr
				}
				cr.out = unpadded
				break
			}
			return 0, errs.Wrap(errs.Io, err, "read ciphertext stream")
		}

		decrypted := make([]byte, blockSize)
		cr.mode.CryptBlocks(decrypted, block)
		if cr.held != nil {
			cr.out = append(cr.out, cr.held...)
		}
		cr.held = decrypted
	}
	if len(cr.out) == 0 {
		return 0, io.EOF
	}
	n := copy(p, cr.out)
	cr.out = cr.out[n:]
	return n, nil
}

// Save streams plaintext from src, encrypts it under dn with AES-128-CBC
// (PKCS7-padded, zero IV), and writes the ciphertext to dst followed by a
// 136-byte trailer: an ExtSignature (under signer) over the SHA-512/256 hash
// of the ciphertext. The zero IV is safe here for the same reason it is in
// pkg/seal: dn is never reused across two different plaintexts.
func Save(signer group.KeyPair, dn [16]byte, src io.Reader, dst io.Writer) (schnorr.ExtSignature, error) {
	block, err := newBlockCipher(dn)
	if err != nil {
		return schnorr.ExtSignature{}, err
	}
	mode := cipher.NewCBCEncrypter(block, zeroIV[:])

	h := sha512.New512_256()
	writer := &cbcWriter{mode: mode, w: &hashWriter{w: dst, h: h}}
	if _, err := io.Copy(writer, src); err != nil {
		return schnorr.ExtSignature{}, errs.Wrap(errs.Io, err, "encrypt file stream")
	}
	if err := writer.Close(); err != nil {
		return schnorr.ExtSignature{}, err
	}

	sig := schnorr.SignExt(signer.S, signer.Key, h.Sum(nil))
	if _, err := dst.Write(wire.EncodeTrailer(sig)); err != nil {
		return schnorr.ExtSignature{}, errs.Wrap(errs.Io, err, "write file trailer")
	}
	return sig, nil
}

// Load streams a file previously produced by Save: it decrypts every byte
// but the trailing 136-byte trailer under dn, verifies the embedded
// signature against the ciphertext hash, and writes the recovered
// plaintext to dst. An error is returned (and dst may contain a partial,
// untrusted prefix) if the signature does not verify.
func Load(dn [16]byte, src io.Reader, dst io.Writer) (schnorr.ExtSignature, error) {
	tr := newTrailerReader(src, wire.TrailerSize)

	block, err := newBlockCipher(dn)
	if err != nil {
		return schnorr.ExtSignature{}, err
	}
	mode := cipher.NewCBCDecrypter(block, zeroIV[:])

	h := sha512.New512_256()
	reader := &cbcReader{mode: mode, src: &hashReader{r: tr, h: h}}
	if _, err := io.Copy(dst, reader); err != nil {
		return schnorr.ExtSignature{}, errs.Wrap(errs.Io, err, "decrypt file stream")
	}

	trailer, err := tr.trailerBytes()
	if err != nil {
		return schnorr.ExtSignature{}, err
	}
	sig, err := wire.DecodeTrailer(trailer)
	if err != nil {
		return schnorr.ExtSignature{}, err
	}
	if !sig.Verify(h.Sum(nil)) {
		return schnorr.ExtSignature{}, errs.New(errs.Signature, "sealed file trailer signature does not verify")
	}
	return sig, nil
}
