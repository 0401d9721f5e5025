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

// Package chain implements the append-only, hash-linked, Schnorr-signed
// record chain at the center of paperchain. Every record seals a FileRef
// (dn, hfile) for a master keypair's public half; only the chain's *tail*
// record ever needs a threshold-recovered shared point -- each record's
// plaintext also embeds the λ key its predecessor was sealed under, so once
// the tail is open, walking back to the head is a sequence of direct AES
// decryptions, no further share combination required.
package chain

import (
	"bytes"
	"crypto/sha512"
	"io"

	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/kdf"
	"github.com/cyphar/paperchain/pkg/schnorr"
	"github.com/cyphar/paperchain/pkg/seal"
	"github.com/cyphar/paperchain/pkg/wire"
)

// Kind distinguishes the first record in a chain (Head) from every
// subsequent one (Tail).
type Kind int

const (
	// Head is the chain's first record: it carries the chain's id/set
	// labels as public metadata, and has no predecessor.
	Head Kind = iota
	// Tail is every record after the first: it carries a hash-link back to
	// the previous record instead of id/set.
	Tail
)

func (k Kind) String() string {
	if k == Head {
		return "head"
	}
	return "tail"
}

// FileRef is the confidential reference embedded in each record: an AES
// data-encryption key (dn) and a locator for the encrypted file it belongs
// to (hfile).
type FileRef struct {
	DN    [16]byte
	HFile []byte
}

// Payload is the plaintext sealed inside every record. PrevLambda is nil
// for a Head record and set for every Tail record, carrying forward the λ
// key its immediate predecessor was sealed under.
type Payload struct {
	PrevLambda *kdf.LambdaKey
	Ref        FileRef
}

// EncodePayload serialises p using the canonical binary codec: a presence
// flag and optional 32-byte λ, then the length-prefixed FileRef.
func EncodePayload(p Payload) []byte {
	var w wire.Writer
	wire.PutBool(&w, p.PrevLambda != nil)
	if p.PrevLambda != nil {
		w.Write(p.PrevLambda[:])
	}
	w.Write(p.Ref.DN[:])
	wire.PutBytes(&w, p.Ref.HFile)
	return w.Bytes()
}

// DecodePayload parses a Payload from its canonical binary encoding.
func DecodePayload(b []byte) (Payload, error) {
	r := wire.NewReader(b)
	hasPrev, err := wire.GetBool(r)
	if err != nil {
		return Payload{}, errs.Wrap(errs.Decode, err, "decode payload prev-lambda flag")
	}
	var prev *kdf.LambdaKey
	if hasPrev {
		var lambda kdf.LambdaKey
		if _, err := io.ReadFull(r, lambda[:]); err != nil {
			return Payload{}, errs.Wrap(errs.Decode, err, "decode payload prev-lambda")
		}
		prev = &lambda
	}
	var dn [16]byte
	if _, err := io.ReadFull(r, dn[:]); err != nil {
		return Payload{}, errs.Wrap(errs.Decode, err, "decode payload dn")
	}
	hfile, err := wire.GetBytes(r)
	if err != nil {
		return Payload{}, errs.Wrap(errs.Decode, err, "decode payload hfile")
	}
	return Payload{PrevLambda: prev, Ref: FileRef{DN: dn, HFile: hfile}}, nil
}

// Record is a single signed, sealed entry in a chain.
type Record struct {
	Kind Kind

	// ID and Set are populated only for Kind == Head.
	ID, Set string
	// HPrev is populated only for Kind == Tail: the Hash() of the
	// immediately preceding record.
	HPrev []byte

	Sealed seal.Sealed
	Sig    schnorr.ExtSignature
}

// Hash computes the record's content hash: for a Head record,
// H(id, set, kn∥ciphertext); for a Tail record, H(hprev, kn∥ciphertext).
// This is both the value each record signs and the value the next record's
// HPrev must match.
func (r Record) Hash() []byte {
	h := sha512.New512_256()
	switch r.Kind {
	case Head:
		h.Write([]byte(r.ID))   //nolint:errcheck
		h.Write([]byte{0})      //nolint:errcheck
		h.Write([]byte(r.Set))  //nolint:errcheck
		h.Write([]byte{0})      //nolint:errcheck
	case Tail:
		h.Write(r.HPrev) //nolint:errcheck
	}
	h.Write(r.Sealed.Kn.Encode())   //nolint:errcheck
	h.Write(r.Sealed.Ciphertext)    //nolint:errcheck
	return h.Sum(nil)
}

// Check verifies the record's embedded signature against its own Hash.
func (r Record) Check() bool {
	return r.Sig.Verify(r.Hash())
}

// Chain is an in-progress, append-only sequence of Records all sealed for
// the same master public key and signed by the same source keypair.
type Chain struct {
	signer group.KeyPair
	ek     group.Point
	id     string
	set    string

	lhash   []byte
	records []Record
}

// New starts a chain: it seals ref as the Head record, under ek (the master
// public key) and the (id, set) labels that every subsequent Tail record in
// this chain will implicitly share. It returns the chain and the λ the Head
// record was sealed under, which the caller must pass to the first Push
// call.
func New(signer group.KeyPair, ek group.Point, id, set string, ref FileRef) (*Chain, kdf.LambdaKey, error) {
	payload := Payload{Ref: ref}
	sealed, lambda, err := seal.SealWithLambda(ek, id, set, EncodePayload(payload))
	if err != nil {
		return nil, kdf.LambdaKey{}, errs.Wrap(errs.Io, err, "seal head record")
	}

	rec := Record{Kind: Head, ID: id, Set: set, Sealed: sealed}
	rec.Sig = schnorr.SignExt(signer.S, signer.Key, rec.Hash())

	c := &Chain{
		signer:  signer,
		ek:      ek,
		id:      id,
		set:     set,
		lhash:   rec.Hash(),
		records: []Record{rec},
	}
	return c, lambda, nil
}

// Push appends a new Tail record sealing ref, embedding prevLambda (the λ
// returned by the call that created the current last record) so that
// recovery can later unlock this chain's predecessor directly. It returns
// the λ this new record was sealed under, to be threaded into the next
// Push.
func (c *Chain) Push(prevLambda kdf.LambdaKey, ref FileRef) (kdf.LambdaKey, error) {
	payload := Payload{PrevLambda: &prevLambda, Ref: ref}
	sealed, lambda, err := seal.SealWithLambda(c.ek, c.id, c.set, EncodePayload(payload))
	if err != nil {
		return kdf.LambdaKey{}, errs.Wrap(errs.Io, err, "seal tail record")
	}

	rec := Record{Kind: Tail, HPrev: c.lhash, Sealed: sealed}
	rec.Sig = schnorr.SignExt(c.signer.S, c.signer.Key, rec.Hash())

	c.lhash = rec.Hash()
	c.records = append(c.records, rec)
	return lambda, nil
}

// Kn returns the ephemeral public point of the chain's current tail record
// -- the point a threshold share committee combines against to recover the
// alpha needed to open that record (and, transitively, every record before
// it).
func (c *Chain) Kn() group.Point {
	return c.records[len(c.records)-1].Sealed.Kn
}

// Records returns the chain's records in head-first order. The slice is a
// shallow copy: replacing its elements does not affect the Chain, but each
// Record's byte slices (HPrev, Sealed.Ciphertext) are shared with it.
func (c *Chain) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Validate checks that records forms a well-formed chain: it starts with
// exactly one Head record, every subsequent record is a Tail whose HPrev
// matches the hash of its predecessor, and every signature verifies.
func Validate(records []Record) error {
	if len(records) == 0 {
		return errs.New(errs.Shape, "chain has no records")
	}
	if records[0].Kind != Head {
		return errs.New(errs.Shape, "first record is not a head record")
	}
	for i := 1; i < len(records); i++ {
		if records[i].Kind != Tail {
			return errs.Errorf(errs.Shape, "record %d is not a tail record", i)
		}
		want := records[i-1].Hash()
		if !bytes.Equal(records[i].HPrev, want) {
			return errs.Errorf(errs.ChainLink, "record %d hprev does not match predecessor hash", i)
		}
	}
	for i, r := range records {
		if !r.Check() {
			return errs.Errorf(errs.Signature, "record %d has an invalid signature", i)
		}
	}
	return nil
}

// Recover walks records tail-to-head and returns the FileRef of every
// record, head-first. alpha is the Diffie-Hellman shared point for the
// *tail* record only (typically obtained via threshold PointVector.Recover
// applied to that tail's Kn); every earlier record is opened directly via
// the λ chain embedded in its successor's payload.
func Recover(records []Record, alpha group.Point, id, set string) ([]FileRef, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}

	refs := make([]FileRef, len(records))
	idx := len(records) - 1

	plaintext, err := seal.UnsealWithAlpha(alpha, records[idx].Sealed.Ciphertext, id, set)
	if err != nil {
		return nil, errs.Wrap(errs.Recovery, err, "unseal tail record")
	}
	payload, err := DecodePayload(plaintext)
	if err != nil {
		return nil, errs.Wrap(errs.Recovery, err, "decode tail payload")
	}
	refs[idx] = payload.Ref
	prevLambda := payload.PrevLambda
	if idx == 0 && prevLambda != nil {
		return nil, errs.New(errs.Recovery, "head record payload has a non-nil prev-lambda")
	}
	idx--

	for idx >= 0 {
		if prevLambda == nil {
			return nil, errs.Errorf(errs.Recovery, "record %d has no predecessor lambda to continue recovery", idx)
		}
		plaintext, err := seal.UnsealWithLambda(*prevLambda, records[idx].Sealed.Ciphertext)
		if err != nil {
			return nil, errs.Wrapf(errs.Recovery, err, "unseal record %d", idx)
		}
		payload, err := DecodePayload(plaintext)
		if err != nil {
			return nil, errs.Wrapf(errs.Recovery, err, "decode record %d payload", idx)
		}
		refs[idx] = payload.Ref
		prevLambda = payload.PrevLambda
		if idx == 0 && prevLambda != nil {
			return nil, errs.New(errs.Recovery, "head record payload has a non-nil prev-lambda")
		}
		idx--
	}
	return refs, nil
}
