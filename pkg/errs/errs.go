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

// Package errs defines the small, closed set of error kinds that every other
// package in paperchain surfaces to callers. The core never recovers locally
// from a failure -- every error kind here is meant to propagate all the way
// up, so keeping them in one place means callers can always do
// errs.Is(err, errs.Signature) (or any other kind) without caring which
// package actually detected the problem.
package errs

import (
	"fmt"

	stderrors "errors"

	"github.com/pkg/errors"
)

// Kind enumerates the categories of error the core can produce. See spec §7.
type Kind int

const (
	// Decode covers bad base64/binary framing, non-canonical scalar or point
	// encodings, and wrong-length buffers.
	Decode Kind = iota
	// Shape covers a record kind mismatch (head expected but got tail, or
	// vice versa) or a missing option field.
	Shape
	// ChainLink covers tail.hprev != lhash.
	ChainLink
	// Signature covers a Schnorr verification that returned false.
	Signature
	// Padding covers a CBC/PKCS7 decryption integrity failure.
	Padding
	// Recovery covers a missing lambda or payload deserialization failure
	// encountered while walking a chain.
	Recovery
	// Threshold covers a share set that is too small or has duplicate
	// indices.
	Threshold
	// Io covers a passed-through reader/writer error.
	Io
)

func (k Kind) String() string {
	switch k {
	case Decode:
		return "decode"
	case Shape:
		return "shape"
	case ChainLink:
		return "chain-link"
	case Signature:
		return "signature"
	case Padding:
		return "padding"
	case Recovery:
		return "recovery"
	case Threshold:
		return "threshold"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by paperchain packages. It
// carries a Kind so callers can branch on the failure category, as well as
// the underlying (possibly wrapped) cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a new Error of the given kind with the provided message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Errorf constructs a new Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Wrap annotates err with msg and tags it with kind. If err is nil, Wrap
// returns nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, msg)}
}

// Wrapf is like Wrap but with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrapf(err, format, args...)}
}

// Is reports whether err (or any error it wraps) is a paperchain Error of
// the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if stderrors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		break
	}
	return false
}
