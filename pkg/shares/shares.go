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

// Package shares implements the holder-facing half of threshold secret
// sharing: individual (index, value) shares, vectors of them, and the
// Lagrange-interpolation recovery that turns t+1 shares back into a secret
// or, for the "in the exponent" variant, a group element. The underlying
// polynomial machinery lives in pkg/polynomial; this package is concerned
// with what a shareholder actually stores and exchanges.
package shares

import (
	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/polynomial"
)

// Share is a single scalar-valued evaluation point f(Index), handed to one
// shareholder.
type Share struct {
	Index uint
	Value group.Scalar
}

// PointShare is the group-lifted counterpart of Share: F(Index) = f(Index)*Q
// for some base point Q. PVSS dealers publish a PointPolynomial commitment
// and each holder can verify their Share against it by lifting it and
// comparing against PointPolynomial.VerifyShare.
type PointShare struct {
	Index uint
	Value group.Point
}

// Vector is a set of Shares collected from distinct holders, ready for
// threshold recovery.
type Vector []Share

// validate checks that v has no duplicate indices, returning an
// errs.Threshold error if it does. Encountering the same index twice means
// either a share was submitted more than once, or two different holders were
// (accidentally or maliciously) issued the same index -- either way the
// Lagrange basis computation would divide by zero, so we reject before that
// happens rather than let Invert() on a zero scalar misbehave.
func (v Vector) validate() error {
	seen := make(map[uint]struct{}, len(v))
	for _, s := range v {
		if _, ok := seen[s.Index]; ok {
			return errs.Errorf(errs.Threshold, "duplicate share index %d", s.Index)
		}
		seen[s.Index] = struct{}{}
	}
	return nil
}

// Recover reconstructs f(0), the secret encoded by the shares in v, via
// Lagrange interpolation at the origin. The caller is responsible for
// ensuring len(v) is at least the scheme's threshold; Recover has no way to
// tell "too few genuine shares" apart from "the right number of shares but
// the wrong secret" -- both simply produce a well-formed but incorrect
// scalar.
func (v Vector) Recover() (group.Scalar, error) {
	if len(v) == 0 {
		return group.Scalar{}, errs.New(errs.Threshold, "no shares to recover from")
	}
	if err := v.validate(); err != nil {
		return group.Scalar{}, err
	}
	xs := make([]group.Scalar, len(v))
	ys := make([]group.Scalar, len(v))
	for i, s := range v {
		xs[i] = group.ScalarFromUint64(uint64(s.Index))
		ys[i] = s.Value
	}
	return polynomial.RecoverConst(xs, ys), nil
}

// Destroy zeroizes every share value in the vector.
func (v Vector) Destroy() {
	for i := range v {
		v[i].Value.Destroy()
	}
}

// PointVector is the group-lifted counterpart of Vector, used to recover a
// group element (e.g. the shared point e*kn that opens a chain's tail
// record) "in the exponent" without ever reconstructing the underlying
// scalar.
type PointVector []PointShare

func (v PointVector) validate() error {
	seen := make(map[uint]struct{}, len(v))
	for _, s := range v {
		if _, ok := seen[s.Index]; ok {
			return errs.Errorf(errs.Threshold, "duplicate share index %d", s.Index)
		}
		seen[s.Index] = struct{}{}
	}
	return nil
}

// Recover reconstructs F(0) = f(0)*Q via Lagrange interpolation performed
// directly on the group elements: the same basis coefficients as the scalar
// case, but accumulated with point scalar-multiplication and addition
// instead of field multiplication and addition.
func (v PointVector) Recover() (group.Point, error) {
	if len(v) == 0 {
		return group.Point{}, errs.New(errs.Threshold, "no point shares to recover from")
	}
	if err := v.validate(); err != nil {
		return group.Point{}, err
	}
	xs := make([]group.Scalar, len(v))
	for i, s := range v {
		xs[i] = group.ScalarFromUint64(uint64(s.Index))
	}
	acc := group.IdentityPoint()
	for i, s := range v {
		basis := polynomial.LagrangeBasis(xs, i)
		acc = acc.Add(s.Value.Mul(basis))
	}
	return acc, nil
}
