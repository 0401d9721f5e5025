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

// Package polynomial implements secret polynomials over the Ristretto255
// scalar field, their point-lifted commitments, and Lagrange interpolation --
// the machinery underneath Shamir-style secret sharing. Unlike the modular
// big.Int arithmetic this package is descended from, every operation here
// happens in a fixed, prime-order field, so there is no prime-generation step
// and no "is this modulus actually prime" bookkeeping.
package polynomial

import (
	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
)

// Polynomial represents f(x) = a0 + a1*x + ... + at*x^t, coefficients stored
// in increasing power of x. a0 is the secret.
type Polynomial struct {
	a []group.Scalar
}

// Random generates a new degree-t polynomial with a0 = secret and the
// remaining coefficients drawn uniformly from the scalar field. secret is
// consumed: Destroy on the returned Polynomial zeroizes a0 along with the
// rest of the coefficients, so the caller should not keep using the original
// value afterwards.
func Random(secret group.Scalar, degree uint) (Polynomial, error) {
	coeffs := make([]group.Scalar, degree+1)
	coeffs[0] = secret
	for i := uint(1); i <= degree; i++ {
		c, err := group.RandomScalar()
		if err != nil {
			return Polynomial{}, errs.Wrap(errs.Io, err, "generate random coefficient")
		}
		coeffs[i] = c
	}
	return Polynomial{a: coeffs}, nil
}

// Degree returns t, the highest power of x in the polynomial.
func (p Polynomial) Degree() uint {
	return uint(len(p.a) - 1)
}

// Const returns a0, the secret encoded by the polynomial.
func (p Polynomial) Const() group.Scalar {
	return p.a[0]
}

// Evaluate computes f(x) using Horner's method, iterating from the
// highest-degree coefficient down to the constant term.
func (p Polynomial) Evaluate(x group.Scalar) group.Scalar {
	result := group.ZeroScalar()
	for i := len(p.a) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.a[i])
	}
	return result
}

// Commit lifts every coefficient of p to the group by multiplying with Q,
// producing the public point-polynomial commitment F(x) = a0*Q + ... +
// at*x^t*Q. pkg/seal and pkg/chain do not use commitments;
// PointPolynomial.VerifyShare is the publicly-verifiable-secret-sharing
// check this commitment exists for.
func (p Polynomial) Commit(q group.Point) PointPolynomial {
	A := make([]group.Point, len(p.a))
	for i, ai := range p.a {
		A[i] = q.Mul(ai)
	}
	return PointPolynomial{A: A}
}

// Destroy zeroizes every coefficient, including the secret a0.
func (p *Polynomial) Destroy() {
	for i := range p.a {
		p.a[i].Destroy()
	}
	p.a = nil
}

// IndexedScalar is a single (index, value) evaluation point: f(i) for some
// positive integer i. It is the building block of a shares.Share.
type IndexedScalar struct {
	Index uint
	Value group.Scalar
}

// Shares evaluates f at x = 1..n and returns the resulting evaluation
// points. n = 0 yields an empty (but non-nil) slice.
func (p Polynomial) Shares(n uint) []IndexedScalar {
	shares := make([]IndexedScalar, 0, n)
	for i := uint(1); i <= n; i++ {
		x := group.ScalarFromUint64(uint64(i))
		shares = append(shares, IndexedScalar{Index: i, Value: p.Evaluate(x)})
	}
	return shares
}

func one() group.Scalar {
	return group.ScalarFromUint64(1)
}

// LagrangeBasis evaluates, at x=0, the Lagrange basis polynomial for index i
// within the given set of distinct x-coordinates:
//
//	l_i(0) = PROD_{j != i} range[j] / (range[j] - range[i])
//
// The result is undefined (incorrect output, not a panic or error) if range
// contains duplicate coordinates -- callers must guarantee distinctness,
// which shares.Vector.Recover and shares.PointVector.Recover check before
// interpolating.
func LagrangeBasis(rng []group.Scalar, i int) group.Scalar {
	num := one()
	den := one()
	for j := range rng {
		if j == i {
			continue
		}
		num = num.Mul(rng[j])
		den = den.Mul(rng[j].Sub(rng[i]))
	}
	return num.Mul(den.Invert())
}

// PointPolynomial is the public, point-lifted commitment to a Polynomial:
// F(x) = a0*Q + a1*x*Q + ... + at*x^t*Q.
type PointPolynomial struct {
	A []group.Point
}

// Degree returns t.
func (pp PointPolynomial) Degree() uint {
	return uint(len(pp.A) - 1)
}

// Evaluate computes F(x) using Horner's method in the group.
func (pp PointPolynomial) Evaluate(x group.Scalar) group.Point {
	result := group.IdentityPoint()
	for i := len(pp.A) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(pp.A[i])
	}
	return result
}

// VerifyShare checks that value is indeed F(index), i.e. that the share a
// holder claims to have is consistent with the publicly committed
// polynomial. This is the verifiable half of a publicly verifiable secret
// sharing scheme: a dealer publishes the PointPolynomial commitment once,
// and every holder can independently check their share against it without
// learning anything about the other shares or the secret.
func (pp PointPolynomial) VerifyShare(index uint, value group.Point) bool {
	x := group.ScalarFromUint64(uint64(index))
	return pp.Evaluate(x).Equal(value)
}
