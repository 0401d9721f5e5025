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

package polynomial

import (
	"fmt"
	"testing"

	"github.com/cyphar/paperchain/pkg/group"
)

// TestRecoverConst checks that, for a series of random polynomials, sampling
// exactly degree+1 of their shares and feeding them to RecoverConst
// reproduces the original secret.
func TestRecoverConst(t *testing.T) {
	const trials = 32
	const maxDegree = 10
	for i := 0; i < trials; i++ {
		t.Run(fmt.Sprintf("trial_%d", i), func(t *testing.T) {
			degree := uint(i % maxDegree)
			secret := mustRandomScalar(t)
			poly, err := Random(secret, degree)
			if err != nil {
				t.Fatalf("Random(_, %d) failed: %v", degree, err)
			}

			n := degree + 1
			xs := scalarRange(n)
			ys := make([]group.Scalar, n)
			for idx, x := range xs {
				ys[idx] = poly.Evaluate(x)
			}

			recovered := RecoverConst(xs, ys)
			if !recovered.Equal(poly.Const()) {
				t.Errorf("RecoverConst did not reproduce secret for degree %d", degree)
			}
		})
	}
}

// TestLagrangeBasisDegreeZero checks the single-node case: with one
// x-coordinate the basis value at the origin is the empty product, 1, and a
// degree-0 polynomial evaluates to its constant term everywhere.
func TestLagrangeBasisDegreeZero(t *testing.T) {
	secret := mustRandomScalar(t)
	poly, err := Random(secret, 0)
	if err != nil {
		t.Fatalf("Random(_, 0) failed: %v", err)
	}
	xs := scalarRange(1)
	basis := LagrangeBasis(xs, 0)
	if !basis.Equal(group.ScalarFromUint64(1)) {
		t.Errorf("single-node Lagrange basis should be 1")
	}
	if !poly.Evaluate(xs[0]).Equal(poly.Const()) {
		t.Errorf("degree-0 polynomial must be constant everywhere")
	}
}
