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

package shares

import (
	"testing"

	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/polynomial"
)

func mustSecret(t *testing.T) group.Scalar {
	t.Helper()
	s, err := group.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	return s
}

// splitScheme builds a (threshold, n) sharing of a fresh random secret and
// returns the secret, the full set of n shares, and the PVSS commitment to
// the underlying polynomial (against the standard base point).
func splitScheme(t *testing.T, threshold, n uint) (group.Scalar, Vector, polynomial.PointPolynomial) {
	t.Helper()
	secret := mustSecret(t)
	poly, err := polynomial.Random(secret, threshold-1)
	if err != nil {
		t.Fatalf("polynomial.Random failed: %v", err)
	}
	raw := poly.Shares(n)
	vec := make(Vector, len(raw))
	for i, s := range raw {
		vec[i] = Share{Index: s.Index, Value: s.Value}
	}
	return secret, vec, poly.Commit(group.BasePoint())
}

func TestRecoverAtThreshold(t *testing.T) {
	secret, shares, _ := splitScheme(t, 3, 5)
	subset := shares[:3]
	recovered, err := subset.Recover()
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if !recovered.Equal(secret) {
		t.Errorf("recovered secret does not match original")
	}
}

func TestRecoverAnyThresholdSubset(t *testing.T) {
	secret, shares, _ := splitScheme(t, 4, 9)
	// Pick a scattered subset rather than a contiguous prefix.
	subset := Vector{shares[1], shares[3], shares[5], shares[8]}
	recovered, err := subset.Recover()
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if !recovered.Equal(secret) {
		t.Errorf("recovered secret does not match original for scattered subset")
	}
}

func TestRecoverDuplicateIndexRejected(t *testing.T) {
	_, shares, _ := splitScheme(t, 3, 5)
	subset := Vector{shares[0], shares[0], shares[1]}
	_, err := subset.Recover()
	if err == nil {
		t.Fatalf("expected duplicate-index error, got nil")
	}
	if !errs.Is(err, errs.Threshold) {
		t.Errorf("expected errs.Threshold, got %v", err)
	}
}

func TestRecoverEmptyVectorRejected(t *testing.T) {
	var v Vector
	if _, err := v.Recover(); !errs.Is(err, errs.Threshold) {
		t.Errorf("expected errs.Threshold for empty vector, got %v", err)
	}
}

func TestPointVectorRecoverMatchesLiftedSecret(t *testing.T) {
	secret, shares, _ := splitScheme(t, 3, 6)
	Q := group.BasePoint()
	pv := make(PointVector, 0, 3)
	for _, s := range shares[:3] {
		pv = append(pv, PointShare{Index: s.Index, Value: Q.Mul(s.Value)})
	}
	recovered, err := pv.Recover()
	if err != nil {
		t.Fatalf("PointVector.Recover failed: %v", err)
	}
	want := Q.Mul(secret)
	if !recovered.Equal(want) {
		t.Errorf("recovered point does not match Q*secret")
	}
}

func TestPointPolynomialVerifyShare(t *testing.T) {
	_, shares, commitment := splitScheme(t, 3, 5)
	Q := group.BasePoint()
	for _, s := range shares {
		lifted := Q.Mul(s.Value)
		if !commitment.VerifyShare(s.Index, lifted) {
			t.Errorf("VerifyShare rejected a genuine share at index %d", s.Index)
		}
	}
	// A forged share (wrong value at a genuine index) must be rejected.
	forged := Q.Mul(shares[0].Value.Add(group.ScalarFromUint64(1)))
	if commitment.VerifyShare(shares[0].Index, forged) {
		t.Errorf("VerifyShare accepted a forged share")
	}
}
