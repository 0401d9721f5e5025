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
	"testing"

	"github.com/cyphar/paperchain/pkg/group"
)

// mustRandomScalar generates a random scalar, failing the test immediately on
// CSPRNG failure (which should never happen in practice).
func mustRandomScalar(t *testing.T) group.Scalar {
	t.Helper()
	s, err := group.RandomScalar()
	if err != nil {
		t.Fatalf("failed to generate random scalar: %v", err)
	}
	return s
}

// scalarRange builds the x-coordinates 1..n as scalars, the evaluation points
// every Shares() call uses.
func scalarRange(n uint) []group.Scalar {
	xs := make([]group.Scalar, n)
	for i := uint(0); i < n; i++ {
		xs[i] = group.ScalarFromUint64(uint64(i + 1))
	}
	return xs
}
