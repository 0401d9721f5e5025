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

import "github.com/cyphar/paperchain/pkg/group"

// RecoverConst reconstructs the constant term f(0) = secret from a set of
// (x, f(x)) evaluation points, via LagrangeBasis evaluated at the origin. It
// is the scalar-domain analogue of the "in the exponent" recovery
// shares.PointVector.Recover performs.
//
// Unlike the modular-arithmetic Interpolate this package used to offer,
// paperchain never needs to reconstruct the full polynomial from shares --
// only the constant term (to recover a secret) or a single evaluation lifted
// into the group (to recover a chain's per-record key). Reconstructing the
// full Polynomial would let a coalition of t+1 shareholders mint additional
// valid shares for new holders without the dealer's involvement, a feature
// the reference implementation this protocol is based on never supports;
// omitting it here isn't a missing feature, it's removing an unwanted one.
func RecoverConst(xs []group.Scalar, ys []group.Scalar) group.Scalar {
	acc := group.ZeroScalar()
	for i := range xs {
		term := ys[i].Mul(LagrangeBasis(xs, i))
		acc = acc.Add(term)
	}
	return acc
}
