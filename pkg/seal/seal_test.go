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

package seal

import (
	"bytes"
	"testing"

	"github.com/cyphar/paperchain/pkg/errs"
	"github.com/cyphar/paperchain/pkg/group"
)

func mustKeyPair(t *testing.T) group.KeyPair {
	t.Helper()
	kp, err := group.NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair failed: %v", err)
	}
	return kp
}

func TestSealUnsealRoundTrip(t *testing.T) {
	master := mustKeyPair(t)
	plaintext := []byte("encryption123456 the quick brown fox jumps over the lazy dog")

	sealed, err := Seal(master.Key, "record-1", "set-a", plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	got, err := Unseal(master.S, sealed, "record-1", "set-a")
	if err != nil {
		t.Fatalf("Unseal failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round-trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestSealUnsealEmptyPlaintext(t *testing.T) {
	master := mustKeyPair(t)
	sealed, err := Seal(master.Key, "id", "set", nil)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	got, err := Unseal(master.S, sealed, "id", "set")
	if err != nil {
		t.Fatalf("Unseal failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty plaintext, got %q", got)
	}
}

func TestUnsealWrongIDFails(t *testing.T) {
	master := mustKeyPair(t)
	sealed, err := Seal(master.Key, "id-a", "set", []byte("secret"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	_, err = Unseal(master.S, sealed, "id-b", "set")
	if err == nil {
		t.Fatalf("expected decryption to fail under wrong id, got success")
	}
}

func TestUnsealTruncatedCiphertextFails(t *testing.T) {
	master := mustKeyPair(t)
	sealed, err := Seal(master.Key, "id", "set", []byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	sealed.Ciphertext = sealed.Ciphertext[:len(sealed.Ciphertext)-1]
	_, err = Unseal(master.S, sealed, "id", "set")
	if !errs.Is(err, errs.Padding) {
		t.Errorf("expected errs.Padding for truncated ciphertext, got %v", err)
	}
}

func TestSealWithLambdaThenUnsealWithLambda(t *testing.T) {
	master := mustKeyPair(t)
	plaintext := []byte("lambda-chained payload")
	sealed, lambda, err := SealWithLambda(master.Key, "id", "set", plaintext)
	if err != nil {
		t.Fatalf("SealWithLambda failed: %v", err)
	}
	got, err := UnsealWithLambda(lambda, sealed.Ciphertext)
	if err != nil {
		t.Fatalf("UnsealWithLambda failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("UnsealWithLambda round-trip mismatch")
	}
	// Sanity: the DH-derived path must agree with the shortcut path.
	alpha := sealed.Kn.Mul(master.S)
	gotViaAlpha, err := UnsealWithAlpha(alpha, sealed.Ciphertext, "id", "set")
	if err != nil {
		t.Fatalf("UnsealWithAlpha failed: %v", err)
	}
	if !bytes.Equal(got, gotViaAlpha) {
		t.Errorf("UnsealWithLambda and UnsealWithAlpha disagree")
	}
}

func TestPointVectorRecoveredAlphaUnseals(t *testing.T) {
	master := mustKeyPair(t)
	plaintext := []byte("threshold-recovered payload")
	sealed, err := Seal(master.Key, "id", "set", plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	// Simulate a threshold-recovered alpha by just computing it directly --
	// the actual Lagrange recovery path is exercised in pkg/shares and
	// pkg/chain; here we only check UnsealWithAlpha's direct contract.
	alpha := sealed.Kn.Mul(master.S)
	got, err := UnsealWithAlpha(alpha, sealed.Ciphertext, "id", "set")
	if err != nil {
		t.Fatalf("UnsealWithAlpha failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("UnsealWithAlpha round-trip mismatch")
	}
}
