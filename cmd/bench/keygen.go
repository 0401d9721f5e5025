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

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/polynomial"
	"github.com/cyphar/paperchain/pkg/shares"
	"github.com/cyphar/paperchain/pkg/vault"
)

var (
	keygenThreshold  uint
	keygenShares     uint
	keygenOutDir     string
	keygenPassphrase string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a master keypair and a t-of-n vaulted share set",
	RunE:  runKeygen,
}

func init() {
	keygenCmd.Flags().UintVarP(&keygenThreshold, "threshold", "t", 16, "recovery threshold")
	keygenCmd.Flags().UintVarP(&keygenShares, "shares", "n", 49, "total shareholders")
	keygenCmd.Flags().StringVarP(&keygenOutDir, "out", "o", ".", "output directory for vaulted shares")
	keygenCmd.Flags().StringVarP(&keygenPassphrase, "passphrase", "p", "", "passphrase protecting each vaulted share (required)")
	keygenCmd.MarkFlagRequired("passphrase") //nolint:errcheck
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if keygenShares < keygenThreshold {
		return errors.New("--shares must be at least --threshold")
	}
	if keygenPassphrase == "" {
		return errors.New("--passphrase must not be empty")
	}
	if err := os.MkdirAll(keygenOutDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	master, err := group.NewKeyPair()
	if err != nil {
		return errors.Wrap(err, "generate master keypair")
	}
	defer master.Destroy()

	poly, err := polynomial.Random(master.S, keygenThreshold-1)
	if err != nil {
		return errors.Wrap(err, "split master secret")
	}
	defer poly.Destroy()

	masterBlob, err := vault.Seal([]byte(keygenPassphrase), vault.EncodeKeyPair(master))
	if err != nil {
		return errors.Wrap(err, "seal master keypair")
	}
	masterPath := filepath.Join(keygenOutDir, "master.vault")
	if err := os.WriteFile(masterPath, masterBlob, 0o600); err != nil {
		return errors.Wrap(err, "write master vault")
	}

	for _, s := range poly.Shares(keygenShares) {
		blob, err := vault.Seal([]byte(keygenPassphrase), vault.EncodeShare(shares.Share{Index: s.Index, Value: s.Value}))
		if err != nil {
			return errors.Wrapf(err, "seal share %d", s.Index)
		}
		sharePath := filepath.Join(keygenOutDir, fmt.Sprintf("share-%d.vault", s.Index))
		if err := os.WriteFile(sharePath, blob, 0o600); err != nil {
			return errors.Wrapf(err, "write share %d", s.Index)
		}
	}

	fmt.Printf("wrote %s and %d share vaults to %s\n", masterPath, keygenShares, keygenOutDir)
	fmt.Printf("public key: %s\n", hex.EncodeToString(master.Key.Encode()))
	return nil
}
