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

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cyphar/paperchain/pkg/shares"
	"github.com/cyphar/paperchain/pkg/vault"
)

var combinePassphrase string

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Operate on vaulted shamir-style shares",
}

var combineCmd = &cobra.Command{
	Use:   "combine <share.vault>...",
	Short: "Recover the shared secret from a threshold set of vaulted shares",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCombine,
}

func init() {
	combineCmd.Flags().StringVarP(&combinePassphrase, "passphrase", "p", "", "passphrase protecting each vaulted share (required)")
	combineCmd.MarkFlagRequired("passphrase") //nolint:errcheck
	sharesCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, args []string) error {
	if combinePassphrase == "" {
		return errors.New("--passphrase must not be empty")
	}

	var vec shares.Vector
	for _, path := range args {
		blob, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		var record vault.ShareRecord
		if err := vault.Open([]byte(combinePassphrase), blob, &record); err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		share, err := record.Decode()
		if err != nil {
			return errors.Wrapf(err, "decode %s", path)
		}
		vec = append(vec, share)
	}

	secret, err := vec.Recover()
	if err != nil {
		return errors.Wrap(err, "recover secret")
	}
	defer secret.Destroy()

	fmt.Printf("recovered %d-share secret: %s\n", len(vec), hex.EncodeToString(secret.Encode()))
	return nil
}
