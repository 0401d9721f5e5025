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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyphar/paperchain/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bench",
	Short: "Drive and benchmark paperchain record chains and sealed files",
	Long: `bench exercises the core paperchain primitives end-to-end: building and
recovering a threshold-shared record chain, sealing and loading a file
through the AES-128-CBC FileAdapter, and generating or combining
passphrase-vaulted shares.`,
	Version: version.Version,
}

func main() {
	rootCmd.AddCommand(chainCmd, fileCmd, keygenCmd, sharesCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}
}
