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
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cyphar/paperchain/pkg/fileadapter"
	"github.com/cyphar/paperchain/pkg/group"
)

var fileSizeMB float64

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Seal and load a file through the FileAdapter",
	RunE:  runFileBench,
}

func init() {
	fileCmd.Flags().Float64VarP(&fileSizeMB, "size-mb", "s", 8, "size of the benchmark payload, in MiB")
}

func runFileBench(cmd *cobra.Command, args []string) error {
	if fileSizeMB <= 0 {
		return errors.New("--size-mb must be positive")
	}
	size := int(fileSizeMB * 1024 * 1024)

	plaintext := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, plaintext); err != nil {
		return errors.Wrap(err, "generate benchmark payload")
	}

	signer, err := group.NewKeyPair()
	if err != nil {
		return errors.Wrap(err, "generate signer keypair")
	}
	defer signer.Destroy()

	var dn [16]byte
	if _, err := io.ReadFull(rand.Reader, dn[:]); err != nil {
		return errors.Wrap(err, "generate data-encryption key")
	}

	var sealed bytes.Buffer
	saveStart := time.Now()
	if _, err := fileadapter.Save(signer, dn, bytes.NewReader(plaintext), &sealed); err != nil {
		return errors.Wrap(err, "save sealed file")
	}
	saveElapsed := time.Since(saveStart)

	var recovered bytes.Buffer
	loadStart := time.Now()
	if _, err := fileadapter.Load(dn, bytes.NewReader(sealed.Bytes()), &recovered); err != nil {
		return errors.Wrap(err, "load sealed file")
	}
	loadElapsed := time.Since(loadStart)

	if !bytes.Equal(recovered.Bytes(), plaintext) {
		return errors.New("recovered plaintext does not match original")
	}

	mb := fileSizeMB
	fmt.Printf("file: %.2f MiB\n", mb)
	fmt.Printf("  save: %v (%.2f MiB/s)\n", saveElapsed, mb/saveElapsed.Seconds())
	fmt.Printf("  load: %v (%.2f MiB/s)\n", loadElapsed, mb/loadElapsed.Seconds())
	return nil
}
