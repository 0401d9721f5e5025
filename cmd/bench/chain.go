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
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cyphar/paperchain/pkg/chain"
	"github.com/cyphar/paperchain/pkg/group"
	"github.com/cyphar/paperchain/pkg/polynomial"
	"github.com/cyphar/paperchain/pkg/shares"
)

var (
	chainThreshold uint
	chainShares    uint
	chainSize      int
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Build and recover a threshold-shared record chain",
	RunE:  runChainBench,
}

func init() {
	chainCmd.Flags().UintVarP(&chainThreshold, "threshold", "t", 16, "recovery threshold")
	chainCmd.Flags().UintVarP(&chainShares, "shares", "n", 49, "total shareholders")
	chainCmd.Flags().IntVarP(&chainSize, "size", "s", 8, "number of records in the chain")
}

func runChainBench(cmd *cobra.Command, args []string) error {
	if chainSize < 1 {
		return errors.New("--size must be at least 1")
	}
	if chainShares < chainThreshold {
		return errors.New("--shares must be at least --threshold")
	}

	master, err := group.NewKeyPair()
	if err != nil {
		return errors.Wrap(err, "generate master keypair")
	}
	defer master.Destroy()

	poly, err := polynomial.Random(master.S, chainThreshold-1)
	if err != nil {
		return errors.Wrap(err, "split master secret")
	}
	defer poly.Destroy()
	masterShares := poly.Shares(chainShares)

	signer, err := group.NewKeyPair()
	if err != nil {
		return errors.Wrap(err, "generate source keypair")
	}
	defer signer.Destroy()

	buildStart := time.Now()
	c, lambda, err := chain.New(signer, master.Key, "bench-id", "bench-set", chain.FileRef{HFile: []byte("record-0")})
	if err != nil {
		return errors.Wrap(err, "start chain")
	}
	for i := 1; i < chainSize; i++ {
		lambda, err = c.Push(lambda, chain.FileRef{HFile: []byte(fmt.Sprintf("record-%d", i))})
		if err != nil {
			return errors.Wrapf(err, "push record %d", i)
		}
	}
	buildElapsed := time.Since(buildStart)

	recoverStart := time.Now()
	kn := c.Kn()
	pv := make(shares.PointVector, 0, chainThreshold)
	for _, s := range masterShares[:chainThreshold] {
		pv = append(pv, shares.PointShare{Index: s.Index, Value: kn.Mul(s.Value)})
	}
	alpha, err := pv.Recover()
	if err != nil {
		return errors.Wrap(err, "threshold-recover tail alpha")
	}
	refs, err := chain.Recover(c.Records(), alpha, "bench-id", "bench-set")
	if err != nil {
		return errors.Wrap(err, "recover chain")
	}
	recoverElapsed := time.Since(recoverStart)

	if len(refs) != chainSize {
		return errors.Errorf("recovered %d records, expected %d", len(refs), chainSize)
	}

	fmt.Printf("chain: %d records, %d-of-%d threshold\n", chainSize, chainThreshold, chainShares)
	fmt.Printf("  build:   %v (%v/record)\n", buildElapsed, buildElapsed/time.Duration(chainSize))
	fmt.Printf("  recover: %v (%v/record)\n", recoverElapsed, recoverElapsed/time.Duration(chainSize))
	return nil
}
