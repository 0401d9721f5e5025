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

package crypto

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// ExtraData is the unencrypted portion of a Packet: additional authenticated
// data for the ChaCha20-Poly1305 AEAD construction. pkg/vault leaves Headers
// nil for both the key-pair and share vault entries it seals, so the blob's
// outer VERSION/salt framing is not part of the additional data.
type ExtraData struct {
	Headers map[string]string `json:"hdr"`
}

// Packet is the {nonce, ciphertext, additional data} tuple an AEAD message
// is built from. pkg/vault.Seal/Open flatten a Packet's Nonce and Ciphertext
// into its own binary blob rather than using Packet's JSON encoding directly
// -- the vault's on-disk format is fixed binary framing, not JSON.
type Packet struct {
	Nonce      []byte
	Ciphertext []byte
	Extra      ExtraData
}

// wirePacket is Packet's actual JSON wire representation: identical
// contents, but []byte fields become base64-encoded strings. Encrypt/Decrypt
// work on a Packet's fields directly and never marshal a whole Packet,
// so this JSON form matters only where a Packet is marshaled wholesale
// (e.g. a caller persisting one outside of pkg/vault's flat blob format).
type wirePacket struct {
	Nonce      string    `json:"n"`
	Ciphertext string    `json:"d"`
	Extra      ExtraData `json:"ad"`
}

// wirePacket converts a Packet to the wirePacket version of it. This is done
// losslessly.
func (p Packet) wirePacket() wirePacket {
	return wirePacket{
		Nonce:      base64.StdEncoding.EncodeToString(p.Nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(p.Ciphertext),
		Extra:      p.Extra,
	}
}

// packet converts a wirePacket back to the exportable Packet version. This
// is done losslessly.
func (wp wirePacket) packet() (Packet, error) {
	nonce, err := base64.StdEncoding.DecodeString(wp.Nonce)
	if err != nil {
		return Packet{}, errors.Wrap(err, "decode nonce")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(wp.Ciphertext)
	if err != nil {
		return Packet{}, errors.Wrap(err, "decode ciphertext")
	}
	return Packet{
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Extra:      wp.Extra,
	}, nil
}

// MarshalJSON implements the JSON Marshaler interface for our wire format.
func (p Packet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wirePacket())
}

// UnmarshalJSON implements the JSON Unmarshaler interface for our wire format.
func (p *Packet) UnmarshalJSON(data []byte) error {
	var wp wirePacket
	if err := json.Unmarshal(data, &wp); err != nil {
		return errors.Wrap(err, "unmarshal wire packet")
	}
	newP, err := wp.packet()
	if err != nil {
		return errors.Wrap(err, "convert from wire packet")
	}
	*p = newP
	return nil
}
