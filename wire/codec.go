// This file is part of bootleg-bittorrent, a peer-to-peer file-sharing
// toolkit in Golang.
// Copyright (C) 2026 erl-ang
//
// bootleg-bittorrent is free software: you can redistribute it and/or
// modify it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// bootleg-bittorrent is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bfix/gospel/data"
)

// Encode serializes msg into a single datagram: a one-byte Kind tag
// followed by the kind-specific payload. Fixed-shape messages
// (RegisterMsg, RegisterAckMsg, DeregMsg and the empty acks) marshal
// through gospel/data's struct-tag reflection, exactly as the teacher's
// MsgChannel.Send does for GNUnet messages. List-shaped messages
// (OfferMsg, TableMsg) hand-roll their own writer, the way the teacher's
// HelloAddress does for its variable-length address list.
func Encode(msg Message) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(msg.Kind()))

	switch m := msg.(type) {
	case *RegisterMsg, *RegisterAckMsg, *DeregMsg,
		*TableAckMsg, *OfferAckMsg, *DeregAckMsg:
		body, err := data.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.Write(body)

	case *OfferMsg:
		if err := writeOffer(buf, m); err != nil {
			return nil, err
		}

	case *TableMsg:
		if err := writeTable(buf, m); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("wire: unknown message type %T", msg)
	}

	if buf.Len() > MaxDatagramSize {
		return nil, fmt.Errorf("wire: encoded message exceeds %d bytes", MaxDatagramSize)
	}
	return buf.Bytes(), nil
}

// Decode parses a received datagram into its typed Message. Any failure —
// an empty buffer, an unrecognized Kind, or a kind-specific parse error —
// collapses to ErrMalformed per spec.md §4.1.
func Decode(raw []byte) (Message, error) {
	if len(raw) < 1 {
		return nil, ErrMalformed
	}
	kind := Kind(raw[0])
	body := raw[1:]

	switch kind {
	case Register:
		m := new(RegisterMsg)
		if err := data.Unmarshal(m, body); err != nil {
			return nil, ErrMalformed
		}
		return m, nil

	case RegisterAck:
		m := new(RegisterAckMsg)
		if err := data.Unmarshal(m, body); err != nil {
			return nil, ErrMalformed
		}
		return m, nil

	case Dereg:
		m := new(DeregMsg)
		if err := data.Unmarshal(m, body); err != nil {
			return nil, ErrMalformed
		}
		return m, nil

	case TableAck:
		return new(TableAckMsg), nil

	case OfferAck:
		return new(OfferAckMsg), nil

	case DeregAck:
		return new(DeregAckMsg), nil

	case Offer:
		m, err := readOffer(bytes.NewReader(body))
		if err != nil {
			return nil, ErrMalformed
		}
		return m, nil

	case Table:
		m, err := readTable(bytes.NewReader(body))
		if err != nil {
			return nil, ErrMalformed
		}
		return m, nil

	default:
		return nil, ErrMalformed
	}
}

// writeString writes a NUL-terminated string, the convention the teacher's
// data.Marshal uses for the string kind and message/msg_hello.go's
// HelloAddress hand-rolls for its transport field.
func writeString(w io.Writer, s string) error {
	if _, err := w.Write([]byte(s)); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

// readString reads back a NUL-terminated string written by writeString.
func readString(r *bytes.Reader) (string, error) {
	var out []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(out), nil
		}
		out = append(out, b)
	}
}

func writeUint16(w io.Writer, v uint16) error {
	return binary.Write(w, binary.BigEndian, v)
}

func readUint16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}
