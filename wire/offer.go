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
	"fmt"
)

// OfferMsg carries the filenames a peer is offering (spec.md §4.1, §4.4).
// Encoded as a uint16 count followed by that many NUL-terminated names —
// the same list-of-variable-length-fields idiom the teacher hand-rolls
// for HELLO address lists instead of forcing through struct-tag
// reflection (message/msg_hello.go).
type OfferMsg struct {
	Files []string
}

// Kind implements Message.
func (m *OfferMsg) Kind() Kind { return Offer }

func (m *OfferMsg) String() string {
	return fmt.Sprintf("OfferMsg{files=%v}", m.Files)
}

func writeOffer(buf *bytes.Buffer, m *OfferMsg) error {
	if err := writeUint16(buf, uint16(len(m.Files))); err != nil {
		return err
	}
	for _, f := range m.Files {
		if err := writeString(buf, f); err != nil {
			return err
		}
	}
	return nil
}

func readOffer(r *bytes.Reader) (*OfferMsg, error) {
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	m := &OfferMsg{Files: make([]string, 0, count)}
	for i := uint16(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		m.Files = append(m.Files, name)
	}
	return m, nil
}
