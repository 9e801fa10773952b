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

// TableEntry is one row of the offerings view (spec.md §3): a filename
// offered by a named owner, reachable at (Host, TCPPort). UDP ports are
// intentionally absent — peer-to-peer transfers only ever dial the TCP
// port (spec.md §3).
type TableEntry struct {
	Filename string
	Owner    string
	Host     string
	TCPPort  uint16
}

// TableMsg is the registry's full offerings view, pushed to every active
// peer by Reliable Push (spec.md §4.2) and used by each peer to replace
// its local cache wholesale (spec.md §3).
type TableMsg struct {
	Entries []TableEntry
}

// Kind implements Message.
func (m *TableMsg) Kind() Kind { return Table }

func (m *TableMsg) String() string {
	return fmt.Sprintf("TableMsg{%d entries}", len(m.Entries))
}

func writeTable(buf *bytes.Buffer, m *TableMsg) error {
	if err := writeUint16(buf, uint16(len(m.Entries))); err != nil {
		return err
	}
	for _, e := range m.Entries {
		if err := writeString(buf, e.Filename); err != nil {
			return err
		}
		if err := writeString(buf, e.Owner); err != nil {
			return err
		}
		if err := writeString(buf, e.Host); err != nil {
			return err
		}
		if err := writeUint16(buf, e.TCPPort); err != nil {
			return err
		}
	}
	return nil
}

func readTable(r *bytes.Reader) (*TableMsg, error) {
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	m := &TableMsg{Entries: make([]TableEntry, 0, count)}
	for i := uint16(0); i < count; i++ {
		var e TableEntry
		if e.Filename, err = readString(r); err != nil {
			return nil, err
		}
		if e.Owner, err = readString(r); err != nil {
			return nil, err
		}
		if e.Host, err = readString(r); err != nil {
			return nil, err
		}
		if e.TCPPort, err = readUint16(r); err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}
