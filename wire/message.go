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

// Package wire implements the transport envelope & codec of spec.md §4.1:
// it serializes the eight control message kinds exchanged between a peer
// and the registry into single datagrams, and parses datagrams back into
// typed messages.
package wire

import (
	"fmt"
)

// MaxDatagramSize is the buffer every datagram read/write is sized
// against. spec.md §4.1 requires "a buffer >= 8 KiB"; registry tables and
// offer lists are expected to stay well under this on the tens-of-peers
// LAN scale the design targets.
const MaxDatagramSize = 8 * 1024

// ErrMalformed is returned (and logged, then dropped per spec.md §4.1 and
// §7.4) whenever a datagram cannot be parsed as one of the recognized
// kinds.
var ErrMalformed = fmt.Errorf("malformed datagram")

// Message is implemented by every control message kind.
type Message interface {
	// Kind identifies the wire tag this message encodes as.
	Kind() Kind
}
