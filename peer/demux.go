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

package peer

import (
	"fmt"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// RunDemux owns the peer's datagram receive end exclusively for the
// remainder of the process lifetime (spec.md §4.3). It must not block on
// anything except the datagram read.
func (p *Peer) RunDemux() {
	for {
		msg, from, err := wire.Receive(p.conn, 0)
		if err != nil {
			logger.Printf(logger.WARN, "[peer] demux receive failed: %s\n", err.Error())
			continue
		}
		switch m := msg.(type) {
		case *wire.TableMsg:
			// cache swap happens-before the TABLE_ACK and the status line
			// (spec.md §5's ordering guarantee (b))
			p.cache.Replace(m.Entries)
			if err := wire.SendTo(p.conn, from, &wire.TableAckMsg{}); err != nil {
				logger.Printf(logger.WARN, "[peer] table ack failed: %s\n", err.Error())
			}
			fmt.Println("Client table updated")

		case *wire.OfferAckMsg:
			offerNotify(p.offerAckCh)

		case *wire.DeregAckMsg:
			offerNotify(p.deregAckCh)

		default:
			// late acks, stray traffic, or anything not addressed to the
			// demultiplexer: discard (spec.md §4.3)
			logger.Printf(logger.DBG, "[peer] demux discarding %s from %s\n", msg.Kind(), from)
		}
	}
}

// offerNotify pushes onto a single-slot ack queue, drop-newest on overflow
// (spec.md §5: "a stale ack never blocks a fresh one").
func offerNotify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
