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
	"net"

	"github.com/bfix/gospel/logger"
)

// RunAcceptor accepts one stream connection at a time, running the
// Transfer Server sub-protocol to completion before accepting the next
// (spec.md §4.5). It stops once the peer deregisters.
func (p *Peer) RunAcceptor() {
	for {
		select {
		case <-p.stopAcceptor:
			return
		default:
		}
		conn, err := p.tcpLn.Accept()
		if err != nil {
			select {
			case <-p.stopAcceptor:
				return
			default:
			}
			logger.Printf(logger.WARN, "[peer] accept failed: %s\n", err.Error())
			continue
		}
		p.transferServer(conn)
	}
}
