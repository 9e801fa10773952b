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

package registry

import (
	"net"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// pushAttempts and pushTimeout implement spec.md §4.2's Reliable Push: up
// to 3 total attempts, each waiting up to 500ms for a matching ack.
const (
	pushAttempts = 3
	pushTimeout  = 500 * time.Millisecond
)

// reliablePush sends msg to target up to pushAttempts times, waiting up to
// pushTimeout for a wantKind ack from target after each send. It returns
// true as soon as a matching ack arrives, false once every attempt has
// timed out.
func reliablePush(conn *net.UDPConn, target *net.UDPAddr, msg wire.Message, wantKind wire.Kind) bool {
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		if err := wire.SendTo(conn, target, msg); err != nil {
			logger.Printf(logger.WARN, "[registry] push to %s failed: %s\n", target, err.Error())
			continue
		}
		if awaitAck(conn, target, wantKind, pushTimeout) {
			return true
		}
		logger.Printf(logger.DBG, "[registry] attempt %d/%d to %s timed out\n", attempt, pushAttempts, target)
	}
	return false
}

// awaitAck reads datagrams from conn until one of kind arrives from
// target, or timeout elapses. Per spec.md §9's documented single-threaded
// limitation, any datagram that does not match (kind, target) received
// during this window is logged and discarded rather than queued: the
// registry cannot service other peers while a push is outstanding.
func awaitAck(conn *net.UDPConn, target *net.UDPAddr, kind wire.Kind, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		msg, from, err := wire.Receive(conn, remaining)
		if err != nil {
			if wire.IsTimeout(err) {
				return false
			}
			// malformed or transient read error: keep waiting out the deadline
			continue
		}
		if msg.Kind() == kind && from.String() == target.String() {
			return true
		}
		logger.Printf(logger.DBG, "[registry] dropping %s from %s while awaiting %s from %s\n",
			msg.Kind(), from, kind, target)
	}
}
