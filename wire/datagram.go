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
	"encoding/hex"
	"net"
	"time"

	"github.com/bfix/gospel/logger"
)

// SendTo encodes msg and writes it as a single datagram to addr. Mirrors
// the teacher's MsgChannel.Send: a debug hex dump of the outgoing wire
// bytes, then a single Write.
func SendTo(conn *net.UDPConn, addr *net.UDPAddr, msg Message) error {
	raw, err := Encode(msg)
	if err != nil {
		return err
	}
	logger.Printf(logger.DBG, "[wire] ==> %s to %s\n", msg.Kind(), addr)
	logger.Printf(logger.DBG, "[wire]     [%s]\n", hex.EncodeToString(raw))
	n, err := conn.WriteToUDP(raw, addr)
	if err != nil {
		return err
	}
	if n != len(raw) {
		return ErrMalformed
	}
	return nil
}

// Receive blocks for up to timeout waiting for the next datagram on conn,
// returning the decoded message and the sender's address. A zero timeout
// blocks forever, matching the demultiplexer's permanent read loop
// (spec.md §4.3: "Block-read datagrams forever").
func Receive(conn *net.UDPConn, timeout time.Duration) (Message, *net.UDPAddr, error) {
	buf := make([]byte, MaxDatagramSize)
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, nil, err
		}
	} else {
		if err := conn.SetReadDeadline(time.Time{}); err != nil {
			return nil, nil, err
		}
	}
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, from, err
	}
	msg, err := Decode(buf[:n])
	if err != nil {
		logger.Printf(logger.DBG, "[wire] dropping malformed datagram from %s\n", from)
		return nil, from, err
	}
	logger.Printf(logger.DBG, "[wire] <== %s from %s\n", msg.Kind(), from)
	return msg, from, nil
}

// IsTimeout reports whether err is a read/write deadline expiry, as
// opposed to some other I/O failure.
func IsTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
