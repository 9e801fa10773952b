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
	"net"
	"sync"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/ledger"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// ackAttempts/ackTimeout mirror the registry's Reliable Push
// parameters for every peer-initiated ack-waiting operation: register,
// offer, dereg (spec.md §4.4: "500 ms / three-attempt rule").
const (
	ackAttempts = 3
	ackTimeout  = 500 * time.Millisecond
)

// Peer is one running peer process. The three concurrent tasks of §5
// (command, demultiplexer, stream acceptor) share the fields below; the
// datagram socket is read only by the demultiplexer, written by any task,
// and the cache is written only by the demultiplexer, read only by the
// command task (§5's shared-resource rules).
type Peer struct {
	conn    *net.UDPConn
	regAddr *net.UDPAddr
	tcpLn   net.Listener

	Name    string
	TCPPort uint16

	// shareMu guards dir and offered: the command task writes both
	// (cmdSetdir, cmdOffer), the stream acceptor task reads both for
	// every inbound request (isOffered, transferServer). Without this
	// lock the two tasks race on a bare map, which Go fatals on rather
	// than merely corrupting (concurrent map read and map write).
	shareMu sync.RWMutex
	dir     string
	cache   *Cache
	offered map[string]struct{}

	offline bool

	offerAckCh chan struct{}
	deregAckCh chan struct{}

	ledger ledger.Ledger

	stopAcceptor chan struct{}
}

// New binds the peer's UDP control-plane socket and TCP stream acceptor.
// It does not register; the caller runs Register afterwards, so the TCP
// listener is bound before registration begins and the contact tuple
// advertised is already reachable (spec.md §4.5).
func New(regAddr *net.UDPAddr, laddr *net.UDPAddr, tcpAddr string, name string) (*Peer, error) {
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", tcpAddr)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	tcpPort := uint16(ln.Addr().(*net.TCPAddr).Port)

	p := &Peer{
		conn:         conn,
		regAddr:      regAddr,
		tcpLn:        ln,
		Name:         name,
		TCPPort:      tcpPort,
		cache:        NewCache(),
		offered:      make(map[string]struct{}),
		offerAckCh:   make(chan struct{}, 1),
		deregAckCh:   make(chan struct{}, 1),
		stopAcceptor: make(chan struct{}),
	}
	return p, nil
}

// SetLedger attaches an optional transfer ledger (SPEC_FULL.md §4.7).
func (p *Peer) SetLedger(l ledger.Ledger) {
	p.ledger = l
}

// PreBindDir binds the share directory up front, the way a bootstrap
// persona's "dir" field pre-fills what `setdir` would otherwise do
// interactively (SPEC_FULL.md §2.1). It does not validate the path;
// an invalid pre-bound directory simply surfaces as transfer-time
// rejections, same as a directory removed after a successful setdir.
func (p *Peer) PreBindDir(dir string) {
	p.shareMu.Lock()
	defer p.shareMu.Unlock()
	p.dir = dir
}

// dirPath returns the currently bound share directory, or "" if unbound.
func (p *Peer) dirPath() string {
	p.shareMu.RLock()
	defer p.shareMu.RUnlock()
	return p.dir
}

// setDir binds the share directory if no files are currently offered,
// reporting whether the bind happened.
func (p *Peer) setDir(dir string) bool {
	p.shareMu.Lock()
	defer p.shareMu.Unlock()
	if len(p.offered) > 0 {
		return false
	}
	p.dir = dir
	return true
}

// addOffered records files as offered following a successful OFFER_ACK.
func (p *Peer) addOffered(files []string) {
	p.shareMu.Lock()
	defer p.shareMu.Unlock()
	for _, f := range files {
		p.offered[f] = struct{}{}
	}
}

// isOffered reports whether filename is currently in this peer's own
// offer set, tracked by the most recent successful `offer` command.
func (p *Peer) isOffered(filename string) bool {
	p.shareMu.RLock()
	defer p.shareMu.RUnlock()
	_, ok := p.offered[filename]
	return ok
}

// Close releases the peer's sockets and ledger.
func (p *Peer) Close() {
	_ = p.conn.Close()
	_ = p.tcpLn.Close()
	if p.ledger != nil {
		_ = p.ledger.Close()
	}
}

// stopAcceptorTask unblocks RunAcceptor's pending Accept and signals it to
// return, implementing spec.md §4.4's "stop the stream acceptor" on
// successful or exhausted dereg.
func (p *Peer) stopAcceptorTask() {
	select {
	case <-p.stopAcceptor:
		// already stopped
	default:
		close(p.stopAcceptor)
		_ = p.tcpLn.Close()
	}
}

// Register outcomes returned by Register.
var (
	errNameTaken           = fmt.Errorf("already registered, registration rejected")
	errServerNotResponding = fmt.Errorf("server not responding")
)

// Register performs the initial REGISTER/REGISTER_ACK exchange (spec.md
// §4.4). It must succeed before the demultiplexer, acceptor, and shell
// start.
func (p *Peer) Register() error {
	for attempt := 1; attempt <= ackAttempts; attempt++ {
		if err := wire.SendTo(p.conn, p.regAddr, &wire.RegisterMsg{Name: p.Name, TCPPort: p.TCPPort}); err != nil {
			logger.Printf(logger.WARN, "[peer] register send failed: %s\n", err.Error())
			continue
		}
		msg, from, err := wire.Receive(p.conn, ackTimeout)
		if err != nil {
			if wire.IsTimeout(err) {
				logger.Printf(logger.DBG, "[peer] register attempt %d/%d timed out\n", attempt, ackAttempts)
				continue
			}
			continue
		}
		if from.String() != p.regAddr.String() {
			continue
		}
		ack, ok := msg.(*wire.RegisterAckMsg)
		if !ok {
			continue
		}
		if ack.Status == wire.RegisterNameTaken {
			return errNameTaken
		}
		return nil
	}
	return errServerNotResponding
}
