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
	"testing"
	"time"

	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// newTestRegistry binds a registry to an ephemeral loopback UDP port and
// starts its receive loop, returning the registry and its address.
func newTestRegistry(t *testing.T) (*Registry, *net.UDPAddr) {
	t.Helper()
	laddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	reg, err := New(laddr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	go reg.Run()
	return reg, reg.conn.LocalAddr().(*net.UDPAddr)
}

// newTestPeer opens a loopback UDP socket standing in for one peer.
func newTestPeer(t *testing.T) *net.UDPConn {
	t.Helper()
	laddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRegisterThenWelcomeTable(t *testing.T) {
	_, regAddr := newTestRegistry(t)
	peer := newTestPeer(t)

	if err := wire.SendTo(peer, regAddr, &wire.RegisterMsg{Name: "alice", TCPPort: 5000}); err != nil {
		t.Fatal(err)
	}
	msg, _, err := wire.Receive(peer, time.Second)
	if err != nil {
		t.Fatalf("waiting for register ack: %v", err)
	}
	ack, ok := msg.(*wire.RegisterAckMsg)
	if !ok || ack.Status != wire.RegisterOK {
		t.Fatalf("got %+v, want ok ack", msg)
	}

	// the registry immediately pushes the (empty) view after a welcome ack
	msg, _, err = wire.Receive(peer, time.Second)
	if err != nil {
		t.Fatalf("waiting for welcome table: %v", err)
	}
	if _, ok := msg.(*wire.TableMsg); !ok {
		t.Fatalf("got %T, want *TableMsg", msg)
	}
	if err := wire.SendTo(peer, regAddr, &wire.TableAckMsg{}); err != nil {
		t.Fatal(err)
	}
}

func TestRegisterNameTaken(t *testing.T) {
	_, regAddr := newTestRegistry(t)
	alice := newTestPeer(t)
	bob := newTestPeer(t)

	mustRegister(t, alice, regAddr, "alice", 5001)
	_ = wire.SendTo(bob, regAddr, &wire.RegisterMsg{Name: "alice", TCPPort: 5002})
	msg, _, err := wire.Receive(bob, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ack, ok := msg.(*wire.RegisterAckMsg)
	if !ok || ack.Status != wire.RegisterNameTaken {
		t.Fatalf("got %+v, want name_taken", msg)
	}
}

func TestOfferTriggersBroadcastToAllActive(t *testing.T) {
	_, regAddr := newTestRegistry(t)
	alice := newTestPeer(t)
	bob := newTestPeer(t)

	mustRegister(t, alice, regAddr, "alice", 5003)
	mustRegister(t, bob, regAddr, "bob", 5004)

	if err := wire.SendTo(alice, regAddr, &wire.OfferMsg{Files: []string{"song.mp3"}}); err != nil {
		t.Fatal(err)
	}
	msg, _, err := wire.Receive(alice, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(*wire.OfferAckMsg); !ok {
		t.Fatalf("got %T, want *OfferAckMsg", msg)
	}

	// both alice and bob should receive a refreshed TABLE naming song.mp3
	for _, name := range []string{"alice", "bob"} {
		conn := alice
		if name == "bob" {
			conn = bob
		}
		found := false
		for i := 0; i < 3; i++ {
			msg, _, err := wire.Receive(conn, time.Second)
			if err != nil {
				t.Fatalf("%s waiting for broadcast table: %v", name, err)
			}
			tbl, ok := msg.(*wire.TableMsg)
			if !ok {
				continue
			}
			_ = wire.SendTo(conn, regAddr, &wire.TableAckMsg{})
			for _, e := range tbl.Entries {
				if e.Filename == "song.mp3" && e.Owner == "alice" {
					found = true
				}
			}
			if found {
				break
			}
		}
		if !found {
			t.Fatalf("%s never saw song.mp3 in a broadcast table", name)
		}
	}
}

func TestDeregisterClearsFiles(t *testing.T) {
	reg, regAddr := newTestRegistry(t)
	alice := newTestPeer(t)

	mustRegister(t, alice, regAddr, "alice", 5005)
	_ = wire.SendTo(alice, regAddr, &wire.OfferMsg{Files: []string{"a.bin"}})
	drainUntil[*wire.OfferAckMsg](t, alice)
	drainTableAck(t, alice, regAddr)

	if err := wire.SendTo(alice, regAddr, &wire.DeregMsg{Name: "alice"}); err != nil {
		t.Fatal(err)
	}
	msg, _, err := wire.Receive(alice, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(*wire.DeregAckMsg); !ok {
		t.Fatalf("got %T, want *DeregAckMsg", msg)
	}
	// the record is flipped offline with its files cleared before the ack is sent
	rec, ok := reg.Table().Get(alice.LocalAddr().(*net.UDPAddr))
	if !ok || rec.Status() != Offline || rec.fileCount() != 0 {
		t.Fatal("expected alice's record to be offline with no files after dereg")
	}
}

func mustRegister(t *testing.T, conn *net.UDPConn, regAddr *net.UDPAddr, name string, port uint16) {
	t.Helper()
	if err := wire.SendTo(conn, regAddr, &wire.RegisterMsg{Name: name, TCPPort: port}); err != nil {
		t.Fatal(err)
	}
	drainUntil[*wire.RegisterAckMsg](t, conn)
	drainTableAck(t, conn, regAddr)
}

// drainUntil reads datagrams from conn until one of type T arrives.
func drainUntil[T any](t *testing.T, conn *net.UDPConn) {
	t.Helper()
	for i := 0; i < 5; i++ {
		msg, _, err := wire.Receive(conn, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := any(msg).(T); ok {
			return
		}
	}
	t.Fatal("expected message never arrived")
}

// drainTableAck reads the welcome TABLE pushed right after registration
// and acks it, so it doesn't interfere with later test assertions.
func drainTableAck(t *testing.T, conn *net.UDPConn, regAddr *net.UDPAddr) {
	t.Helper()
	msg, _, err := wire.Receive(conn, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(*wire.TableMsg); !ok {
		t.Fatalf("got %T, want *TableMsg", msg)
	}
	_ = wire.SendTo(conn, regAddr, &wire.TableAckMsg{})
}
