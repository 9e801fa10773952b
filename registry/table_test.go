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
)

func udpAddr(t *testing.T, s string) *net.UDPAddr {
	t.Helper()
	a, err := net.ResolveUDPAddr("udp", s)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestNameTakenIgnoresOwnRecord(t *testing.T) {
	tbl := NewTable()
	alice := udpAddr(t, "127.0.0.1:9001")
	tbl.Put(alice, newRecord(alice, "alice", 0))

	if tbl.NameTaken(alice, "alice") {
		t.Fatal("a record should not collide with itself")
	}

	bob := udpAddr(t, "127.0.0.1:9002")
	if !tbl.NameTaken(bob, "alice") {
		t.Fatal("a different source address with the same name should collide")
	}
}

func TestNameTakenIgnoresOfflineRecords(t *testing.T) {
	tbl := NewTable()
	alice := udpAddr(t, "127.0.0.1:9001")
	rec := newRecord(alice, "alice", 0)
	rec.setOffline()
	tbl.Put(alice, rec)

	bob := udpAddr(t, "127.0.0.1:9002")
	if tbl.NameTaken(bob, "alice") {
		t.Fatal("an offline record's name should be reusable")
	}
}

func TestViewOnlyListsActiveRecords(t *testing.T) {
	tbl := NewTable()
	alice := udpAddr(t, "127.0.0.1:9001")
	bob := udpAddr(t, "127.0.0.1:9002")

	aliceRec := newRecord(alice, "alice", 6001)
	aliceRec.addFiles([]string{"a.bin"})
	tbl.Put(alice, aliceRec)

	bobRec := newRecord(bob, "bob", 6002)
	bobRec.addFiles([]string{"b.bin"})
	bobRec.setOffline()
	tbl.Put(bob, bobRec)

	view := tbl.View()
	if len(view) != 1 {
		t.Fatalf("got %d entries, want 1 (offline peer excluded)", len(view))
	}
	if view[0].Filename != "a.bin" || view[0].Owner != "alice" {
		t.Fatalf("got %+v", view[0])
	}
}
