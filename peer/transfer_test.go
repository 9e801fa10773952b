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
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/erl-ang/bootleg-bittorrent/wire"
)

func newTestPeerProcess(t *testing.T) *Peer {
	t.Helper()
	regAddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	laddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(regAddr, laddr, "127.0.0.1:0", "alice")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	return p
}

// TestTransferRoundTrip checks that a transferred file is byte-identical
// to its source for sizes of 1 byte, 4096 bytes and over 1 MiB. The
// content is a repeated 0xAB byte, not random data. 0 bytes is covered separately by
// TestTransferZeroByteFileIsIndistinguishableFromRejection: the wire
// sub-protocol's own rejection signal is an 8-byte zero length prefix
// (spec.md §4.6 step 3), which a genuinely empty file also produces, so
// it is not a round-trippable size under the protocol as specified.
func TestTransferRoundTrip(t *testing.T) {
	sizes := []int{1, 4096, 1<<20 + 37}
	for _, size := range sizes {
		size := size
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			owner := newTestPeerProcess(t)
			dir := t.TempDir()
			owner.dir = dir
			owner.offered["gift.bin"] = struct{}{}
			content := bytes.Repeat([]byte{0xAB}, size)
			if err := os.WriteFile(filepath.Join(dir, "gift.bin"), content, 0o644); err != nil {
				t.Fatal(err)
			}

			go serveOnce(owner)

			requester := newTestPeerProcess(t)
			reqDir := t.TempDir()
			origWD, _ := os.Getwd()
			if err := os.Chdir(reqDir); err != nil {
				t.Fatal(err)
			}
			defer os.Chdir(origWD)

			entry := wire.TableEntry{
				Filename: "gift.bin",
				Owner:    "alice",
				Host:     "127.0.0.1",
				TCPPort:  uint16(owner.tcpLn.Addr().(*net.TCPAddr).Port),
			}
			var out bytes.Buffer
			if err := requester.transferClient(entry, &out); err != nil {
				t.Fatal(err)
			}

			got, err := os.ReadFile(filepath.Join(reqDir, "gift.bin"))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, content) {
				t.Fatal("downloaded content does not match the original")
			}
			if !bytes.Contains(out.Bytes(), []byte("downloaded successfully")) {
				t.Fatalf("missing success line: %s", out.String())
			}
		})
	}
}

// TestTransferZeroByteFileIsIndistinguishableFromRejection documents a
// spec-literal edge case: an offered, existing, genuinely empty file
// produces the same 8-byte zero length prefix as a rejected request
// (spec.md §4.6 step 3), so the requester reports it as "Invalid
// Request" rather than a zero-length download.
func TestTransferZeroByteFileIsIndistinguishableFromRejection(t *testing.T) {
	owner := newTestPeerProcess(t)
	dir := t.TempDir()
	owner.dir = dir
	owner.offered["empty.bin"] = struct{}{}
	if err := os.WriteFile(filepath.Join(dir, "empty.bin"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	go serveOnce(owner)

	requester := newTestPeerProcess(t)
	entry := wire.TableEntry{
		Filename: "empty.bin",
		Owner:    "alice",
		Host:     "127.0.0.1",
		TCPPort:  uint16(owner.tcpLn.Addr().(*net.TCPAddr).Port),
	}
	var out bytes.Buffer
	if err := requester.transferClient(entry, &out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Invalid Request")) {
		t.Fatalf("expected the zero-length prefix to read as a rejection, got %q", out.String())
	}
}

func TestTransferRejectsUnofferedFile(t *testing.T) {
	owner := newTestPeerProcess(t)
	owner.dir = t.TempDir()
	// never offered: the transfer server must reject even if a Lookup
	// upstream should have already prevented this call

	go serveOnce(owner)

	conn, err := net.Dial("tcp", owner.tcpLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("nope.bin\n")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8)
	if _, err := readFull(conn, buf); err != nil {
		t.Fatal(err)
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected an all-zero length prefix, got %v", buf)
		}
	}
}

// serveOnce accepts exactly one connection on p's listener and runs the
// Transfer Server sub-protocol on it.
func serveOnce(p *Peer) {
	conn, err := p.tcpLn.Accept()
	if err != nil {
		return
	}
	p.transferServer(conn)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
