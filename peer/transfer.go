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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/ledger"
	"github.com/erl-ang/bootleg-bittorrent/util"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// transferClient implements the requester side of spec.md §4.6: connect,
// send the filename, read the length-prefixed payload (or rejection) and
// write it to disk.
func (p *Peer) transferClient(entry wire.TableEntry, out io.Writer) error {
	addr := net.JoinHostPort(entry.Host, fmt.Sprintf("%d", entry.TCPPort))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(out, "could not connect to %s: %s\n", entry.Owner, err.Error())
		return err
	}
	defer conn.Close()
	fmt.Fprintf(out, "Connection with client %s established.\n", entry.Owner)

	if _, err := fmt.Fprintf(conn, "%s\n", entry.Filename); err != nil {
		return err
	}

	var size uint64
	if err := binary.Read(conn, binary.BigEndian, &size); err != nil {
		return err
	}
	if size == 0 {
		fmt.Fprintln(out, "< Invalid Request >")
		return nil
	}

	fmt.Fprintf(out, "Downloading %s...\n", entry.Filename)
	dst, err := os.Create(entry.Filename)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.CopyN(dst, conn, int64(size)); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s downloaded successfully!\n", entry.Filename)
	fmt.Fprintf(out, "Connection with client %s closed.\n", entry.Owner)

	if p.ledger != nil {
		p.ledger.Record(ledger.Entry{
			Filename:  entry.Filename,
			From:      entry.Owner,
			To:        p.Name,
			Bytes:     int64(size),
			Direction: "download",
			When:      time.Now(),
		})
	}
	return nil
}

// transferServer implements the owner side of spec.md §4.6: read the
// requested filename, verify it is both offered and present on disk, then
// stream it or reject with a zero length prefix.
func (p *Peer) transferServer(conn net.Conn) {
	defer conn.Close()
	peerHost, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	fmt.Printf("Accepting connection request from %s.\n", peerHost)

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		logger.Printf(logger.WARN, "[peer] transfer: reading request: %s\n", err.Error())
		return
	}
	filename := trimLine(line)

	dir := p.dirPath()
	if dir == "" || !p.isOffered(filename) || !util.FileExists(filepath.Join(dir, filename)) {
		_ = binary.Write(conn, binary.BigEndian, uint64(0))
		return
	}

	path := filepath.Join(dir, filename)
	fi, err := os.Stat(path)
	if err != nil {
		_ = binary.Write(conn, binary.BigEndian, uint64(0))
		return
	}
	src, err := os.Open(path)
	if err != nil {
		_ = binary.Write(conn, binary.BigEndian, uint64(0))
		return
	}
	defer src.Close()

	if err := binary.Write(conn, binary.BigEndian, uint64(fi.Size())); err != nil {
		logger.Printf(logger.WARN, "[peer] transfer: writing length prefix: %s\n", err.Error())
		return
	}
	fmt.Printf("Transferring %s...\n", filename)
	if _, err := io.Copy(conn, src); err != nil {
		logger.Printf(logger.WARN, "[peer] transfer: %s\n", err.Error())
		return
	}
	fmt.Printf("%s transferred successfully!\n", filename)
	fmt.Printf("Connection with client %s closed.\n", peerHost)

	if p.ledger != nil {
		p.ledger.Record(ledger.Entry{
			Filename:  filename,
			From:      p.Name,
			To:        peerHost,
			Bytes:     fi.Size(),
			Direction: "upload",
			When:      time.Now(),
		})
	}
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
