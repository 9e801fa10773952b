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
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/util"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// RunShell reads line-oriented commands from in until EOF, dispatching one
// at a time (spec.md §4.4). The shell is the only task writing the
// offline/online transition on the peer, so no locking is needed around
// p.offline.
func (p *Peer) RunShell(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.dispatch(line, out)
	}
}

// RunShellPrompted is RunShell with the interactive ">>> " prompt printed
// before each read (spec.md §6). Status lines from the demultiplexer may
// interleave with prompts; this is documented behavior, not a bug.
func (p *Peer) RunShellPrompted(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.dispatch(line, out)
	}
}

func (p *Peer) dispatch(line string, out io.Writer) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	// once deregistered, every command but `list` is a no-op (spec.md §4.4)
	if p.offline && cmd != "list" {
		fmt.Fprintln(out, "invalid command")
		return
	}

	switch cmd {
	case "setdir":
		p.cmdSetdir(args, out)
	case "offer":
		p.cmdOffer(args, out)
	case "list":
		p.cmdList(out)
	case "request":
		p.cmdRequest(args, out)
	case "dereg":
		p.cmdDereg(args, out)
	default:
		fmt.Fprintln(out, "invalid command")
	}
}

func (p *Peer) cmdSetdir(args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: setdir <path>")
		return
	}
	path := args[0]
	if !util.DirExists(path) {
		fmt.Fprintf(out, "'%s' is not a directory, setdir failed\n", path)
		return
	}
	// rebinding while files are currently offered would split-brain the
	// registry's table against a directory this peer no longer considers
	// bound; nothing in this process clears the offered set, so once files
	// are offered the directory stays bound until the process exits
	if !p.setDir(path) {
		fmt.Fprintln(out, "cannot rebind directory while files are offered, setdir failed")
		return
	}
	fmt.Fprintf(out, "directory set to '%s'\n", path)
}

func (p *Peer) cmdOffer(args []string, out io.Writer) {
	if p.dirPath() == "" {
		fmt.Fprintln(out, "bind a directory with setdir before offering files")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(out, "usage: offer <name>...")
		return
	}
	dir := p.dirPath()
	for _, f := range args {
		if !util.FileExists(filepath.Join(dir, f)) {
			fmt.Fprintf(out, "'%s' is not a file in '%s', offer failed\n", f, dir)
			return
		}
	}
	if p.awaitAckLoop(&wire.OfferMsg{Files: args}, p.offerAckCh) {
		p.addOffered(args)
		fmt.Fprintln(out, "Offer Message received by Server")
		return
	}
	fmt.Fprintln(out, "Server not responding")
	p.offline = true
}

func (p *Peer) cmdList(out io.Writer) {
	entries := p.cache.Sorted()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No files available for download at the moment.")
		return
	}
	fmt.Fprintf(out, "%-30s %-16s %-20s %6s\n", "FILENAME", "OWNER", "HOST", "PORT")
	for _, e := range entries {
		fmt.Fprintf(out, "%-30s %-16s %-20s %6d\n", e.Filename, e.Owner, e.Host, e.TCPPort)
	}
}

func (p *Peer) cmdRequest(args []string, out io.Writer) {
	if len(args) != 2 {
		fmt.Fprintln(out, "usage: request <filename> <owner>")
		return
	}
	filename, owner := args[0], args[1]
	entry, ok := p.cache.Lookup(filename, owner)
	if !ok {
		fmt.Fprintln(out, "< Invalid Request >")
		return
	}
	if err := p.transferClient(entry, out); err != nil {
		logger.Printf(logger.WARN, "[peer] transfer request failed: %s\n", err.Error())
	}
}

func (p *Peer) cmdDereg(args []string, out io.Writer) {
	if len(args) != 1 || args[0] != p.Name {
		fmt.Fprintln(out, "usage: dereg <name>")
		return
	}
	if p.awaitAckLoop(&wire.DeregMsg{Name: p.Name}, p.deregAckCh) {
		fmt.Fprintln(out, "Deregistration acknowledged by server")
	} else {
		fmt.Fprintln(out, "Server not responding")
	}
	// on success or exhaustion alike: offline either way (spec.md §4.4)
	p.offline = true
	p.stopAcceptorTask()
}

// awaitAckLoop sends msg up to ackAttempts times, waiting up to ackTimeout
// for the matching ack to land on ch (populated by the demultiplexer).
// This is the command task's side of spec.md §4.4's "500 ms / three-attempt
// rule" for offer and dereg.
func (p *Peer) awaitAckLoop(msg wire.Message, ch chan struct{}) bool {
	for attempt := 1; attempt <= ackAttempts; attempt++ {
		if err := wire.SendTo(p.conn, p.regAddr, msg); err != nil {
			logger.Printf(logger.WARN, "[peer] send failed: %s\n", err.Error())
			continue
		}
		select {
		case <-ch:
			return true
		case <-time.After(ackTimeout):
			logger.Printf(logger.DBG, "[peer] attempt %d/%d timed out waiting for %s ack\n", attempt, ackAttempts, msg.Kind())
		}
	}
	return false
}
