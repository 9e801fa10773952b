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

// Package registry implements the registry core of spec.md §4.2: the
// single authority on membership and offerings, speaking the wire
// protocol defined in package wire over one UDP endpoint.
package registry

import (
	"net"
	"sync"

	"github.com/erl-ang/bootleg-bittorrent/util"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// Status is a registry record's membership state (spec.md §3).
type Status int

const (
	Active Status = iota
	Offline
)

func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "offline"
}

// Record is one entry of the registry table, keyed by its source address
// (spec.md §3: "(host, udp_port) is the source address... the natural
// primary key of a peer registration"). Addr, Name and TCPPort are fixed
// at construction; status and files mutate over the record's lifetime and
// are read concurrently by the status dashboard, so they sit behind mu.
type Record struct {
	Addr    *net.UDPAddr
	Name    string
	TCPPort uint16

	mu     sync.RWMutex
	status Status
	files  map[string]struct{}
}

// newRecord creates a freshly active record with no files offered.
func newRecord(addr *net.UDPAddr, name string, tcpPort uint16) *Record {
	return &Record{
		Addr:    addr,
		Name:    name,
		TCPPort: tcpPort,
		status:  Active,
		files:   make(map[string]struct{}),
	}
}

// Status reports the record's current membership state.
func (r *Record) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// setOffline flips the record to offline and clears its offerings, the
// way deregistration and push-exhaustion both do (spec.md §4.2).
func (r *Record) setOffline() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = Offline
	r.files = make(map[string]struct{})
}

// addFiles unions names into the record's current offerings.
func (r *Record) addFiles(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.files[n] = struct{}{}
	}
}

// fileCount reports how many files this record currently offers.
func (r *Record) fileCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// filesSnapshot copies the record's current offerings under the lock, so
// callers never range a map concurrently mutated by the registry's main
// loop (e.g. the status dashboard racing handleOffer).
func (r *Record) filesSnapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.files))
	for f := range r.files {
		out = append(out, f)
	}
	return out
}

// Table is the registry's membership + offerings table: a mutex-guarded
// map from source address to Record (spec.md §3).
type Table struct {
	recs *util.Map[string, *Record]
}

// NewTable allocates an empty table.
func NewTable() *Table {
	return &Table{recs: util.NewMap[string, *Record]()}
}

func key(addr *net.UDPAddr) string {
	return addr.String()
}

// Get returns the record for addr, if any.
func (t *Table) Get(addr *net.UDPAddr) (*Record, bool) {
	return t.recs.Get(key(addr))
}

// Put installs or overwrites the record for addr.
func (t *Table) Put(addr *net.UDPAddr, rec *Record) {
	t.recs.Put(key(addr), rec)
}

// NameTaken reports whether another record (reached from a different
// source address) holds name with Status == Active.
func (t *Table) NameTaken(addr *net.UDPAddr, name string) bool {
	taken := false
	for k, rec := range t.recs.Snapshot() {
		if k == key(addr) {
			continue
		}
		if rec.Status() == Active && rec.Name == name {
			taken = true
			break
		}
	}
	return taken
}

// ActiveSnapshot returns every record with Status == Active, taken under
// the table's lock in one pass (spec.md §4.2: "A peer is considered
// 'active' by the snapshot taken at the start of each broadcast"). The
// returned records are shared, live pointers: their Status/files still
// mutate through Record's own lock, only the outer set membership is
// frozen at snapshot time.
func (t *Table) ActiveSnapshot() []*Record {
	var out []*Record
	for _, rec := range t.recs.Snapshot() {
		if rec.Status() == Active {
			out = append(out, rec)
		}
	}
	return out
}

// View recomputes the offerings view (spec.md §3) from every active
// record's current file set, snapshotting each record's files under its
// own lock so this never races the registry's main loop mutating them.
func (t *Table) View() []wire.TableEntry {
	var entries []wire.TableEntry
	for _, rec := range t.ActiveSnapshot() {
		for _, name := range rec.filesSnapshot() {
			entries = append(entries, wire.TableEntry{
				Filename: name,
				Owner:    rec.Name,
				Host:     rec.Addr.IP.String(),
				TCPPort:  rec.TCPPort,
			})
		}
	}
	return entries
}
