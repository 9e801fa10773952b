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

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// Registry owns the table and the single UDP endpoint it is authoritative
// over (spec.md §4.2: "all state lives in one process").
type Registry struct {
	conn  *net.UDPConn
	table *Table
}

// New binds a registry to laddr.
func New(laddr *net.UDPAddr) (*Registry, error) {
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &Registry{
		conn:  conn,
		table: NewTable(),
	}, nil
}

// Close releases the registry's UDP endpoint.
func (r *Registry) Close() error {
	return r.conn.Close()
}

// Table exposes the registry's table read-only, for the status endpoint.
func (r *Registry) Table() *Table {
	return r.table
}

// Run processes inbound datagrams forever, one to completion before the
// next (spec.md §4.2: the registry's documented single-threaded
// limitation).
func (r *Registry) Run() {
	for {
		msg, from, err := wire.Receive(r.conn, 0)
		if err != nil {
			logger.Printf(logger.WARN, "[registry] receive failed: %s\n", err.Error())
			continue
		}
		r.dispatch(msg, from)
	}
}

func (r *Registry) dispatch(msg wire.Message, from *net.UDPAddr) {
	switch m := msg.(type) {
	case *wire.RegisterMsg:
		r.handleRegister(from, m)
	case *wire.OfferMsg:
		r.handleOffer(from, m)
	case *wire.DeregMsg:
		r.handleDereg(from, m)
	default:
		// TABLE, the *_ACK kinds, and anything else arriving unsolicited at
		// the registry's endpoint are not registry-bound requests; drop.
		logger.Printf(logger.DBG, "[registry] discarding unsolicited %s from %s\n", msg.Kind(), from)
	}
}

// handleRegister implements spec.md §4.2's Register operation.
func (r *Registry) handleRegister(from *net.UDPAddr, m *wire.RegisterMsg) {
	if r.table.NameTaken(from, m.Name) {
		_ = wire.SendTo(r.conn, from, &wire.RegisterAckMsg{Status: wire.RegisterNameTaken})
		return
	}
	r.table.Put(from, newRecord(from, m.Name, m.TCPPort))
	// welcome ack is fire-and-forget: never retried (spec.md §4.2)
	if err := wire.SendTo(r.conn, from, &wire.RegisterAckMsg{Status: wire.RegisterOK}); err != nil {
		logger.Printf(logger.WARN, "[registry] register ack to %s failed: %s\n", from, err.Error())
	}
	logger.Printf(logger.INFO, "[registry] %s registered as '%s' (tcp %d)\n", from, m.Name, m.TCPPort)
	// push the current view straight to the new peer before the next
	// general broadcast reaches it (spec.md §4.2)
	r.reliablePushTo(r.recordFor(from))
}

// handleOffer implements spec.md §4.2's Offer operation.
func (r *Registry) handleOffer(from *net.UDPAddr, m *wire.OfferMsg) {
	rec, ok := r.table.Get(from)
	if !ok || rec.Status() != Active {
		logger.Printf(logger.DBG, "[registry] ignoring OFFER from unregistered/offline %s\n", from)
		return
	}
	rec.addFiles(m.Files)
	if err := wire.SendTo(r.conn, from, &wire.OfferAckMsg{}); err != nil {
		logger.Printf(logger.WARN, "[registry] offer ack to %s failed: %s\n", from, err.Error())
	}
	r.Broadcast()
}

// handleDereg implements spec.md §4.2's Deregister operation.
func (r *Registry) handleDereg(from *net.UDPAddr, m *wire.DeregMsg) {
	rec, ok := r.table.Get(from)
	if !ok || rec.Status() != Active || rec.Name != m.Name {
		logger.Printf(logger.DBG, "[registry] ignoring DEREG from %s: no matching active record\n", from)
		return
	}
	rec.setOffline()
	if err := wire.SendTo(r.conn, from, &wire.DeregAckMsg{}); err != nil {
		logger.Printf(logger.WARN, "[registry] dereg ack to %s failed: %s\n", from, err.Error())
	}
	r.Broadcast()
}

// Broadcast implements spec.md §4.2's Broadcast operation: recompute the
// view, then Reliable Push it to every currently active peer, sequentially
// in table iteration order.
func (r *Registry) Broadcast() {
	for _, rec := range r.table.ActiveSnapshot() {
		r.reliablePushTo(rec)
	}
}

func (r *Registry) recordFor(addr *net.UDPAddr) *Record {
	rec, _ := r.table.Get(addr)
	return rec
}

// reliablePushTo pushes the current offerings view to rec.Addr. On
// exhaustion it marks rec offline with files cleared and deliberately does
// not re-broadcast the resulting change, to avoid recursion (spec.md
// §4.2).
func (r *Registry) reliablePushTo(rec *Record) {
	if rec == nil {
		return
	}
	view := &wire.TableMsg{Entries: r.table.View()}
	if reliablePush(r.conn, rec.Addr, view, wire.TableAck) {
		return
	}
	logger.Printf(logger.WARN, "[registry] %s ('%s') unresponsive, marking offline\n", rec.Addr, rec.Name)
	rec.setOffline()
}
