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

import "fmt"

// RegisterMsg is sent by a peer to claim a display name and advertise its
// TCP listening port (spec.md §4.1, §4.4).
type RegisterMsg struct {
	Name    string
	TCPPort uint16 `order:"big"`
}

// Kind implements Message.
func (m *RegisterMsg) Kind() Kind { return Register }

func (m *RegisterMsg) String() string {
	return fmt.Sprintf("RegisterMsg{name=%s,tcp=%d}", m.Name, m.TCPPort)
}

// Registration outcomes carried by RegisterAckMsg.Status.
const (
	RegisterOK        uint8 = 0
	RegisterNameTaken uint8 = 1
)

// RegisterAckMsg answers a RegisterMsg with either Ok or NameTaken
// (spec.md §4.1). It is fire-and-forget (spec.md §4.2): never retried by
// the registry.
type RegisterAckMsg struct {
	Status uint8
}

// Kind implements Message.
func (m *RegisterAckMsg) Kind() Kind { return RegisterAck }

func (m *RegisterAckMsg) String() string {
	if m.Status == RegisterOK {
		return "RegisterAckMsg{ok}"
	}
	return "RegisterAckMsg{name_taken}"
}

// DeregMsg asks the registry to deregister the sending peer's name
// (spec.md §4.1, §4.4).
type DeregMsg struct {
	Name string
}

// Kind implements Message.
func (m *DeregMsg) Kind() Kind { return Dereg }

func (m *DeregMsg) String() string {
	return fmt.Sprintf("DeregMsg{name=%s}", m.Name)
}

// TableAckMsg, OfferAckMsg and DeregAckMsg carry no payload (spec.md
// §4.1's table lists them all as "(empty)").
type (
	TableAckMsg struct{}
	OfferAckMsg struct{}
	DeregAckMsg struct{}
)

func (m *TableAckMsg) Kind() Kind { return TableAck }
func (m *OfferAckMsg) Kind() Kind { return OfferAck }
func (m *DeregAckMsg) Kind() Kind { return DeregAck }

func (m *TableAckMsg) String() string { return "TableAckMsg{}" }
func (m *OfferAckMsg) String() string { return "OfferAckMsg{}" }
func (m *DeregAckMsg) String() string { return "DeregAckMsg{}" }
