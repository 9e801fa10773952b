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

// Package peer implements a single peer process: registration with the
// registry, the demultiplexer that owns the control-plane datagram socket,
// the line-oriented command shell, the TCP stream acceptor, and the file
// transfer sub-protocol (spec.md §4.3-§4.6).
package peer

import (
	"sort"

	"github.com/erl-ang/bootleg-bittorrent/util"
	"github.com/erl-ang/bootleg-bittorrent/wire"
)

// Cache is the peer's local offerings view (spec.md §3): a mutex-guarded
// map keyed by the composite "<filename>|<owner>" key, replaced wholesale
// by the demultiplexer on every TABLE received.
type Cache struct {
	entries *util.Map[string, wire.TableEntry]
}

// NewCache allocates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: util.NewMap[string, wire.TableEntry]()}
}

func compositeKey(filename, owner string) string {
	return filename + "|" + owner
}

// Replace installs a freshly received TABLE wholesale.
func (c *Cache) Replace(entries []wire.TableEntry) {
	fresh := make(map[string]wire.TableEntry, len(entries))
	for _, e := range entries {
		fresh[compositeKey(e.Filename, e.Owner)] = e
	}
	c.entries.Replace(fresh)
}

// Lookup finds the entry offered under filename by owner.
func (c *Cache) Lookup(filename, owner string) (wire.TableEntry, bool) {
	return c.entries.Get(compositeKey(filename, owner))
}

// Len reports how many entries the cache currently holds.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Sorted returns every cached entry ordered ascending by (filename, owner)
// (spec.md §4.4's `list` command).
func (c *Cache) Sorted() []wire.TableEntry {
	snap := c.entries.Snapshot()
	out := make([]wire.TableEntry, 0, len(snap))
	for _, e := range snap {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Filename != out[j].Filename {
			return out[i].Filename < out[j].Filename
		}
		return out[i].Owner < out[j].Owner
	})
	return out
}
