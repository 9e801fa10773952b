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

// Package ledger implements the optional transfer ledger: a best-effort,
// pluggable audit log of completed file transfers. It is independent of
// the registry's authoritative state and of the peer's offerings cache;
// a missing or unreachable backing store degrades to "no audit trail",
// never to a transfer failure.
package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/util"
)

// Entry is one completed-transfer record.
type Entry struct {
	Filename  string
	From      string // file owner
	To        string // requester: its name on download, its host on upload
	Bytes     int64
	Direction string // "upload" (server side) or "download" (client side)
	When      time.Time
}

// Ledger records completed transfers. Record is fire-and-forget: failures
// are logged at WARN and never surfaced as transfer errors.
type Ledger interface {
	Record(e Entry)
	Close() error
}

// Open opens a ledger backing store. spec follows the same spec-string
// family as util.OpenKVStore / util.ConnectSQLDatabase:
//   - "redis+addr+passwd+db"
//   - "sqlite3:path" / "mysql:dsn"
func Open(spec string) (Ledger, error) {
	switch {
	case strings.HasPrefix(spec, "redis+"):
		kvs, err := util.OpenKVStore(spec)
		if err != nil {
			return nil, err
		}
		return &kvLedger{kvs: kvs}, nil

	case strings.HasPrefix(spec, "sqlite3:"), strings.HasPrefix(spec, "mysql:"):
		db, err := util.ConnectSQLDatabase(spec)
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(`create table if not exists transfers (
			id integer primary key autoincrement,
			filename text not null,
			from_name text not null,
			to_name text not null,
			bytes integer not null,
			direction text not null,
			at text not null
		)`); err != nil {
			return nil, err
		}
		return &sqlLedger{db: db}, nil
	}
	return nil, fmt.Errorf("ledger: unrecognized spec %q", spec)
}

//======================================================================
// Redis/SQL key-value-backed ledger
//======================================================================

type kvLedger struct {
	kvs util.KeyValueStore
}

func (l *kvLedger) Record(e Entry) {
	key := fmt.Sprintf("%d|%s|%s", e.When.UnixNano(), e.From, e.Filename)
	value := fmt.Sprintf("%s %s %s %s %d", e.Direction, e.Filename, e.From, e.To, e.Bytes)
	if err := l.kvs.Put(key, value); err != nil {
		logger.Printf(logger.WARN, "[ledger] write failed: %s\n", err.Error())
	}
}

func (l *kvLedger) Close() error { return nil }

//======================================================================
// SQL-table-backed ledger
//======================================================================

type sqlLedger struct {
	db *sql.DB
}

func (l *sqlLedger) Record(e Entry) {
	_, err := l.db.Exec(
		`insert into transfers(filename, from_name, to_name, bytes, direction, at)
		 values (?, ?, ?, ?, ?, ?)`,
		e.Filename, e.From, e.To, e.Bytes, e.Direction, e.When.Format(time.RFC3339Nano))
	if err != nil {
		logger.Printf(logger.WARN, "[ledger] write failed: %s\n", err.Error())
	}
}

func (l *sqlLedger) Close() error { return l.db.Close() }
