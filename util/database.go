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

package util

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Error values related to SQL-backed stores.
var (
	ErrSQLInvalidSpec = fmt.Errorf("invalid database specification")
	ErrSQLNoDatabase   = fmt.Errorf("database not found")
)

// ConnectSQLDatabase connects to a SQL database used as a ledger backing
// store (ledger/store.go). The 'spec' argument is colon-separated, first
// segment selecting the driver:
//   - "sqlite3:<path>" — SQLite3 file at <path>, which must already exist.
//   - "mysql:<dsn>"    — MySQL-compatible DSN, e.g.
//     "user:pass@tcp(host:3306)/dbname".
func ConnectSQLDatabase(spec string) (db *sql.DB, err error) {
	specs := strings.SplitN(spec, ":", 2)
	if len(specs) < 2 {
		return nil, ErrSQLInvalidSpec
	}
	switch specs[0] {
	case "sqlite3":
		fi, err := os.Stat(specs[1])
		if err != nil || fi.IsDir() {
			return nil, ErrSQLNoDatabase
		}
		return sql.Open("sqlite3", specs[1])
	case "mysql":
		return sql.Open("mysql", specs[1])
	}
	return nil, ErrSQLInvalidSpec
}
