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
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	redis "github.com/go-redis/redis/v8"
)

// Error values related to key/value stores.
var (
	ErrKVSInvalidSpec  = fmt.Errorf("invalid key/value store specification")
	ErrKVSNotAvailable = fmt.Errorf("key/value store not available")
)

// KeyValueStore is the minimal persistence interface the transfer ledger
// (ledger/store.go) writes through. Keys and values are strings; the
// ledger is responsible for its own value encoding.
type KeyValueStore interface {
	Put(key, value string) error
	Get(key string) (string, error)
	List() ([]string, error)
}

// OpenKVStore opens a key/value store for ledger use. 'spec' is
// '+'-separated, first segment selecting the backend:
//   - "redis+addr+passwd+db" — a Redis server, 'db' a decimal index.
//   - "sqlite3+path" / "mysql+dsn" — a SQL table named 'store' with
//     columns (key, value), opened via ConnectSQLDatabase.
func OpenKVStore(spec string) (KeyValueStore, error) {
	specs := strings.Split(spec, "+")
	if len(specs) < 2 {
		return nil, ErrKVSInvalidSpec
	}
	switch specs[0] {
	case "redis":
		if len(specs) < 4 {
			return nil, ErrKVSInvalidSpec
		}
		db, err := strconv.Atoi(specs[3])
		if err != nil {
			return nil, ErrKVSInvalidSpec
		}
		client := redis.NewClient(&redis.Options{
			Addr:     specs[1],
			Password: specs[2],
			DB:       db,
		})
		if client == nil {
			return nil, ErrKVSNotAvailable
		}
		return &kvsRedis{client: client}, nil

	case "sqlite3", "mysql":
		dsnSpec := specs[0] + ":" + strings.Join(specs[1:], "+")
		db, err := ConnectSQLDatabase(dsnSpec)
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(
			`create table if not exists store (
				key text primary key,
				value text not null
			)`); err != nil {
			return nil, ErrKVSNotAvailable
		}
		return &kvsSQL{db: db}, nil
	}
	return nil, ErrKVSInvalidSpec
}

//======================================================================
// Redis-backed key/value store
//======================================================================

type kvsRedis struct {
	client *redis.Client
}

func (kvs *kvsRedis) Put(key, value string) error {
	return kvs.client.Set(context.Background(), key, value, 0).Err()
}

func (kvs *kvsRedis) Get(key string) (string, error) {
	return kvs.client.Get(context.Background(), key).Result()
}

func (kvs *kvsRedis) List() (keys []string, err error) {
	var crs uint64
	ctx := context.Background()
	for {
		var segm []string
		segm, crs, err = kvs.client.Scan(ctx, crs, "*", 10).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, segm...)
		if crs == 0 {
			break
		}
	}
	return keys, nil
}

//======================================================================
// SQL-backed key/value store
//======================================================================

type kvsSQL struct {
	db *sql.DB
}

func (kvs *kvsSQL) Put(key, value string) error {
	_, err := kvs.db.Exec(
		`insert into store(key, value) values(?, ?)
		 on conflict(key) do update set value = excluded.value`, key, value)
	return err
}

func (kvs *kvsSQL) Get(key string) (value string, err error) {
	row := kvs.db.QueryRow("select value from store where key = ?", key)
	err = row.Scan(&value)
	return
}

func (kvs *kvsSQL) List() (keys []string, err error) {
	rows, err := kvs.db.Query("select key from store")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
