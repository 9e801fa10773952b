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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/gorilla/mux"
)

// tableRow is the JSON shape served at /table.json: one row per currently
// offered file (spec.md §3's offerings view), the same shape pushed to
// peers as a TABLE.
type tableRow struct {
	Filename string `json:"filename"`
	Owner    string `json:"owner"`
	Host     string `json:"host"`
	TCPPort  uint16 `json:"tcp_port"`
}

// StartStatus starts the read-only HTTP status dashboard on addr. It is
// pure observability: the handlers only ever take the table's read lock
// and never participate in Reliable Push or broadcast ordering (§2.2).
func (r *Registry) StartStatus(ctx context.Context, addr string) {
	logger.Printf(logger.INFO, "[registry] starting status endpoint on %s\n", addr)
	router := mux.NewRouter()
	router.HandleFunc("/", r.dashboard)
	router.HandleFunc("/table.json", r.tableJSON)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf(logger.ERROR, "[registry] status endpoint failed: %s\n", err.Error())
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
}

func (r *Registry) rows() []tableRow {
	entries := r.table.View()
	rows := make([]tableRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, tableRow{
			Filename: e.Filename,
			Owner:    e.Owner,
			Host:     e.Host,
			TCPPort:  e.TCPPort,
		})
	}
	return rows
}

func (r *Registry) tableJSON(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r.rows()); err != nil {
		logger.Printf(logger.WARN, "[registry] status: %s\n", err.Error())
	}
}

func (r *Registry) dashboard(w http.ResponseWriter, req *http.Request) {
	rows := r.rows()
	peers := r.table.ActiveSnapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, fmt.Sprintf("bootleg-bittorrent registry: %d active peer(s), %d file(s) offered\n\n", len(peers), len(rows)))
	for _, rec := range peers {
		_, _ = io.WriteString(w, fmt.Sprintf("peer %-12s %s tcp=%d files=%d\n", rec.Name, rec.Addr, rec.TCPPort, rec.fileCount()))
	}
	_, _ = io.WriteString(w, "\nfilename\towner\thost\tport\n")
	for _, row := range rows {
		_, _ = io.WriteString(w, fmt.Sprintf("%s\t%s\t%s\t%d\n", row.Filename, row.Owner, row.Host, row.TCPPort))
	}
}
