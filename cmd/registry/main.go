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

// Command registry runs the single authority on peer membership and file
// offerings (spec.md §4.2).
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/registry"
)

func main() {
	var (
		udpPort  int
		httpAddr string
	)
	flag.IntVar(&udpPort, "s", 0, "UDP port to listen on")
	flag.StringVar(&httpAddr, "http", "", "optional read-only status dashboard address (host:port)")
	flag.Parse()

	fmt.Println("======================================================================")
	fmt.Println("bootleg-bittorrent registry")
	fmt.Printf("    -s    %d\n", udpPort)
	if httpAddr != "" {
		fmt.Printf("    -http %s\n", httpAddr)
	}
	fmt.Println("======================================================================")

	laddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", udpPort))
	if err != nil {
		logger.Printf(logger.ERROR, "[registry] invalid UDP port %d: %s\n", udpPort, err.Error())
		os.Exit(1)
	}
	reg, err := registry.New(laddr)
	if err != nil {
		logger.Printf(logger.ERROR, "[registry] bind failed: %s\n", err.Error())
		os.Exit(1)
	}
	defer reg.Close()

	if httpAddr != "" {
		reg.StartStatus(context.Background(), httpAddr)
	}
	reg.Run()
}
