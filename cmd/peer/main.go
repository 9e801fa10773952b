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

// Command peer runs a single peer process: registration, the
// demultiplexer, the stream acceptor, and the interactive command shell
// (spec.md §4.3-§4.6).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/bfix/gospel/logger"
	"github.com/erl-ang/bootleg-bittorrent/config"
	"github.com/erl-ang/bootleg-bittorrent/ledger"
	"github.com/erl-ang/bootleg-bittorrent/peer"
)

func main() {
	var (
		name       string
		bootFile   string
		ledgerSpec string
		help       bool
	)
	flag.StringVar(&name, "c", "", "peer display name")
	flag.StringVar(&bootFile, "boot", "", "optional JSON bootstrap file pre-filling name/dir/registry")
	flag.StringVar(&ledgerSpec, "ledger", "", "optional transfer ledger backing store spec")
	flag.BoolVar(&help, "h", false, "print usage")
	flag.Parse()

	if help {
		usage()
		return
	}

	var registryHost, regPortArg, localPortArg, tcpPortArg string
	args := flag.Args()
	if len(args) == 4 {
		registryHost, regPortArg, localPortArg, tcpPortArg = args[0], args[1], args[2], args[3]
	} else if bootFile == "" {
		usage()
		os.Exit(1)
	}

	var boot *config.Bootstrap
	if bootFile != "" {
		var err error
		boot, err = config.ParseBootstrap(bootFile)
		if err != nil {
			fmt.Printf("bootstrap file error: %s\n", err.Error())
			os.Exit(1)
		}
		if name == "" {
			name = boot.Name
		}
		if ledgerSpec == "" {
			ledgerSpec = boot.Ledger
		}
	}

	regAddr, laddr, tcpAddr, err := resolveAddrs(boot, registryHost, regPortArg, localPortArg, tcpPortArg)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	fmt.Println("======================================================================")
	fmt.Println("bootleg-bittorrent peer")
	fmt.Printf("    -c    %s\n", name)
	fmt.Printf("    registry host   %s\n", regAddr.IP)
	fmt.Printf("    registry port   %d\n", regAddr.Port)
	fmt.Printf("    local udp port  %d\n", laddr.Port)
	fmt.Printf("    local tcp addr  %s\n", tcpAddr)
	fmt.Println("======================================================================")

	p, err := peer.New(regAddr, laddr, tcpAddr, name)
	if err != nil {
		logger.Printf(logger.ERROR, "[peer] bind failed: %s\n", err.Error())
		os.Exit(1)
	}
	defer p.Close()

	if ledgerSpec != "" {
		l, err := ledger.Open(ledgerSpec)
		if err != nil {
			logger.Printf(logger.WARN, "[peer] ledger unavailable: %s\n", err.Error())
		} else {
			p.SetLedger(l)
		}
	}

	if boot != nil && boot.Dir != "" {
		// pre-bind the directory the same way setdir would
		p.PreBindDir(boot.Dir)
	}

	if err := p.Register(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	go p.RunDemux()
	go p.RunAcceptor()
	p.RunShellPrompted(os.Stdin, os.Stdout)
}

func resolveAddrs(boot *config.Bootstrap, host, regPort, localPort, tcpPort string) (*net.UDPAddr, *net.UDPAddr, string, error) {
	if boot != nil && host == "" {
		regAddr, err := net.ResolveUDPAddr("udp", boot.Registry)
		if err != nil {
			return nil, nil, "", err
		}
		laddr, err := net.ResolveUDPAddr("udp", boot.Listen)
		if err != nil {
			return nil, nil, "", err
		}
		return regAddr, laddr, boot.TCP, nil
	}
	rp, err := strconv.Atoi(regPort)
	if err != nil {
		return nil, nil, "", fmt.Errorf("invalid registry UDP port %q", regPort)
	}
	regAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(rp)))
	if err != nil {
		return nil, nil, "", err
	}
	lp, err := strconv.Atoi(localPort)
	if err != nil {
		return nil, nil, "", fmt.Errorf("invalid local UDP port %q", localPort)
	}
	laddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", lp))
	if err != nil {
		return nil, nil, "", err
	}
	tp, err := strconv.Atoi(tcpPort)
	if err != nil {
		return nil, nil, "", fmt.Errorf("invalid local TCP port %q", tcpPort)
	}
	return regAddr, laddr, fmt.Sprintf(":%d", tp), nil
}

func usage() {
	fmt.Println("usage: peer -c <name> <registry_host> <registry_udp_port> <local_udp_port> <local_tcp_port>")
	fmt.Println("       peer -boot <file>")
}
