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

// Package config loads a peer's optional JSON bootstrap file (`-boot
// <file>`): a convenience for scripted multi-peer test harnesses that
// pre-fills a display name, directory binding and registry address. Its
// absence is the common case; nothing in registry/peer core logic depends
// on it.
package config

import (
	"encoding/json"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/bfix/gospel/logger"
)

// Environ holds substitution variables referenced from config strings as
// "${VAR}".
type Environ map[string]string

// Bootstrap is the optional persona a peer can be pre-configured with.
type Bootstrap struct {
	Env      Environ `json:"environ"`
	Name     string  `json:"name"`
	Dir      string  `json:"dir"`
	Registry string  `json:"registry"` // "host:port" of the registry's UDP endpoint
	Listen   string  `json:"listen"`   // "host:port" the peer's UDP socket binds to
	TCP      string  `json:"tcp"`      // "host:port" the peer's TCP stream acceptor binds to
	Ledger   string  `json:"ledger"`   // optional transfer ledger spec
}

// ParseBootstrap reads and decodes fileName into a Bootstrap, applying
// ${VAR} substitutions from its own Env map.
func ParseBootstrap(fileName string) (*Bootstrap, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	boot := new(Bootstrap)
	if err := json.Unmarshal(data, boot); err != nil {
		return nil, err
	}
	applySubstitutions(boot, boot.Env)
	return boot, nil
}

var rxSubst = regexp.MustCompile(`\$\{([^\}]*)\}`)

// substString replaces every "${VAR}" occurrence in s with env["VAR"],
// leaving unmatched variables untouched.
func substString(s string, env map[string]string) string {
	matches := rxSubst.FindAllStringSubmatch(s, -1)
	for _, m := range matches {
		if len(m[1]) == 0 {
			continue
		}
		subst, ok := env[m[1]]
		if !ok {
			continue
		}
		s = strings.Replace(s, "${"+m[1]+"}", subst, -1)
	}
	return s
}

// applySubstitutions walks x's string fields, repeatedly substituting
// "${VAR}" references against env until a pass makes no further change.
func applySubstitutions(x interface{}, env map[string]string) {
	var process func(v reflect.Value)
	process = func(v reflect.Value) {
		for i := 0; i < v.NumField(); i++ {
			fld := v.Field(i)
			if !fld.CanSet() {
				continue
			}
			switch fld.Kind() {
			case reflect.String:
				s := fld.Interface().(string)
				for {
					s1 := substString(s, env)
					if s1 == s {
						break
					}
					logger.Printf(logger.DBG, "[config] %s --> %s\n", s, s1)
					fld.SetString(s1)
					s = s1
				}
			case reflect.Struct:
				process(fld)
			case reflect.Ptr:
				if e := fld.Elem(); e.IsValid() {
					process(e)
				}
			}
		}
	}
	v := reflect.ValueOf(x)
	if v.Kind() == reflect.Ptr {
		if e := v.Elem(); e.IsValid() {
			process(e)
		}
		return
	}
	if v.Kind() == reflect.Struct {
		process(v)
	}
}
