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

import (
	"testing"
)

func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()
	raw, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Kind() != msg.Kind() {
		t.Fatalf("kind mismatch: got %s, want %s", out.Kind(), msg.Kind())
	}
	return out
}

func TestRegisterRoundTrip(t *testing.T) {
	in := &RegisterMsg{Name: "heyy", TCPPort: 7777}
	out := roundTrip(t, in).(*RegisterMsg)
	if out.Name != in.Name || out.TCPPort != in.TCPPort {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestRegisterAckRoundTrip(t *testing.T) {
	in := &RegisterAckMsg{Status: RegisterNameTaken}
	out := roundTrip(t, in).(*RegisterAckMsg)
	if out.Status != RegisterNameTaken {
		t.Fatalf("got status %d, want %d", out.Status, RegisterNameTaken)
	}
}

func TestDeregRoundTrip(t *testing.T) {
	in := &DeregMsg{Name: "waa"}
	out := roundTrip(t, in).(*DeregMsg)
	if out.Name != in.Name {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestEmptyAcksRoundTrip(t *testing.T) {
	for _, msg := range []Message{
		&TableAckMsg{}, &OfferAckMsg{}, &DeregAckMsg{},
	} {
		roundTrip(t, msg)
	}
}

func TestOfferRoundTrip(t *testing.T) {
	in := &OfferMsg{Files: []string{"jjs.jpg", "wee.txt"}}
	out := roundTrip(t, in).(*OfferMsg)
	if len(out.Files) != 2 || out.Files[0] != "jjs.jpg" || out.Files[1] != "wee.txt" {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestOfferRoundTripEmpty(t *testing.T) {
	in := &OfferMsg{}
	out := roundTrip(t, in).(*OfferMsg)
	if len(out.Files) != 0 {
		t.Fatalf("got %+v, want empty", out)
	}
}

func TestTableRoundTrip(t *testing.T) {
	in := &TableMsg{Entries: []TableEntry{
		{Filename: "jjs.jpg", Owner: "A", Host: "127.0.0.1", TCPPort: 9001},
		{Filename: "wee.txt", Owner: "A", Host: "127.0.0.1", TCPPort: 9001},
	}}
	out := roundTrip(t, in).(*TableMsg)
	if len(out.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(out.Entries))
	}
	if out.Entries[1].Filename != "wee.txt" || out.Entries[1].TCPPort != 9001 {
		t.Fatalf("got %+v", out.Entries[1])
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode(nil); err != ErrMalformed {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
	if _, err := Decode([]byte{0xff}); err != ErrMalformed {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
	// a Register tag with a truncated body must fail, not panic
	if _, err := Decode([]byte{byte(Register), 'x'}); err != ErrMalformed {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	files := make([]string, 0, 2000)
	for i := 0; i < 2000; i++ {
		files = append(files, "a-very-long-filename-to-pad-the-datagram-out.bin")
	}
	_, err := Encode(&OfferMsg{Files: files})
	if err == nil {
		t.Fatal("expected an error encoding an oversized OFFER")
	}
}
