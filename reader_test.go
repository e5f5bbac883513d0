// seehuhn.de/go/dvi - a reader for DVI files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package dvi

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadIntegers(t *testing.T) {
	type testCase struct {
		in       []byte
		unsigned uint32
		signed   int32
	}
	cases := []testCase{
		{[]byte{0x7F}, 0x7F, 127},
		{[]byte{0x80}, 0x80, -128},
		{[]byte{0xFF, 0x9C}, 0xFF9C, -100},
		{[]byte{0x01, 0x00}, 256, 256},
		{[]byte{0xFF, 0xFF, 0xFF}, 0xFFFFFF, -1},
		{[]byte{0x12, 0x34, 0x56, 0x78}, 0x12345678, 0x12345678},
		{[]byte{0x80, 0, 0, 0}, 0x80000000, -1 << 31},
	}
	for i, c := range cases {
		n := len(c.in)

		r := NewReader(bytes.NewReader(c.in))
		u := r.ReadUnsigned(n)
		if u != c.unsigned {
			t.Errorf("%d: unsigned %x != %x", i, u, c.unsigned)
		}

		r = NewReader(bytes.NewReader(c.in))
		s := r.ReadSigned(n)
		if s != c.signed {
			t.Errorf("%d: signed %d != %d", i, s, c.signed)
		}
		if r.Pos() != int64(n) {
			t.Errorf("%d: position %d != %d", i, r.Pos(), n)
		}
		if r.EOF() {
			t.Errorf("%d: unexpected EOF", i)
		}
	}
}

func TestReadPastEnd(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x12}))
	x := r.ReadUnsigned(2)
	if x != 0x1200 {
		t.Errorf("wrong value %x", x)
	}
	if !r.EOF() {
		t.Error("EOF not detected")
	}
	if r.Err() != nil {
		t.Errorf("unexpected error %v", r.Err())
	}

	_, err := r.ReadByte()
	if err != io.EOF {
		t.Errorf("wrong error %v", err)
	}

	r = NewReader(bytes.NewReader([]byte("abc")))
	data := r.ReadBytes(10)
	if d := cmp.Diff([]byte("abc"), data); d != "" {
		t.Error(d)
	}
}

func TestReaderSeek(t *testing.T) {
	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	r := NewReader(bytes.NewReader(data))

	check := func(pos int64) {
		t.Helper()
		b, err := r.ReadByte()
		if err != nil {
			t.Fatal(err)
		}
		if b != byte(pos%251) {
			t.Errorf("byte at %d: %d != %d", pos, b, pos%251)
		}
		if r.Pos() != pos+1 {
			t.Errorf("position %d != %d", r.Pos(), pos+1)
		}
	}

	for _, pos := range []int64{5000, 4990, 9999, 0, 4096, 4095} {
		p, err := r.Seek(pos, io.SeekStart)
		if err != nil {
			t.Fatal(err)
		}
		if p != pos {
			t.Errorf("Seek returned %d, expected %d", p, pos)
		}
		check(pos)
	}

	err := r.Skip(10)
	if err != nil {
		t.Fatal(err)
	}
	check(4106)

	end, err := r.Seek(-1, io.SeekEnd)
	if err != nil {
		t.Fatal(err)
	}
	if end != 9999 {
		t.Errorf("wrong end position %d", end)
	}
	check(9999)
	if _, err := r.Peek(); err != io.EOF {
		t.Errorf("wrong error %v", err)
	}
}

func TestReaderSeekEnd(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	r := NewReader(bytes.NewReader(data))
	r.ReadBytes(3)

	_, err := r.Seek(-20, io.SeekEnd)
	if err == nil {
		t.Error("missing error for negative position")
	}
	if r.Pos() != 3 {
		t.Errorf("position %d != 3", r.Pos())
	}
	b, err := r.ReadByte()
	if err != nil || b != 3 {
		t.Errorf("wrong byte %d (%v)", b, err)
	}

	pos, err := r.Seek(-2, io.SeekEnd)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 8 {
		t.Errorf("wrong position %d", pos)
	}
	rest := r.ReadBytes(2)
	if d := cmp.Diff([]byte{8, 9}, rest); d != "" {
		t.Error(d)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		t.Errorf("wrong error %v", err)
	}
}

func TestReaderOffset(t *testing.T) {
	buf := bytes.NewReader([]byte{1, 2, 3, 4, 5})
	buf.Seek(3, io.SeekStart)
	r := NewReader(buf)
	if r.Pos() != 3 {
		t.Fatalf("position %d != 3", r.Pos())
	}
	b, _ := r.ReadByte()
	if b != 4 {
		t.Errorf("wrong byte %d", b)
	}
}
