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
	"errors"
	"io"
)

// Reader is a buffered, seekable reader for big-endian binary data.
//
// Reads past the end of the stream do not fail.  Instead, the missing bytes
// are read as zero and the end-of-stream condition is set; see [Reader.EOF].
type Reader struct {
	r io.ReadSeeker

	buf       []byte
	pos, used int
	base      int64 // file offset of buf[0]

	eof bool

	// err is the first error other than io.EOF returned by r.
	// Once set, all subsequent reads fail.
	err error
}

// NewReader returns a new Reader which reads from r.
// The first byte read is the byte at the current position of r.
func NewReader(r io.ReadSeeker) *Reader {
	base, _ := r.Seek(0, io.SeekCurrent)
	return &Reader{
		r:    r,
		buf:  make([]byte, 4096),
		base: base,
	}
}

// Pos returns the offset of the next byte to be read.
func (r *Reader) Pos() int64 {
	return r.base + int64(r.pos)
}

// EOF reports whether a read has hit the end of the stream since the last
// call to Seek.
func (r *Reader) EOF() bool {
	return r.eof
}

// Err returns the first read error other than io.EOF, if any.
func (r *Reader) Err() error {
	return r.err
}

// ReadByte reads a single byte.
// At the end of the stream, io.EOF is returned.
func (r *Reader) ReadByte() (byte, error) {
	for r.pos >= r.used {
		err := r.refill()
		if err != nil {
			return 0, err
		}
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Peek returns the next byte without consuming it.
func (r *Reader) Peek() (byte, error) {
	for r.pos >= r.used {
		err := r.refill()
		if err != nil {
			return 0, err
		}
	}
	return r.buf[r.pos], nil
}

// ReadUnsigned reads a big-endian unsigned integer of n bytes,
// where n is between 1 and 4.  Missing bytes at the end of the stream
// are read as zero.
func (r *Reader) ReadUnsigned(n int) uint32 {
	var res uint32
	for i := 0; i < n; i++ {
		b, _ := r.ReadByte()
		res = res<<8 | uint32(b)
	}
	return res
}

// ReadSigned reads a big-endian two's complement integer of n bytes,
// where n is between 1 and 4.  The value is sign-extended from the first
// byte read.
func (r *Reader) ReadSigned(n int) int32 {
	u := r.ReadUnsigned(n)
	shift := 32 - 8*n
	return int32(u<<shift) >> shift
}

// ReadBytes reads n bytes.  If the stream ends early, the returned slice is
// shorter than n.
func (r *Reader) ReadBytes(n int) []byte {
	var res []byte
	for len(res) < n {
		if r.pos >= r.used {
			if r.refill() != nil {
				break
			}
		}
		k := min(n-len(res), r.used-r.pos)
		res = append(res, r.buf[r.pos:r.pos+k]...)
		r.pos += k
	}
	return res
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int64) error {
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}

// Seek sets the position for the next read.  The whence values are the
// ones used by [io.Seeker].  Seek clears the end-of-stream condition.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.Pos() + offset
	case io.SeekEnd:
		end, err := r.r.Seek(0, io.SeekEnd)
		if err != nil {
			r.err = err
			return 0, err
		}
		// keep the underlying reader at base+used
		_, err = r.r.Seek(r.base+int64(r.used), io.SeekStart)
		if err != nil {
			r.err = err
			return 0, err
		}
		target = end + offset
	default:
		return 0, errors.New("dvi: invalid whence")
	}
	if target < 0 {
		return 0, errors.New("dvi: negative position")
	}

	r.eof = false
	if target >= r.base && target <= r.base+int64(r.used) {
		r.pos = int(target - r.base)
		return target, nil
	}

	pos, err := r.r.Seek(target, io.SeekStart)
	if err != nil {
		r.err = err
		return 0, err
	}
	r.base = pos
	r.pos, r.used = 0, 0
	return pos, nil
}

func (r *Reader) refill() error {
	if r.err != nil {
		return r.err
	}
	if r.eof {
		return io.EOF
	}

	if r.pos >= r.used {
		r.base += int64(r.used)
		r.pos, r.used = 0, 0
	}

	n, err := io.ReadAtLeast(r.r, r.buf[r.used:], 1)
	r.used += n
	if n > 0 {
		return nil
	}
	if err == io.EOF {
		r.eof = true
	} else {
		r.err = err
	}
	return err
}
