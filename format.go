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
	"io"
	"strconv"
)

// Format identifies a DVI dialect.  The numeric value is the identification
// byte found in the preamble and after the post_post command.  Later
// dialects extend earlier ones, so formats are ordered.
type Format uint8

// These are the DVI dialects understood by the interpreter.
const (
	FormatUnset    Format = 0
	FormatStandard Format = 2 // DVI as written by TeX
	FormatVertical Format = 3 // pTeX: adds the dir command
	FormatNative   Format = 5 // XeTeX XDV: adds native font and glyph commands
)

func (f Format) String() string {
	switch f {
	case FormatUnset:
		return "unset"
	case FormatStandard:
		return "DVI"
	case FormatVertical:
		return "pTeX DVI"
	case FormatNative:
		return "XDV"
	default:
		return "dvi.Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// IsKnown reports whether f is one of the supported dialects.
func (f Format) IsKnown() bool {
	switch f {
	case FormatStandard, FormatVertical, FormatNative:
		return true
	default:
		return false
	}
}

// raiseFormat records that the stream uses at least the format with
// identification byte id.  The format is never lowered.
func (intp *Interpreter) raiseFormat(id uint8, pos int64) error {
	f := max(intp.format, Format(id))
	if !f.IsKnown() {
		return newError(UnsupportedFormat, pos, "DVI format %d not supported", f)
	}
	if f != intp.format {
		Logger().Info("DVI format", "format", f)
	}
	intp.format = f
	return nil
}

// fillByte is the value used to pad the end of a DVI file.
const fillByte = 223

// readTrailerFormat determines the DVI format from the identification byte
// in front of the fill bytes at the end of the file.  The offset of the
// identification byte is returned.  The read position is left just after
// the identification byte.
func (intp *Interpreter) readTrailerFormat() (int64, error) {
	r := intp.r
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, newError(InvalidFile, -1, "%s", err)
	}

	count := 0
	pos := end - 1
	for pos >= 0 {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return 0, newError(InvalidFile, -1, "%s", err)
		}
		b, err := r.Peek()
		if err != nil {
			return 0, newError(MalformedTrailer, pos, "cannot read trailer")
		}
		if b != fillByte {
			break
		}
		count++
		pos--
	}
	if count < 4 {
		// at least four fill bytes are required
		return 0, newError(MalformedTrailer, end, "missing fill bytes at end of file")
	}
	if pos < 0 {
		return 0, newError(MalformedTrailer, 0, "missing identification byte")
	}

	id := uint8(r.ReadUnsigned(1))
	return pos, intp.raiseFormat(id, pos)
}
