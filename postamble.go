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
)

type postamble struct {
	lastBop    int32
	num, den   uint32
	mag        uint32
	maxV, maxH int32
	maxStack   uint16
	totalPages uint16
}

// TotalPages returns the number of pages given in the postamble, or 0 if
// the postamble has not been read.
func (intp *Interpreter) TotalPages() int {
	if intp.post == nil {
		return 0
	}
	return int(intp.post.totalPages)
}

// cmdPost executes the post command.
// Format: p[4] num[4] den[4] mag[4] l[4] u[4] s[2] t[2]
func (intp *Interpreter) cmdPost() error {
	switch intp.phase {
	case phasePage:
		return newError(Protocol, intp.cmdPos, "postamble command within a page")
	case phasePostamble, phaseDone:
		return newError(Protocol, intp.cmdPos, "repeated postamble")
	}

	r := intp.r
	p := &postamble{
		lastBop:    r.ReadSigned(4),
		num:        r.ReadUnsigned(4),
		den:        r.ReadUnsigned(4),
		mag:        r.ReadUnsigned(4),
		maxV:       r.ReadSigned(4),
		maxH:       r.ReadSigned(4),
		maxStack:   uint16(r.ReadUnsigned(2)),
		totalPages: uint16(r.ReadUnsigned(2)),
	}
	intp.post = p
	if intp.preamble == nil {
		intp.preamble = &Preamble{
			Format: intp.format,
			Num:    p.num,
			Den:    p.den,
			Mag:    p.mag,
		}
	}
	intp.phase = phasePostamble
	intp.Actions.Postamble()
	return nil
}

// cmdPostPost executes the post_post command.
// Format: q[4] i[1] 223's[>=4]
func (intp *Interpreter) cmdPostPost() error {
	if intp.phase != phasePostamble {
		return newError(Protocol, intp.cmdPos, "post_post outside of postamble")
	}
	r := intp.r
	r.ReadUnsigned(4)
	id := uint8(r.ReadUnsigned(1))
	if err := intp.raiseFormat(id, intp.cmdPos+5); err != nil {
		return err
	}
	for {
		b, err := r.Peek()
		if err != nil || b != fillByte {
			break
		}
		r.ReadByte()
	}
	intp.phase = phaseDone
	return nil
}

// findPostamble returns the offset of the post command, as given by the
// pointer in front of the identification byte.
func (intp *Interpreter) findPostamble() (int64, error) {
	idPos, err := intp.readTrailerFormat()
	if err != nil {
		return 0, err
	}
	if idPos < 5 {
		return 0, newError(MalformedTrailer, idPos, "file too short")
	}
	if _, err := intp.r.Seek(idPos-4, io.SeekStart); err != nil {
		return 0, newError(InvalidFile, idPos-4, "%s", err)
	}
	q := int64(intp.r.ReadUnsigned(4))
	if q > idPos-5 {
		return 0, newError(MalformedTrailer, idPos-4, "bad postamble pointer %d", q)
	}
	return q, nil
}

// ExecutePostamble executes the commands from post to post_post.
// This loads the font definitions and the page count.
func (intp *Interpreter) ExecutePostamble() error {
	q, err := intp.findPostamble()
	if err != nil {
		return err
	}
	if _, err := intp.r.Seek(q, io.SeekStart); err != nil {
		return newError(InvalidFile, q, "%s", err)
	}
	if b, _ := intp.r.Peek(); b != OpPost {
		return newError(MalformedTrailer, q, "byte %d is not post", q)
	}

	intp.phase = phaseIdle
	for {
		cmd, err := intp.executeCommand()
		if err != nil {
			return err
		}
		if cmd == cmdPostPost {
			return nil
		}
	}
}

// ExecutePage executes the commands of page n, from bop to eop.
// Pages are numbered starting from 1.  The page is located using the
// back pointers, starting from the postamble.
func (intp *Interpreter) ExecutePage(n int) error {
	if intp.post == nil {
		err := intp.ExecutePostamble()
		if err != nil {
			return err
		}
	}
	total := int(intp.post.totalPages)
	if n < 1 || n > total {
		return newError(InvalidFile, -1, "page %d out of range 1-%d", n, total)
	}

	r := intp.r
	bop := int64(intp.post.lastBop)
	for k := total; k > n; k-- {
		if bop < 0 {
			return newError(InvalidFile, -1, "page %d not found", n)
		}
		// skip the opcode and the ten \count values
		if _, err := r.Seek(bop+41, io.SeekStart); err != nil {
			return newError(InvalidFile, bop, "%s", err)
		}
		bop = int64(r.ReadSigned(4))
	}
	if bop < 0 {
		return newError(InvalidFile, -1, "page %d not found", n)
	}
	if _, err := r.Seek(bop, io.SeekStart); err != nil {
		return newError(InvalidFile, bop, "%s", err)
	}
	if b, _ := r.Peek(); b != OpBop {
		return newError(InvalidFile, bop, "byte %d is not bop", bop)
	}

	intp.phase = phaseIdle
	for {
		cmd, err := intp.executeCommand()
		if err != nil {
			return err
		}
		if cmd == cmdEop {
			return nil
		}
	}
}
