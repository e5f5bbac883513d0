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

// Package dvitest helps to write synthetic DVI files for tests.
package dvitest

import (
	"bytes"
)

// Standard values for the preamble: DVI units are 1e-7 m and the
// magnification is 1.
const (
	Num = 25400000
	Den = 473628672
	Mag = 1000
)

// Builder writes a DVI file command by command.  The bop back pointers
// and the postamble pointer are filled in automatically.
type Builder struct {
	buf      bytes.Buffer
	lastBop  int32
	pages    uint16
	depth    int
	maxDepth int
	post     int32
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{lastBop: -1, post: -1}
}

// Pos returns the offset of the next command.
func (b *Builder) Pos() int64 {
	return int64(b.buf.Len())
}

// Bytes returns the data written so far.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// Reader returns a reader for the data written so far.
func (b *Builder) Reader() *bytes.Reader {
	return bytes.NewReader(b.buf.Bytes())
}

// Raw appends the given bytes unchanged.
func (b *Builder) Raw(data ...byte) *Builder {
	b.buf.Write(data)
	return b
}

// Uint appends an n-byte big-endian integer.
func (b *Builder) Uint(n int, x uint32) *Builder {
	for i := n - 1; i >= 0; i-- {
		b.buf.WriteByte(byte(x >> (8 * i)))
	}
	return b
}

// Int appends an n-byte big-endian two's complement integer.
func (b *Builder) Int(n int, x int32) *Builder {
	return b.Uint(n, uint32(x))
}

func (b *Builder) str(s string) {
	b.buf.WriteString(s)
}

// Cmd appends the n-byte variant of a command with one operand, for
// example Cmd(dvi.OpRight1, 2, -100) writes right2.  The opcode of the
// first variant is given.
func (b *Builder) Cmd(op1 byte, n int, x int32) *Builder {
	b.buf.WriteByte(op1 + byte(n-1))
	return b.Int(n, x)
}

// Pre appends a preamble.
func (b *Builder) Pre(id byte, num, den, mag uint32, comment string) *Builder {
	b.buf.WriteByte(247)
	b.buf.WriteByte(id)
	b.Uint(4, num).Uint(4, den).Uint(4, mag)
	b.buf.WriteByte(byte(len(comment)))
	b.str(comment)
	return b
}

// StdPre appends a preamble with the usual TeX values.
func (b *Builder) StdPre(id byte) *Builder {
	return b.Pre(id, Num, Den, Mag, "dvitest")
}

// Bop starts a new page.  Missing counts are zero.
func (b *Builder) Bop(counts ...int32) *Builder {
	pos := int32(b.buf.Len())
	b.buf.WriteByte(139)
	for i := range 10 {
		var c int32
		if i < len(counts) {
			c = counts[i]
		}
		b.Int(4, c)
	}
	b.Int(4, b.lastBop)
	b.lastBop = pos
	b.pages++
	return b
}

// Eop ends a page.
func (b *Builder) Eop() *Builder {
	return b.Raw(140)
}

// Push appends a push command.
func (b *Builder) Push() *Builder {
	b.depth++
	b.maxDepth = max(b.maxDepth, b.depth)
	return b.Raw(141)
}

// Pop appends a pop command.
func (b *Builder) Pop() *Builder {
	b.depth--
	return b.Raw(142)
}

// SetChar typesets character c and moves right, using the shortest
// encoding.
func (b *Builder) SetChar(c int32) *Builder {
	if c >= 0 && c < 128 {
		return b.Raw(byte(c))
	}
	return b.Cmd(128, size(c), c)
}

// PutChar typesets character c without moving.
func (b *Builder) PutChar(c int32) *Builder {
	return b.Cmd(133, size(c), c)
}

// SetRule appends set_rule.
func (b *Builder) SetRule(height, width int32) *Builder {
	return b.Raw(132).Int(4, height).Int(4, width)
}

// PutRule appends put_rule.
func (b *Builder) PutRule(height, width int32) *Builder {
	return b.Raw(137).Int(4, height).Int(4, width)
}

// Right appends right4.
func (b *Builder) Right(d int32) *Builder {
	return b.Cmd(143, 4, d)
}

// Down appends down4.
func (b *Builder) Down(d int32) *Builder {
	return b.Cmd(157, 4, d)
}

// FontDef appends a fnt_def command.
func (b *Builder) FontDef(num int32, checksum uint32, scale, design int32, name string) *Builder {
	b.Cmd(243, size(num), num)
	b.Uint(4, checksum).Int(4, scale).Int(4, design)
	b.buf.WriteByte(0)
	b.buf.WriteByte(byte(len(name)))
	b.str(name)
	return b
}

// Font selects a font, using the shortest encoding.
func (b *Builder) Font(num int32) *Builder {
	if num >= 0 && num < 64 {
		return b.Raw(171 + byte(num))
	}
	return b.Cmd(235, size(num), num)
}

// XXX appends a special.
func (b *Builder) XXX(data string) *Builder {
	b.Cmd(239, size(int32(len(data))), int32(len(data)))
	b.str(data)
	return b
}

// Dir appends the pTeX dir command.
func (b *Builder) Dir(d byte) *Builder {
	return b.Raw(255, d)
}

// XFontDef appends an x_fnt_def command without optional fields.
func (b *Builder) XFontDef(num, ptSize int32, psName, family, style string) *Builder {
	b.Raw(252).Int(4, num).Int(4, ptSize).Uint(2, 0)
	b.Raw(byte(len(psName)), byte(len(family)), byte(len(style)))
	b.str(psName)
	b.str(family)
	b.str(style)
	return b
}

// XGlyphArray appends x_glyph_array.  The slices must have equal length.
func (b *Builder) XGlyphArray(width int32, dx, dy []int32, glyphs []uint16) *Builder {
	b.Raw(253).Int(4, width).Uint(2, uint32(len(glyphs)))
	for i := range glyphs {
		b.Int(4, dx[i]).Int(4, dy[i])
	}
	for _, g := range glyphs {
		b.Uint(2, uint32(g))
	}
	return b
}

// XGlyphString appends x_glyph_str.  The slices must have equal length.
func (b *Builder) XGlyphString(width int32, dx []int32, glyphs []uint16) *Builder {
	b.Raw(254).Int(4, width).Uint(2, uint32(len(glyphs)))
	for i := range glyphs {
		b.Int(4, dx[i])
	}
	for _, g := range glyphs {
		b.Uint(2, uint32(g))
	}
	return b
}

// Post appends the post command.  Font definitions can follow.
func (b *Builder) Post(num, den, mag uint32) *Builder {
	b.post = int32(b.buf.Len())
	b.buf.WriteByte(248)
	b.Int(4, b.lastBop)
	b.Uint(4, num).Uint(4, den).Uint(4, mag)
	b.Int(4, 1000).Int(4, 1000) // maximal page height and width
	b.Uint(2, uint32(b.maxDepth))
	b.Uint(2, uint32(b.pages))
	return b
}

// PostPost appends post_post, the identification byte and fill fill bytes.
func (b *Builder) PostPost(id byte, fill int) *Builder {
	b.buf.WriteByte(249)
	b.Int(4, b.post)
	b.buf.WriteByte(id)
	for range fill {
		b.buf.WriteByte(223)
	}
	return b
}

// Finish appends a postamble with the usual values and the trailer.
func (b *Builder) Finish(id byte) *Builder {
	b.Post(Num, Den, Mag)
	// post_post with its operands takes 6 bytes; pad to a multiple of 4
	fill := 4 + (-(b.buf.Len() + 6))&3
	return b.PostPost(id, fill)
}

// size returns the number of bytes needed to write x as operand of a
// set, put, fnt or fnt_def command.
func size(x int32) int {
	switch {
	case x < 0:
		return 4
	case x < 1<<8:
		return 1
	case x < 1<<16:
		return 2
	case x < 1<<24:
		return 3
	default:
		return 4
	}
}
