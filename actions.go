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

// Actions receives the visible effects of a DVI file.
// All positions and dimensions are in DVI units, with v growing downwards.
//
// Implementations normally embed [NopActions] and override the methods they
// are interested in.
type Actions interface {
	Preamble(p *Preamble)
	Postamble()

	// BeginPage is called for every bop command, with the ten \count values
	// and the offset of the previous bop (-1 on the first page).
	BeginPage(counts [10]int32, prev int32)
	EndPage()

	// SetChar and PutChar place character c at (h, v).  The position is
	// the one before the character advances the cursor.  The font is nil if
	// no font or an undefined font is selected.
	SetChar(h, v int32, c int32, f *Font)
	PutChar(h, v int32, c int32, f *Font)

	// SetRule and PutRule draw a rule with its lower left corner at (h, v).
	// The values are passed on as found in the file, including
	// non-positive dimensions.
	SetRule(h, v, height, width int32)
	PutRule(h, v, height, width int32)

	// FontSelect is called when the current font changes.  The font is nil
	// if num was never defined.
	FontSelect(num int32, f *Font)

	// FontDef is called when a font number is defined.  If the number was
	// defined before with different parameters, prev is the old definition.
	FontDef(f *Font, prev *Font)

	// Special passes on the payload of an xxx command, unchanged.
	Special(h, v int32, data []byte)

	// Direction is called by the pTeX dir command.
	Direction(d Direction)

	// The following methods are only used for XDV files.
	NativeFontDef(f *Font, prev *Font)
	Picture(p *Picture)
	Glyphs(run *GlyphRun)
}

// Preamble holds the contents of the pre command.
type Preamble struct {
	Format  Format
	Num     uint32
	Den     uint32
	Mag     uint32
	Comment string
}

// PointsPerUnit returns the size of a DVI unit in TeX points,
// including the magnification.
func (p *Preamble) PointsPerUnit() float64 {
	if p.Den == 0 {
		return 0
	}
	return float64(p.Num) / 25400000 * 7227 / float64(p.Den) * float64(p.Mag) / 1000
}

// Direction is the writing direction selected by the pTeX dir command.
type Direction uint8

// These are the writing directions.
const (
	Horizontal Direction = 0
	Vertical   Direction = 1
)

// Picture describes an image included by an XDV x_pic command.
type Picture struct {
	H, V   int32
	Box    uint8
	Matrix [6]int32
	Page   int16
	Path   string
}

// GlyphRun describes the glyphs of an x_glyph_array or x_glyph_str command.
// Glyph i is placed at (H+DX[i], V+DY[i]).
type GlyphRun struct {
	H, V   int32
	Width  int32
	DX, DY []int32
	Glyphs []uint16
	Font   *Font
}

// NopActions implements [Actions] by ignoring all calls.
type NopActions struct{}

var _ Actions = NopActions{}

func (NopActions) Preamble(*Preamble)                  {}
func (NopActions) Postamble()                          {}
func (NopActions) BeginPage([10]int32, int32)          {}
func (NopActions) EndPage()                            {}
func (NopActions) SetChar(int32, int32, int32, *Font)  {}
func (NopActions) PutChar(int32, int32, int32, *Font)  {}
func (NopActions) SetRule(int32, int32, int32, int32)  {}
func (NopActions) PutRule(int32, int32, int32, int32)  {}
func (NopActions) FontSelect(int32, *Font)             {}
func (NopActions) FontDef(*Font, *Font)                {}
func (NopActions) Special(int32, int32, []byte)        {}
func (NopActions) Direction(Direction)                 {}
func (NopActions) NativeFontDef(*Font, *Font)          {}
func (NopActions) Picture(*Picture)                    {}
func (NopActions) Glyphs(*GlyphRun)                    {}
