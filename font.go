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

import "golang.org/x/exp/slices"

// Font describes a font defined by a fnt_def or x_fnt_def command.
type Font struct {
	// Num is the font number used in the DVI file.
	Num int32

	Checksum uint32

	// Scale is the at-size of the font, in DVI units.
	Scale int32

	// DesignSize is the design size of the font, in DVI units.
	DesignSize int32

	// Area is the directory part of the font name.  This is usually empty.
	Area string

	// Name is the font file name without extension.  For native fonts this
	// is the PostScript name or file name of the font.
	Name string

	// Native is set for fonts defined by the x_fnt_def command.
	Native *NativeFont
}

// NativeFont holds the additional information of an XDV font definition.
type NativeFont struct {
	Flags  uint16
	Family string
	Style  string

	// The following fields are only valid if the corresponding flag is set.
	RGBA       uint32
	Extend     int32
	Slant      int32
	Embolden   int32
	Variations []int32
}

// Flags used in [NativeFont].
const (
	NativeFlagColored    uint16 = 0x0200
	NativeFlagVertical   uint16 = 0x0100
	NativeFlagVariations uint16 = 0x0800
	NativeFlagExtend     uint16 = 0x1000
	NativeFlagSlant      uint16 = 0x2000
	NativeFlagEmbolden   uint16 = 0x4000
)

// sameAs reports whether two definitions describe the same font.
func (f *Font) sameAs(other *Font) bool {
	if (f.Native == nil) != (other.Native == nil) {
		return false
	}
	return f.Checksum == other.Checksum &&
		f.Scale == other.Scale &&
		f.DesignSize == other.DesignSize &&
		f.Area == other.Area &&
		f.Name == other.Name
}

// CharMetrics gives the dimensions of a glyph, in DVI units.
type CharMetrics struct {
	Width  int32
	Height int32 // extent above the baseline
	Depth  int32 // extent below the baseline
}

// Metrics looks up glyph dimensions.  For fonts defined by fnt_def, code is
// a character code.  For native fonts, code is a glyph ID.
type Metrics interface {
	CharMetrics(f *Font, code int32) (CharMetrics, bool)
}

// Font returns the font defined for the given font number,
// or nil if no such font has been defined.
func (intp *Interpreter) Font(num int32) *Font {
	return intp.fonts[num]
}

// FontNumbers returns the defined font numbers in increasing order.
func (intp *Interpreter) FontNumbers() []int32 {
	res := make([]int32, 0, len(intp.fonts))
	for num := range intp.fonts {
		res = append(res, num)
	}
	slices.Sort(res)
	return res
}

// CurrentFont returns the currently selected font.
// The result is nil if no font is selected, or if the selected font number
// is not defined.
func (intp *Interpreter) CurrentFont() *Font {
	if !intp.fontSelected {
		return nil
	}
	return intp.fonts[intp.curFont]
}

// cmdFontDef executes fnt_def1 to fnt_def4.
// Format: k[len] c[4] s[4] d[4] a[1] l[1] n[a+l]
func (intp *Interpreter) cmdFontDef(length int) {
	r := intp.r
	f := &Font{}
	if length == 4 {
		f.Num = r.ReadSigned(4)
	} else {
		f.Num = int32(r.ReadUnsigned(length))
	}
	f.Checksum = r.ReadUnsigned(4)
	f.Scale = r.ReadSigned(4)
	f.DesignSize = r.ReadSigned(4)
	areaLen := int(r.ReadUnsigned(1))
	nameLen := int(r.ReadUnsigned(1))
	f.Area = string(r.ReadBytes(areaLen))
	f.Name = string(r.ReadBytes(nameLen))

	intp.defineFont(f)
}

// defineFont registers f in the font table and reports the definition.
// Repeating an identical definition, as the postamble does, is silent.
// A conflicting redefinition replaces the old font and is passed on
// together with the previous definition.
func (intp *Interpreter) defineFont(f *Font) {
	prev, seen := intp.fonts[f.Num]
	if seen && prev.sameAs(f) {
		return
	}
	intp.fonts[f.Num] = f
	if !seen {
		prev = nil
	} else {
		Logger().Warn("font redefined",
			"num", f.Num, "old", prev.Name, "new", f.Name)
	}
	if f.Native != nil {
		intp.Actions.NativeFontDef(f, prev)
	} else {
		intp.Actions.FontDef(f, prev)
	}
}

// selectFont executes fnt_num_i and fnt1 to fnt4.
func (intp *Interpreter) selectFont(num int32) {
	intp.curFont = num
	intp.fontSelected = true
	f := intp.fonts[num]
	if f == nil {
		Logger().Warn("undefined font selected",
			"num", num, "pos", intp.cmdPos)
	}
	intp.Actions.FontSelect(num, f)
}
