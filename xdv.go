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

// cmdXPic executes the XDV x_pic command.
// Format: box[1] matrix[4][6] p[2] len[2] path[len]
func (intp *Interpreter) cmdXPic() error {
	if err := intp.requirePage("x_pic"); err != nil {
		return err
	}
	r := intp.r
	p := &Picture{
		H:   intp.state.H,
		V:   intp.state.V,
		Box: uint8(r.ReadUnsigned(1)),
	}
	for i := range p.Matrix {
		p.Matrix[i] = r.ReadSigned(4)
	}
	p.Page = int16(r.ReadUnsigned(2))
	n := int(r.ReadUnsigned(2))
	p.Path = string(r.ReadBytes(n))
	intp.Actions.Picture(p)
	return nil
}

// cmdXFontDef executes the XDV x_fnt_def command.
// Format: k[4] ptsize[4] flags[2] lp[1] lf[1] ls[1] ps[lp] fam[lf] sty[ls]
// followed by optional fields selected by the flags.
func (intp *Interpreter) cmdXFontDef() {
	r := intp.r
	f := &Font{
		Num: r.ReadSigned(4),
	}
	size := r.ReadSigned(4)
	f.Scale = size
	f.DesignSize = size

	nf := &NativeFont{
		Flags: uint16(r.ReadUnsigned(2)),
	}
	psLen := int(r.ReadUnsigned(1))
	famLen := int(r.ReadUnsigned(1))
	styLen := int(r.ReadUnsigned(1))
	f.Name = string(r.ReadBytes(psLen))
	nf.Family = string(r.ReadBytes(famLen))
	nf.Style = string(r.ReadBytes(styLen))

	if nf.Flags&NativeFlagColored != 0 {
		nf.RGBA = r.ReadUnsigned(4)
	}
	if nf.Flags&NativeFlagExtend != 0 {
		nf.Extend = r.ReadSigned(4)
	}
	if nf.Flags&NativeFlagSlant != 0 {
		nf.Slant = r.ReadSigned(4)
	}
	if nf.Flags&NativeFlagEmbolden != 0 {
		nf.Embolden = r.ReadSigned(4)
	}
	if nf.Flags&NativeFlagVariations != 0 {
		n := int(r.ReadUnsigned(2))
		nf.Variations = make([]int32, n)
		for i := range nf.Variations {
			nf.Variations[i] = r.ReadSigned(4)
		}
	}
	f.Native = nf

	intp.defineFont(f)
}

// cmdXGlyphs executes x_glyph_array (withDY) and x_glyph_str.
//
// Format x_glyph_array: w[4] n[2] (dx[4] dy[4])[n] g[2][n]
// Format x_glyph_str:   w[4] n[2] dx[4][n] g[2][n]
func (intp *Interpreter) cmdXGlyphs(withDY bool) error {
	if err := intp.requirePage("glyph command"); err != nil {
		return err
	}
	r := intp.r
	run := &GlyphRun{
		H:     intp.state.H,
		V:     intp.state.V,
		Width: r.ReadSigned(4),
		Font:  intp.CurrentFont(),
	}
	n := int(r.ReadUnsigned(2))
	run.DX = make([]int32, n)
	run.DY = make([]int32, n)
	for i := range n {
		run.DX[i] = r.ReadSigned(4)
		if withDY {
			run.DY[i] = r.ReadSigned(4)
		}
	}
	run.Glyphs = make([]uint16, n)
	for i := range run.Glyphs {
		run.Glyphs[i] = uint16(r.ReadUnsigned(2))
	}
	if run.Font == nil {
		Logger().Warn("glyphs without font", "pos", intp.cmdPos)
	}

	intp.Actions.Glyphs(run)
	intp.moveRight(run.Width)
	return nil
}
