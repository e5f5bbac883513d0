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
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/dvi/internal/dvitest"
)

// recorder logs all calls as strings.
type recorder struct {
	NopActions
	events []string
}

func (r *recorder) add(format string, a ...any) {
	r.events = append(r.events, fmt.Sprintf(format, a...))
}

func fontName(f *Font) string {
	if f == nil {
		return "<nil>"
	}
	return f.Name
}

func (r *recorder) Preamble(p *Preamble) { r.add("pre %q", p.Comment) }
func (r *recorder) Postamble()           { r.add("post") }
func (r *recorder) BeginPage(counts [10]int32, prev int32) {
	r.add("bop %d", counts[0])
}
func (r *recorder) EndPage() { r.add("eop") }
func (r *recorder) SetChar(h, v, c int32, f *Font) {
	r.add("setchar %d %d %d %s", h, v, c, fontName(f))
}
func (r *recorder) PutChar(h, v, c int32, f *Font) {
	r.add("putchar %d %d %d %s", h, v, c, fontName(f))
}
func (r *recorder) SetRule(h, v, height, width int32) {
	r.add("setrule %d %d %d %d", h, v, height, width)
}
func (r *recorder) PutRule(h, v, height, width int32) {
	r.add("putrule %d %d %d %d", h, v, height, width)
}
func (r *recorder) FontSelect(num int32, f *Font) {
	r.add("fnt %d %s", num, fontName(f))
}
func (r *recorder) FontDef(f *Font, prev *Font) {
	r.add("fntdef %d %s %s", f.Num, f.Name, fontName(prev))
}
func (r *recorder) Special(h, v int32, data []byte) {
	r.add("xxx %d %d %q", h, v, data)
}
func (r *recorder) Direction(d Direction) { r.add("dir %d", d) }
func (r *recorder) NativeFontDef(f *Font, prev *Font) {
	r.add("xfntdef %d %s %s", f.Num, f.Name, fontName(prev))
}
func (r *recorder) Picture(p *Picture) {
	r.add("xpic %d %d %s", p.H, p.V, p.Path)
}
func (r *recorder) Glyphs(run *GlyphRun) {
	r.add("glyphs %d %d %v %v %v %s", run.H, run.V, run.DX, run.DY, run.Glyphs, fontName(run.Font))
}

// fixedMetrics gives all characters the same dimensions.
type fixedMetrics CharMetrics

func (m fixedMetrics) CharMetrics(f *Font, code int32) (CharMetrics, bool) {
	return CharMetrics(m), true
}

// inPage returns an interpreter for data which starts inside a page.
func inPage(data []byte, actions Actions) *Interpreter {
	intp := NewInterpreter(dvitest.New().Raw(data...).Reader(), actions)
	intp.format = FormatStandard
	intp.phase = phasePage
	return intp
}

func TestPreamble(t *testing.T) {
	b := dvitest.New().Pre(2, 25400000, 473628672, 1000, "test")
	end := b.Pos()
	b.Raw(OpNop)

	intp := NewInterpreter(b.Reader(), nil)
	cmd, err := intp.executeCommand()
	if err != nil {
		t.Fatal(err)
	}
	if cmd != cmdPre {
		t.Errorf("wrong command %s", cmd)
	}
	if intp.Format() != FormatStandard {
		t.Errorf("wrong format %s", intp.Format())
	}
	if intp.r.Pos() != end {
		t.Errorf("cursor at %d, expected %d", intp.r.Pos(), end)
	}
	expected := &Preamble{
		Format:  FormatStandard,
		Num:     25400000,
		Den:     473628672,
		Mag:     1000,
		Comment: "test",
	}
	if d := cmp.Diff(expected, intp.Preamble()); d != "" {
		t.Error(d)
	}

	ppu := intp.Preamble().PointsPerUnit()
	if ppu < 1.0/65536*0.9999 || ppu > 1.0/65536*1.0001 {
		t.Errorf("wrong unit size %g", ppu)
	}
}

func TestMoveRight(t *testing.T) {
	data := dvitest.New().Cmd(OpRight1, 2, -100).Bytes()
	intp := inPage(data, nil)
	intp.state = State{H: 500, V: 20, W: 1, X: 2, Y: 3, Z: 4}

	_, err := intp.executeCommand()
	if err != nil {
		t.Fatal(err)
	}
	expected := State{H: 400, V: 20, W: 1, X: 2, Y: 3, Z: 4}
	if d := cmp.Diff(expected, intp.State()); d != "" {
		t.Error(d)
	}
}

func TestRegisters(t *testing.T) {
	data := dvitest.New().
		Cmd(OpW1, 1, 10).Raw(OpW0).
		Cmd(OpX1, 2, -3).Raw(OpX0).
		Cmd(OpY1, 3, 7).Raw(OpY0).
		Cmd(OpZ1, 4, -1).Raw(OpZ0).
		Bytes()
	intp := inPage(data, nil)
	for range 8 {
		if _, err := intp.executeCommand(); err != nil {
			t.Fatal(err)
		}
	}
	expected := State{H: 14, V: 12, W: 10, X: -3, Y: 7, Z: -1}
	if d := cmp.Diff(expected, intp.State()); d != "" {
		t.Error(d)
	}
}

func TestRule(t *testing.T) {
	for _, set := range []bool{true, false} {
		b := dvitest.New()
		if set {
			b.SetRule(200, 300)
		} else {
			b.PutRule(200, 300)
		}
		rec := &recorder{}
		intp := inPage(b.Bytes(), rec)
		intp.state.H = 10
		intp.state.V = 20

		_, err := intp.executeCommand()
		if err != nil {
			t.Fatal(err)
		}

		var expected []string
		var h int32
		if set {
			expected = []string{"setrule 10 20 200 300"}
			h = 310
		} else {
			expected = []string{"putrule 10 20 200 300"}
			h = 10
		}
		if d := cmp.Diff(expected, rec.events); d != "" {
			t.Error(d)
		}
		if intp.State().H != h || intp.State().V != 20 {
			t.Errorf("wrong position (%d, %d)", intp.State().H, intp.State().V)
		}
	}
}

func TestExtensionNeedsFormat(t *testing.T) {
	intp := inPage([]byte{OpXGlyphStr}, nil)
	_, err := intp.executeCommand()
	if !errors.Is(err, ErrUndefinedOpcode) {
		t.Errorf("wrong error %v", err)
	}

	intp = inPage([]byte{250}, nil)
	intp.format = FormatNative
	_, err = intp.executeCommand()
	if !errors.Is(err, ErrUndefinedOpcode) {
		t.Errorf("wrong error %v", err)
	}
}

func TestPushPop(t *testing.T) {
	data := dvitest.New().Push().Raw(OpNop, OpNop).Pop().Bytes()
	intp := inPage(data, nil)
	before := State{H: 1, V: 2, W: 3, X: 4, Y: 5, Z: 6, Dir: Vertical}
	intp.state = before
	intp.selectFont(12)

	for range 4 {
		if _, err := intp.executeCommand(); err != nil {
			t.Fatal(err)
		}
	}
	if d := cmp.Diff(before, intp.State()); d != "" {
		t.Error(d)
	}
	if intp.Depth() != 0 {
		t.Errorf("stack depth %d", intp.Depth())
	}
	if !intp.fontSelected || intp.curFont != 12 {
		t.Error("font changed")
	}
}

func TestPushPopRestores(t *testing.T) {
	data := dvitest.New().
		Push().Right(100).Down(50).Cmd(OpW1, 1, 9).Pop().
		Bytes()
	intp := inPage(data, nil)
	intp.state = State{H: 7, V: 8}
	for range 5 {
		if _, err := intp.executeCommand(); err != nil {
			t.Fatal(err)
		}
	}
	if d := cmp.Diff(State{H: 7, V: 8}, intp.State()); d != "" {
		t.Error(d)
	}
}

func TestPopUnderflow(t *testing.T) {
	intp := inPage([]byte{OpPop}, nil)
	before := State{H: 1, V: 2, W: 3, X: 4, Y: 5, Z: 6}
	intp.state = before

	_, err := intp.executeCommand()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("wrong error %v", err)
	}
	if d := cmp.Diff(before, intp.State()); d != "" {
		t.Error(d)
	}
}

func TestTrailerFillBytes(t *testing.T) {
	for fill := 0; fill <= 7; fill++ {
		b := dvitest.New().StdPre(2).Bop(1).Eop().Post(dvitest.Num, dvitest.Den, dvitest.Mag)
		b.PostPost(2, fill)

		intp := NewInterpreter(b.Reader(), nil)
		err := intp.ExecuteAllPages()
		if fill < 4 {
			if !errors.Is(err, ErrMalformedTrailer) {
				t.Errorf("%d fill bytes: wrong error %v", fill, err)
			}
		} else if err != nil {
			t.Errorf("%d fill bytes: %v", fill, err)
		}
	}
}

func TestFormatIdentifiers(t *testing.T) {
	type testCase struct {
		pre, post byte
		format    Format
		ok        bool
	}
	cases := []testCase{
		{2, 2, FormatStandard, true},
		{3, 3, FormatVertical, true},
		{5, 5, FormatNative, true},
		{2, 5, FormatNative, true},
		{5, 2, FormatNative, true},
		{2, 3, FormatVertical, true},
		{2, 4, 0, false},
		{4, 2, 0, false},
		{7, 7, 0, false},
		{2, 0, 0, false},
	}
	for i, c := range cases {
		b := dvitest.New().StdPre(c.pre).Bop().Eop().Finish(c.post)
		intp := NewInterpreter(b.Reader(), nil)
		err := intp.ExecuteAllPages()
		if !c.ok {
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("%d: wrong error %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if intp.Format() != c.format {
			t.Errorf("%d: format %s != %s", i, intp.Format(), c.format)
		}
	}
}

func TestRaiseFormat(t *testing.T) {
	intp := NewInterpreter(dvitest.New().Reader(), nil)
	if err := intp.raiseFormat(5, 0); err != nil {
		t.Fatal(err)
	}
	if err := intp.raiseFormat(2, 0); err != nil {
		t.Fatal(err)
	}
	if intp.Format() != FormatNative {
		t.Errorf("format lowered to %s", intp.Format())
	}
	err := intp.raiseFormat(6, 17)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("wrong error %v", err)
	}
	if !strings.Contains(err.Error(), "(at byte 17)") {
		t.Errorf("position missing from %q", err.Error())
	}
}

func TestCursorAlignment(t *testing.T) {
	b := dvitest.New()
	var ends []int64
	mark := func() {
		ends = append(ends, b.Pos())
	}

	b.StdPre(5)
	mark()
	b.Bop(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	mark()
	b.FontDef(300, 0x12345678, 655360, 655360, "cmr10")
	mark()
	b.FontDef(1<<20, 0, 655360, 655360, "cmbx10")
	mark()
	b.Font(300)
	mark()
	b.Font(1 << 20)
	mark()
	b.Font(3)
	mark()
	b.SetChar(65)
	mark()
	b.SetChar(300)
	mark()
	b.SetChar(-5)
	mark()
	b.PutChar(70000)
	mark()
	b.SetRule(1, 2)
	mark()
	b.PutRule(3, 4)
	mark()
	b.Raw(OpNop)
	mark()
	b.Push()
	mark()
	for n := 1; n <= 4; n++ {
		for _, op := range []byte{OpRight1, OpW1, OpX1, OpDown1, OpY1, OpZ1} {
			b.Cmd(op, n, -int32(n))
			mark()
		}
	}
	for _, op := range []byte{OpW0, OpX0, OpY0, OpZ0} {
		b.Raw(op)
		mark()
	}
	b.Pop()
	mark()
	b.XXX("color push Black")
	mark()
	b.Raw(OpXXX1+3).Uint(4, 3).Raw('a', 'b', 'c')
	mark()
	b.XFontDef(7, 655360, "TeXGyreTermes-Regular", "TeX Gyre Termes", "Regular")
	mark()

	// x_fnt_def with all optional fields
	b.Raw(OpXFntDef).Int(4, 8).Int(4, 655360).Uint(2, 0x7A00)
	b.Raw(3, 1, 0).Raw('A', 'B', 'C', 'f')
	b.Uint(4, 0xFF0000FF).Int(4, 65536).Int(4, 1000).Int(4, 2000)
	b.Uint(2, 2).Int(4, 1).Int(4, 2)
	mark()

	b.Font(7)
	mark()
	b.XGlyphArray(1000, []int32{0, 500}, []int32{0, -10}, []uint16{36, 37})
	mark()
	b.XGlyphString(2000, []int32{0, 700, 1400}, []uint16{1, 2, 3})
	mark()
	b.Raw(OpXPic, 0)
	for i := range 6 {
		b.Int(4, int32(i))
	}
	b.Uint(2, 1).Uint(2, 7).Raw([]byte("fig.pdf")...)
	mark()
	b.Eop()
	mark()
	b.Finish(5)

	intp := NewInterpreter(b.Reader(), nil)
	for i, end := range ends {
		if _, err := intp.executeCommand(); err != nil {
			t.Fatalf("command %d: %v", i, err)
		}
		if pos := intp.r.Pos(); pos != end {
			t.Fatalf("command %d: cursor at %d, expected %d", i, pos, end)
		}
	}

	f := intp.Font(8)
	if f == nil || f.Native == nil {
		t.Fatal("native font 8 not defined")
	}
	expected := &NativeFont{
		Flags:      0x7A00,
		Family:     "f",
		RGBA:       0xFF0000FF,
		Extend:     65536,
		Slant:      1000,
		Embolden:   2000,
		Variations: []int32{1, 2},
	}
	if d := cmp.Diff(expected, f.Native); d != "" {
		t.Error(d)
	}
	if f.Name != "ABC" {
		t.Errorf("wrong font name %q", f.Name)
	}
	if d := cmp.Diff([]int32{7, 8, 300, 1 << 20}, intp.FontNumbers()); d != "" {
		t.Error(d)
	}
}

func TestXDV(t *testing.T) {
	b := dvitest.New().StdPre(5).Bop(1)
	b.XFontDef(7, 655360, "TeXGyreTermes-Regular", "", "")
	b.Font(7)
	b.Right(100)
	b.XGlyphArray(1000, []int32{0, 500}, []int32{0, -10}, []uint16{36, 37})
	b.XGlyphString(2000, []int32{0, 700}, []uint16{1, 2})
	b.Raw(OpXPic, 0)
	for range 6 {
		b.Int(4, 0)
	}
	b.Uint(2, 1).Uint(2, 7).Raw([]byte("fig.pdf")...)
	b.Eop().Finish(5)

	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	err := intp.ExecuteAllPages()
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		`pre "dvitest"`,
		"bop 1",
		"xfntdef 7 TeXGyreTermes-Regular <nil>",
		"fnt 7 TeXGyreTermes-Regular",
		"glyphs 100 0 [0 500] [0 -10] [36 37] TeXGyreTermes-Regular",
		"glyphs 1100 0 [0 700] [0 0] [1 2] TeXGyreTermes-Regular",
		"xpic 3100 0 fig.pdf",
		"eop",
		"post",
	}
	if d := cmp.Diff(expected, rec.events); d != "" {
		t.Error(d)
	}
}

func TestUndefinedFont(t *testing.T) {
	b := dvitest.New().StdPre(2).Bop(1).Font(7).SetChar(65).Eop().Finish(2)
	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	intp.Metrics = fixedMetrics{Width: 100}
	err := intp.ExecuteAllPages()
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		`pre "dvitest"`,
		"bop 1",
		"fnt 7 <nil>",
		"setchar 0 0 65 <nil>",
		"eop",
		"post",
	}
	if d := cmp.Diff(expected, rec.events); d != "" {
		t.Error(d)
	}
}

func TestFontRedefinition(t *testing.T) {
	b := dvitest.New().StdPre(2)
	b.FontDef(1, 0, 655360, 655360, "cmr10")
	b.Bop(1)
	b.FontDef(1, 0, 655360, 655360, "cmr10")
	b.FontDef(1, 0, 655360, 655360, "cmbx10")
	b.Eop().Finish(2)

	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	err := intp.ExecuteAllPages()
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		`pre "dvitest"`,
		"fntdef 1 cmr10 <nil>",
		"bop 1",
		"fntdef 1 cmbx10 cmr10",
		"eop",
		"post",
	}
	if d := cmp.Diff(expected, rec.events); d != "" {
		t.Error(d)
	}
	if fontName(intp.Font(1)) != "cmbx10" {
		t.Errorf("wrong font %s", fontName(intp.Font(1)))
	}
}

func TestCharAdvance(t *testing.T) {
	b := dvitest.New().StdPre(2).FontDef(0, 0, 655360, 655360, "cmr10")
	b.Bop(1).Font(0).SetChar(65).PutChar(66).SetChar(67).Eop().Finish(2)

	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	intp.Metrics = fixedMetrics{Width: 100, Height: 50}
	err := intp.ExecuteAllPages()
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		`pre "dvitest"`,
		"fntdef 0 cmr10 <nil>",
		"bop 1",
		"fnt 0 cmr10",
		"setchar 0 0 65 cmr10",
		"putchar 100 0 66 cmr10",
		"setchar 100 0 67 cmr10",
		"eop",
		"post",
	}
	if d := cmp.Diff(expected, rec.events); d != "" {
		t.Error(d)
	}
	if intp.State().H != 200 {
		t.Errorf("h = %d", intp.State().H)
	}
}

func TestVertical(t *testing.T) {
	b := dvitest.New().StdPre(3).Bop(1)
	b.Dir(1).Right(100).Down(50).SetRule(10, 20)
	b.Eop().Finish(3)

	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	err := intp.ExecuteAllPages()
	if err != nil {
		t.Fatal(err)
	}
	expected := State{H: -50, V: 120, Dir: Vertical}
	if d := cmp.Diff(expected, intp.State()); d != "" {
		t.Error(d)
	}
	if rec.events[2] != "dir 1" {
		t.Errorf("wrong event %q", rec.events[2])
	}
}

func TestPopDirection(t *testing.T) {
	b := dvitest.New().StdPre(3).Bop(1)
	b.Push().Dir(1).Pop().Push().Pop()
	b.Eop().Finish(3)

	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	err := intp.ExecuteAllPages()
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"dir 1", "dir 0", "eop"}
	if d := cmp.Diff(expected, rec.events[2:5]); d != "" {
		t.Error(d)
	}
}

func TestSpecial(t *testing.T) {
	b := dvitest.New().StdPre(2).Bop(1).Right(5).XXX("ps: 0 0 moveto").Eop().Finish(2)
	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	if err := intp.ExecuteAllPages(); err != nil {
		t.Fatal(err)
	}
	if rec.events[2] != `xxx 5 0 "ps: 0 0 moveto"` {
		t.Errorf("wrong event %q", rec.events[2])
	}
}

func TestProtocolErrors(t *testing.T) {
	cases := []*dvitest.Builder{
		dvitest.New().Raw(OpNop).StdPre(2).Finish(2),
		dvitest.New().StdPre(2).SetChar(65).Finish(2),
		dvitest.New().StdPre(2).SetRule(1, 1).Finish(2),
		dvitest.New().StdPre(2).XXX("x").Finish(2),
		dvitest.New().StdPre(2).Eop().Finish(2),
		dvitest.New().StdPre(2).Bop().Bop().Finish(2),
		dvitest.New().StdPre(2).Bop().Push().Eop().Finish(2),
		dvitest.New().StdPre(2).StdPre(2).Finish(2),
	}
	for i, b := range cases {
		intp := NewInterpreter(b.Reader(), nil)
		err := intp.ExecuteAllPages()
		if !errors.Is(err, ErrProtocol) {
			t.Errorf("%d: wrong error %v", i, err)
		}
	}
}

func TestTruncatedFile(t *testing.T) {
	b := dvitest.New().StdPre(2).Bop(1)
	intp := NewInterpreter(b.Reader(), nil)
	intp.format = FormatStandard
	err := intp.ExecuteAllPages()
	if !errors.Is(err, ErrInvalidFile) {
		t.Errorf("wrong error %v", err)
	}
}

func TestExecutePage(t *testing.T) {
	b := dvitest.New().StdPre(2)
	for i := int32(1); i <= 3; i++ {
		b.Bop(i).Right(i).Eop()
	}
	b.Post(dvitest.Num, dvitest.Den, dvitest.Mag)
	b.FontDef(4, 0, 655360, 655360, "cmtt10")
	b.PostPost(2, 6)

	rec := &recorder{}
	intp := NewInterpreter(b.Reader(), rec)
	err := intp.ExecutePostamble()
	if err != nil {
		t.Fatal(err)
	}
	if intp.TotalPages() != 3 {
		t.Errorf("%d pages", intp.TotalPages())
	}
	if d := cmp.Diff([]string{"post", "fntdef 4 cmtt10 <nil>"}, rec.events); d != "" {
		t.Error(d)
	}

	for _, n := range []int{2, 1, 3} {
		rec.events = nil
		err := intp.ExecutePage(n)
		if err != nil {
			t.Fatal(err)
		}
		expected := []string{fmt.Sprintf("bop %d", n), "eop"}
		if d := cmp.Diff(expected, rec.events); d != "" {
			t.Error(d)
		}
		if intp.State().H != int32(n) {
			t.Errorf("page %d: h = %d", n, intp.State().H)
		}
	}

	err = intp.ExecutePage(4)
	if !errors.Is(err, ErrInvalidFile) {
		t.Errorf("wrong error for page 4: %v", err)
	}
	err = intp.ExecutePage(0)
	if !errors.Is(err, ErrInvalidFile) {
		t.Errorf("wrong error for page 0: %v", err)
	}
}
