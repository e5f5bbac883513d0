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

// Package dvi implements an interpreter for DVI files, as written by TeX,
// including the pTeX and XeTeX (XDV) extensions.
//
// The interpreter walks the command stream, keeps track of the DVI
// registers and reports everything visible to an [Actions] value.
package dvi

import (
	"io"
)

// State holds the position registers of the DVI machine.
// These are saved by push and restored by pop.
type State struct {
	H, V       int32
	W, X, Y, Z int32
	Dir        Direction
}

type phase uint8

const (
	phaseStart     phase = iota // before the preamble
	phaseIdle                   // between pages
	phasePage                   // between bop and eop
	phasePostamble              // after post
	phaseDone                   // after post_post
)

// Interpreter executes the commands of a DVI file.
// An Interpreter must not be used concurrently.
type Interpreter struct {
	// Actions receives the visible effects of the DVI commands.
	Actions Actions

	// Metrics, if set, is used to find the widths of characters.  Without
	// metrics, characters do not advance the position.
	Metrics Metrics

	r        *Reader
	format   Format
	preamble *Preamble
	post     *postamble

	state        State
	stack        []State
	fonts        map[int32]*Font
	curFont      int32
	fontSelected bool

	phase  phase
	cmdPos int64 // offset of the command being executed
}

// NewInterpreter returns an interpreter which reads the DVI file r.
// If actions is nil, all effects are discarded.
func NewInterpreter(r io.ReadSeeker, actions Actions) *Interpreter {
	if actions == nil {
		actions = NopActions{}
	}
	return &Interpreter{
		Actions: actions,
		r:       NewReader(r),
		fonts:   make(map[int32]*Font),
	}
}

// Format returns the DVI dialect negotiated so far.
func (intp *Interpreter) Format() Format {
	return intp.format
}

// Preamble returns the decoded preamble, or nil if the preamble has not
// been read yet.
func (intp *Interpreter) Preamble() *Preamble {
	return intp.preamble
}

// State returns the current register values.
func (intp *Interpreter) State() State {
	return intp.state
}

// Depth returns the number of states on the push/pop stack.
func (intp *Interpreter) Depth() int {
	return len(intp.stack)
}

// ExecuteAllPages executes all commands from the preamble up to and
// including the post command.
//
// If the format is not known yet, it is first determined from the end of
// the file.
func (intp *Interpreter) ExecuteAllPages() error {
	if intp.format == FormatUnset {
		_, err := intp.readTrailerFormat()
		if err != nil {
			return err
		}
	}
	if _, err := intp.r.Seek(0, io.SeekStart); err != nil {
		return newError(InvalidFile, 0, "%s", err)
	}

	intp.phase = phaseStart
	intp.stack = intp.stack[:0]
	clear(intp.fonts)
	for {
		cmd, err := intp.executeCommand()
		if err != nil {
			return err
		}
		if cmd == cmdPost {
			return nil
		}
	}
}

// executeCommand reads and executes a single command.
func (intp *Interpreter) executeCommand() (command, error) {
	r := intp.r
	pos := r.Pos()
	intp.cmdPos = pos

	op, err := r.ReadByte()
	if err != nil {
		if rErr := r.Err(); rErr != nil {
			return cmdUndefined, newError(InvalidFile, pos, "invalid DVI file: %s", rErr)
		}
		return cmdUndefined, newError(InvalidFile, pos, "invalid DVI file")
	}

	cmd, param, ok := evalCommand(op, intp.format)
	if !ok {
		return cmd, newError(UndefinedOpcode, pos, "undefined DVI command (opcode %d)", op)
	}
	if intp.phase == phaseStart && cmd != cmdPre {
		return cmd, newError(Protocol, pos, "first byte isn't start of preamble")
	}

	Logger().Debug("execute", "pos", pos, "cmd", cmd, "param", param)

	err = intp.execute(cmd, param)
	return cmd, err
}

func (intp *Interpreter) execute(cmd command, param int) error {
	r := intp.r
	s := &intp.state

	switch cmd {
	case cmdSetChar0:
		return intp.putChar(int32(param), true)
	case cmdSetChar:
		return intp.putChar(readParam(r, param), true)
	case cmdPutChar:
		return intp.putChar(readParam(r, param), false)
	case cmdSetRule:
		return intp.putRule(true)
	case cmdPutRule:
		return intp.putRule(false)

	case cmdNop:
		// pass

	case cmdBop:
		return intp.cmdBop()
	case cmdEop:
		return intp.cmdEop()

	case cmdPush:
		intp.stack = append(intp.stack, *s)
	case cmdPop:
		n := len(intp.stack)
		if n == 0 {
			return newError(StackUnderflow, intp.cmdPos, "stack empty at pop command")
		}
		dir := s.Dir
		*s = intp.stack[n-1]
		intp.stack = intp.stack[:n-1]
		if s.Dir != dir {
			intp.Actions.Direction(s.Dir)
		}

	case cmdRight:
		intp.moveRight(r.ReadSigned(param))
	case cmdW0:
		intp.moveRight(s.W)
	case cmdW:
		s.W = r.ReadSigned(param)
		intp.moveRight(s.W)
	case cmdX0:
		intp.moveRight(s.X)
	case cmdX:
		s.X = r.ReadSigned(param)
		intp.moveRight(s.X)
	case cmdDown:
		intp.moveDown(r.ReadSigned(param))
	case cmdY0:
		intp.moveDown(s.Y)
	case cmdY:
		s.Y = r.ReadSigned(param)
		intp.moveDown(s.Y)
	case cmdZ0:
		intp.moveDown(s.Z)
	case cmdZ:
		s.Z = r.ReadSigned(param)
		intp.moveDown(s.Z)

	case cmdFontNum0:
		intp.selectFont(int32(param))
	case cmdFontNum:
		intp.selectFont(readParam(r, param))
	case cmdFontDef:
		intp.cmdFontDef(param)

	case cmdXXX:
		return intp.cmdXXX(param)

	case cmdPre:
		return intp.cmdPre()
	case cmdPost:
		return intp.cmdPost()
	case cmdPostPost:
		return intp.cmdPostPost()

	case cmdDir:
		s.Dir = Direction(r.ReadUnsigned(1))
		intp.Actions.Direction(s.Dir)

	case cmdXPic:
		return intp.cmdXPic()
	case cmdXFontDef:
		intp.cmdXFontDef()
	case cmdXGlyphArray:
		return intp.cmdXGlyphs(true)
	case cmdXGlyphString:
		return intp.cmdXGlyphs(false)
	}
	return nil
}

// readParam reads the first operand of set, put and fnt commands.
// Only the four-byte variants are signed.
func readParam(r *Reader, length int) int32 {
	if length == 4 {
		return r.ReadSigned(4)
	}
	return int32(r.ReadUnsigned(length))
}

// moveRight moves along the current line.
func (intp *Interpreter) moveRight(d int32) {
	if intp.state.Dir == Horizontal {
		intp.state.H += d
	} else {
		intp.state.V += d
	}
}

// moveDown moves across lines.  In vertical writing mode, lines progress
// from right to left.
func (intp *Interpreter) moveDown(d int32) {
	if intp.state.Dir == Horizontal {
		intp.state.V += d
	} else {
		intp.state.H -= d
	}
}

func (intp *Interpreter) requirePage(what string) error {
	if intp.phase != phasePage {
		return newError(Protocol, intp.cmdPos, "%s outside of page", what)
	}
	return nil
}

func (intp *Interpreter) putChar(c int32, move bool) error {
	if err := intp.requirePage("set_char or put_char"); err != nil {
		return err
	}
	f := intp.CurrentFont()
	h, v := intp.state.H, intp.state.V
	if !move {
		intp.Actions.PutChar(h, v, c, f)
		return nil
	}
	intp.Actions.SetChar(h, v, c, f)
	intp.moveRight(intp.charWidth(f, c))
	return nil
}

func (intp *Interpreter) charWidth(f *Font, c int32) int32 {
	if f == nil || intp.Metrics == nil {
		return 0
	}
	m, ok := intp.Metrics.CharMetrics(f, c)
	if !ok {
		Logger().Warn("no metrics for character",
			"font", f.Name, "char", c, "pos", intp.cmdPos)
		return 0
	}
	return m.Width
}

// putRule executes set_rule and put_rule.
// Format: a[4] b[4]
func (intp *Interpreter) putRule(move bool) error {
	if err := intp.requirePage("set_rule or put_rule"); err != nil {
		return err
	}
	height := intp.r.ReadSigned(4)
	width := intp.r.ReadSigned(4)
	h, v := intp.state.H, intp.state.V
	if !move {
		intp.Actions.PutRule(h, v, height, width)
		return nil
	}
	intp.Actions.SetRule(h, v, height, width)
	intp.moveRight(width)
	return nil
}

// cmdBop executes a begin-of-page command.
// Format: c0[4] ... c9[4] p[4]
func (intp *Interpreter) cmdBop() error {
	switch intp.phase {
	case phasePage:
		return newError(Protocol, intp.cmdPos, "bop occurred before eop")
	case phasePostamble, phaseDone:
		return newError(Protocol, intp.cmdPos, "bop occurred in postamble")
	}

	var counts [10]int32
	for i := range counts {
		counts[i] = intp.r.ReadSigned(4)
	}
	prev := intp.r.ReadSigned(4)

	intp.state = State{}
	intp.stack = intp.stack[:0]
	intp.fontSelected = false
	intp.phase = phasePage
	intp.Actions.BeginPage(counts, prev)
	return nil
}

func (intp *Interpreter) cmdEop() error {
	if intp.phase != phasePage {
		return newError(Protocol, intp.cmdPos, "eop outside of page")
	}
	if len(intp.stack) != 0 {
		return newError(Protocol, intp.cmdPos,
			"stack not empty at end of page (level %d)", len(intp.stack))
	}
	intp.phase = phaseIdle
	intp.Actions.EndPage()
	return nil
}

// cmdXXX executes xxx1 to xxx4.
// Format: k[len] x[k]
func (intp *Interpreter) cmdXXX(length int) error {
	if err := intp.requirePage("special"); err != nil {
		return err
	}
	n := intp.r.ReadUnsigned(length)
	data := intp.r.ReadBytes(int(n))
	intp.Actions.Special(intp.state.H, intp.state.V, data)
	return nil
}

// cmdPre executes the preamble command.
// Format: i[1] num[4] den[4] mag[4] k[1] x[k]
func (intp *Interpreter) cmdPre() error {
	if intp.phase != phaseStart {
		return newError(Protocol, intp.cmdPos, "preamble command within file")
	}
	r := intp.r
	id := uint8(r.ReadUnsigned(1))
	if err := intp.raiseFormat(id, intp.cmdPos+1); err != nil {
		return err
	}
	p := &Preamble{
		Format: intp.format,
		Num:    r.ReadUnsigned(4),
		Den:    r.ReadUnsigned(4),
		Mag:    r.ReadUnsigned(4),
	}
	k := int(r.ReadUnsigned(1))
	p.Comment = string(r.ReadBytes(k))

	intp.preamble = p
	intp.phase = phaseIdle
	intp.Actions.Preamble(p)
	return nil
}
