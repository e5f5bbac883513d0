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

// DVI opcodes.  Commands which come in several variants with different
// operand lengths are listed by their first variant, e.g. Set1 to Set4 are
// OpSet1 to OpSet1+3.
const (
	OpSetChar0  byte = 0   // typeset character 0 and move right
	OpSet1      byte = 128 // typeset a character and move right
	OpSetRule   byte = 132 // typeset a rule and move right
	OpPut1      byte = 133 // typeset a character
	OpPutRule   byte = 137 // typeset a rule
	OpNop       byte = 138 // no operation
	OpBop       byte = 139 // beginning of page
	OpEop       byte = 140 // ending of page
	OpPush      byte = 141 // save the current positions
	OpPop       byte = 142 // restore previous positions
	OpRight1    byte = 143 // move right
	OpW0        byte = 147 // move right by w
	OpW1        byte = 148 // move right and set w
	OpX0        byte = 152 // move right by x
	OpX1        byte = 153 // move right and set x
	OpDown1     byte = 157 // move down
	OpY0        byte = 161 // move down by y
	OpY1        byte = 162 // move down and set y
	OpZ0        byte = 166 // move down by z
	OpZ1        byte = 167 // move down and set z
	OpFntNum0   byte = 171 // set current font to 0
	OpFnt1      byte = 235 // set current font
	OpXXX1      byte = 239 // extension to DVI primitives
	OpFntDef1   byte = 243 // define the meaning of a font number
	OpPre       byte = 247 // preamble
	OpPost      byte = 248 // postamble beginning
	OpPostPost  byte = 249 // postamble ending
	OpXPic      byte = 251 // XDV: include a picture
	OpXFntDef   byte = 252 // XDV: define a native font
	OpXGlyphArr byte = 253 // XDV: glyphs with x and y positions
	OpXGlyphStr byte = 254 // XDV: glyphs with x positions
	OpDir       byte = 255 // pTeX: set the writing direction
)

// command identifies the operation performed for an opcode.
type command uint8

const (
	cmdUndefined command = iota
	cmdSetChar0
	cmdSetChar
	cmdSetRule
	cmdPutChar
	cmdPutRule
	cmdNop
	cmdBop
	cmdEop
	cmdPush
	cmdPop
	cmdRight
	cmdW0
	cmdW
	cmdX0
	cmdX
	cmdDown
	cmdY0
	cmdY
	cmdZ0
	cmdZ
	cmdFontNum0
	cmdFontNum
	cmdXXX
	cmdFontDef
	cmdPre
	cmdPost
	cmdPostPost
	cmdDir
	cmdXPic
	cmdXFontDef
	cmdXGlyphArray
	cmdXGlyphString
)

var commandNames = [...]string{
	cmdUndefined:    "undefined",
	cmdSetChar0:     "setchar",
	cmdSetChar:      "set",
	cmdSetRule:      "setrule",
	cmdPutChar:      "put",
	cmdPutRule:      "putrule",
	cmdNop:          "nop",
	cmdBop:          "bop",
	cmdEop:          "eop",
	cmdPush:         "push",
	cmdPop:          "pop",
	cmdRight:        "right",
	cmdW0:           "w0",
	cmdW:            "w",
	cmdX0:           "x0",
	cmdX:            "x",
	cmdDown:         "down",
	cmdY0:           "y0",
	cmdY:            "y",
	cmdZ0:           "z0",
	cmdZ:            "z",
	cmdFontNum0:     "fntnum",
	cmdFontNum:      "fnt",
	cmdXXX:          "xxx",
	cmdFontDef:      "fntdef",
	cmdPre:          "pre",
	cmdPost:         "post",
	cmdPostPost:     "postpost",
	cmdDir:          "dir",
	cmdXPic:         "xpic",
	cmdXFontDef:     "xfntdef",
	cmdXGlyphArray:  "xglypharray",
	cmdXGlyphString: "xglyphstr",
}

func (c command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// opcodeInfo describes a table-driven opcode.
// The operand length is the number of bytes of the first operand, or 0 if
// the command reads a variable number of bytes.
type opcodeInfo struct {
	cmd    command
	length int8
}

// opcodes describes the opcodes 128-170 and 235-249.
// All other entries are cmdUndefined.
var opcodes = makeOpcodeTable()

func makeOpcodeTable() [256]opcodeInfo {
	var t [256]opcodeInfo
	variants := func(first byte, cmd command) {
		for i := range 4 {
			t[first+byte(i)] = opcodeInfo{cmd, int8(i + 1)}
		}
	}
	variants(OpSet1, cmdSetChar)
	t[OpSetRule] = opcodeInfo{cmdSetRule, 8}
	variants(OpPut1, cmdPutChar)
	t[OpPutRule] = opcodeInfo{cmdPutRule, 8}
	t[OpNop] = opcodeInfo{cmdNop, 0}
	t[OpBop] = opcodeInfo{cmdBop, 44}
	t[OpEop] = opcodeInfo{cmdEop, 0}
	t[OpPush] = opcodeInfo{cmdPush, 0}
	t[OpPop] = opcodeInfo{cmdPop, 0}
	variants(OpRight1, cmdRight)
	t[OpW0] = opcodeInfo{cmdW0, 0}
	variants(OpW1, cmdW)
	t[OpX0] = opcodeInfo{cmdX0, 0}
	variants(OpX1, cmdX)
	variants(OpDown1, cmdDown)
	t[OpY0] = opcodeInfo{cmdY0, 0}
	variants(OpY1, cmdY)
	t[OpZ0] = opcodeInfo{cmdZ0, 0}
	variants(OpZ1, cmdZ)
	variants(OpFnt1, cmdFontNum)
	variants(OpXXX1, cmdXXX)
	variants(OpFntDef1, cmdFontDef)
	t[OpPre] = opcodeInfo{cmdPre, 0}
	t[OpPost] = opcodeInfo{cmdPost, 0}
	t[OpPostPost] = opcodeInfo{cmdPostPost, 0}
	return t
}

var xdvCommands = [4]command{cmdXPic, cmdXFontDef, cmdXGlyphArray, cmdXGlyphString}

// evalCommand classifies an opcode under the given format.
//
// For the set_char_i and fnt_num_i ranges, param is the value encoded in
// the opcode itself and no operand bytes follow.  Otherwise param is the
// length of the first operand.
func evalCommand(op byte, format Format) (cmd command, param int, ok bool) {
	switch {
	case op <= 127:
		return cmdSetChar0, int(op - OpSetChar0), true
	case op >= OpFntNum0 && op < OpFnt1:
		return cmdFontNum0, int(op - OpFntNum0), true
	case op >= OpXPic && op <= OpXGlyphStr && format >= FormatNative:
		return xdvCommands[op-OpXPic], 0, true
	case op == OpDir && format == FormatVertical:
		return cmdDir, 1, true
	}
	info := opcodes[op]
	if info.cmd == cmdUndefined {
		return cmdUndefined, 0, false
	}
	return info.cmd, int(info.length), true
}
