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
	"fmt"
	"strconv"
)

// ErrorKind classifies the fatal conditions of an interpretation pass.
type ErrorKind int

// These are the possible values for [ErrorKind].
const (
	// InvalidFile indicates that the stream ended where an opcode was
	// expected, or that the stream could not be read at all.
	InvalidFile ErrorKind = iota + 1

	// MalformedTrailer indicates missing fill bytes or an unreadable
	// identification byte at the end of the file.
	MalformedTrailer

	// UnsupportedFormat indicates an identification byte which does not
	// correspond to a known DVI dialect.
	UnsupportedFormat

	// UndefinedOpcode indicates an opcode which is not defined in the
	// negotiated format.
	UndefinedOpcode

	// StackUnderflow indicates a pop command with an empty stack.
	StackUnderflow

	// Protocol indicates a command which is not allowed in the current
	// state, for example set_char outside a page.
	Protocol
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidFile:
		return "invalid file"
	case MalformedTrailer:
		return "malformed trailer"
	case UnsupportedFormat:
		return "unsupported format"
	case UndefinedOpcode:
		return "undefined opcode"
	case StackUnderflow:
		return "stack underflow"
	case Protocol:
		return "protocol violation"
	default:
		return "dvi.ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is the error type returned by the interpreter for all fatal
// conditions.  Use [errors.Is] with one of the ErrXXX values to test for a
// specific kind.
type Error struct {
	Kind ErrorKind
	Msg  string

	// Pos is the byte offset of the offending command, or -1 if the
	// position is not known.
	Pos int64
}

func (err *Error) Error() string {
	msg := err.Msg
	if msg == "" {
		msg = err.Kind.String()
	}
	tail := ""
	if err.Pos >= 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "dvi: " + msg + tail
}

// Is reports whether target is an *Error of the same kind.
func (err *Error) Is(target error) bool {
	e, ok := target.(*Error)
	return ok && e.Kind == err.Kind
}

// Sentinel values for use with [errors.Is].
var (
	ErrInvalidFile      = &Error{Kind: InvalidFile, Pos: -1}
	ErrMalformedTrailer = &Error{Kind: MalformedTrailer, Pos: -1}
	ErrUnsupported      = &Error{Kind: UnsupportedFormat, Pos: -1}
	ErrUndefinedOpcode  = &Error{Kind: UndefinedOpcode, Pos: -1}
	ErrStackUnderflow   = &Error{Kind: StackUnderflow, Pos: -1}
	ErrProtocol         = &Error{Kind: Protocol, Pos: -1}
)

func newError(kind ErrorKind, pos int64, format string, a ...any) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, a...),
		Pos:  pos,
	}
}
