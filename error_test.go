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
	"testing"
)

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{newError(StackUnderflow, 42, "stack empty at pop command"),
			"dvi: stack empty at pop command (at byte 42)"},
		{ErrMalformedTrailer, "dvi: malformed trailer"},
		{&Error{Kind: ErrorKind(99), Pos: -1}, "dvi: dvi.ErrorKind(99)"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("%q != %q", got, c.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("page 3: %w", newError(Protocol, 7, "eop outside of page"))
	if !errors.Is(err, ErrProtocol) {
		t.Error("wrapped error does not match its kind")
	}
	if errors.Is(err, ErrInvalidFile) {
		t.Error("error matches the wrong kind")
	}

	var dviErr *Error
	if !errors.As(err, &dviErr) || dviErr.Pos != 7 {
		t.Errorf("errors.As failed: %v", dviErr)
	}
}
