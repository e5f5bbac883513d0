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

// Package bbox computes the bounding boxes of the pages of a DVI file.
//
// Boxes are given in DVI coordinates: h grows to the right and v grows
// downwards, so that LLy is the top edge of a box and URy is the bottom
// edge.
package bbox

import (
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/dvi"
)

// Sink collects the area covered by characters and rules on each page.
// Use a Sink as the Actions of a [dvi.Interpreter].
type Sink struct {
	dvi.NopActions

	// Metrics is used to find the extent of characters.  Characters
	// without metrics do not contribute to the box.
	Metrics dvi.Metrics

	box   rect.Rect
	seen  bool
	dir   dvi.Direction
	pages []rect.Rect
}

var _ dvi.Actions = (*Sink)(nil)

// NewSink returns a new Sink which uses the given metrics.
func NewSink(metrics dvi.Metrics) *Sink {
	return &Sink{Metrics: metrics}
}

// Box returns the bounding box of the current page, or of the last
// completed page between pages.  The result is the zero rectangle if
// nothing visible has been seen.
func (s *Sink) Box() rect.Rect {
	if !s.seen {
		return rect.Rect{}
	}
	return s.box
}

// Pages returns the bounding boxes of all completed pages.
func (s *Sink) Pages() []rect.Rect {
	return s.pages
}

// BeginPage implements the [dvi.Actions] interface.
func (s *Sink) BeginPage([10]int32, int32) {
	s.box = rect.Rect{}
	s.seen = false
	s.dir = dvi.Horizontal
}

// EndPage implements the [dvi.Actions] interface.
func (s *Sink) EndPage() {
	s.pages = append(s.pages, s.Box())
}

// Direction implements the [dvi.Actions] interface.
func (s *Sink) Direction(d dvi.Direction) {
	s.dir = d
}

// SetChar implements the [dvi.Actions] interface.
func (s *Sink) SetChar(h, v, c int32, f *dvi.Font) {
	s.addChar(h, v, c, f)
}

// PutChar implements the [dvi.Actions] interface.
func (s *Sink) PutChar(h, v, c int32, f *dvi.Font) {
	s.addChar(h, v, c, f)
}

// SetRule implements the [dvi.Actions] interface.
func (s *Sink) SetRule(h, v, height, width int32) {
	s.addRule(h, v, height, width)
}

// PutRule implements the [dvi.Actions] interface.
func (s *Sink) PutRule(h, v, height, width int32) {
	s.addRule(h, v, height, width)
}

// Glyphs implements the [dvi.Actions] interface.
func (s *Sink) Glyphs(run *dvi.GlyphRun) {
	for i, g := range run.Glyphs {
		s.addChar(run.H+run.DX[i], run.V+run.DY[i], int32(g), run.Font)
	}
}

func (s *Sink) addChar(h, v, c int32, f *dvi.Font) {
	if f == nil || s.Metrics == nil {
		return
	}
	m, ok := s.Metrics.CharMetrics(f, c)
	if !ok {
		return
	}

	var r rect.Rect
	if s.dir == dvi.Horizontal {
		r = box(h, v-m.Height, h+m.Width, v+m.Depth)
	} else {
		// glyphs are rotated clockwise; the top of the glyph faces right
		r = box(h-m.Depth, v, h+m.Height, v+m.Width)
	}
	s.extend(r)
}

func (s *Sink) addRule(h, v, height, width int32) {
	if height <= 0 || width <= 0 {
		return
	}
	if s.dir == dvi.Horizontal {
		s.extend(box(h, v-height, h+width, v))
	} else {
		s.extend(box(h, v, h+height, v+width))
	}
}

func (s *Sink) extend(r rect.Rect) {
	if !s.seen {
		s.box = r
		s.seen = true
		return
	}
	s.box.Extend(r)
}

func box(llx, lly, urx, ury int32) rect.Rect {
	return rect.Rect{
		LLx: float64(llx),
		LLy: float64(lly),
		URx: float64(urx),
		URy: float64(ury),
	}
}

// Scale converts a box from DVI units to another unit, for example to TeX
// points using [dvi.Preamble.PointsPerUnit].
func Scale(r rect.Rect, unit float64) rect.Rect {
	return rect.Rect{
		LLx: r.LLx * unit,
		LLy: r.LLy * unit,
		URx: r.URx * unit,
		URy: r.URy * unit,
	}
}
