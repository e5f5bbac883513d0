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

// Package afm reads character metrics from Adobe Font Metrics (AFM) files
// and makes them available to the DVI interpreter.
package afm

import (
	"golang.org/x/exp/slices"

	"seehuhn.de/go/geom/rect"
)

// Metrics contains the information from an AFM file.
// All dimensions are in glyph space units, which are 1/1000 of the font
// size.
type Metrics struct {
	Glyphs   map[string]*GlyphInfo
	Encoding []string

	// PostScript language name (FontName or CIDFontName) of the font.
	FontName string

	// FullName is a unique, human-readable name for an individual font.
	FullName string

	FontBBox rect.Rect

	Ascent  float64
	Descent float64 // negative
}

// GlyphInfo holds the metrics of a single glyph.
type GlyphInfo struct {
	WidthX float64
	BBox   rect.Rect
}

// GlyphList returns a list of all glyph names in the font.
// The list starts with the glyphs in the Encoding vector, in the order of
// their codes, followed by the remaining glyphs in alphabetical order.
func (m *Metrics) GlyphList() []string {
	var res []string
	seen := make(map[string]bool, len(m.Glyphs))
	for _, name := range m.Encoding {
		if _, ok := m.Glyphs[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		res = append(res, name)
	}

	var rest []string
	for name := range m.Glyphs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(res, rest...)
}

// Glyph returns the metrics for character code c, or nil if c is not
// encoded.
func (m *Metrics) Glyph(c int) *GlyphInfo {
	if c < 0 || c >= len(m.Encoding) {
		return nil
	}
	return m.Glyphs[m.Encoding[c]]
}
