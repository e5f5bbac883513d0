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

package afm

import (
	"io/fs"
	"math"

	"seehuhn.de/go/dvi"
)

// Provider looks up character metrics for fonts defined in a DVI file.
// The metrics for a font named "cmr10" are read from the file "cmr10.afm".
//
// Native fonts of XDV files are not supported.
type Provider struct {
	fsys  fs.FS
	fonts map[string]*Metrics
}

var _ dvi.Metrics = (*Provider)(nil)

// NewProvider returns a Provider which reads AFM files from fsys.
func NewProvider(fsys fs.FS) *Provider {
	return &Provider{
		fsys:  fsys,
		fonts: make(map[string]*Metrics),
	}
}

// Add makes m available under the given font name.
func (p *Provider) Add(name string, m *Metrics) {
	p.fonts[name] = m
}

// CharMetrics implements the [dvi.Metrics] interface.
// The AFM dimensions are scaled to the at-size of the font.
func (p *Provider) CharMetrics(f *dvi.Font, code int32) (dvi.CharMetrics, bool) {
	if f.Native != nil {
		return dvi.CharMetrics{}, false
	}
	m := p.load(f.Name)
	if m == nil {
		return dvi.CharMetrics{}, false
	}
	g := m.Glyph(int(code))
	if g == nil {
		return dvi.CharMetrics{}, false
	}

	scale := func(x float64) int32 {
		return int32(math.Round(x * float64(f.Scale) / 1000))
	}
	return dvi.CharMetrics{
		Width:  scale(g.WidthX),
		Height: scale(max(g.BBox.URy, 0)),
		Depth:  scale(max(-g.BBox.LLy, 0)),
	}, true
}

// load returns the metrics for the named font, or nil if no AFM file is
// available.  Failures are remembered.
func (p *Provider) load(name string) *Metrics {
	if m, seen := p.fonts[name]; seen {
		return m
	}

	var m *Metrics
	if p.fsys != nil {
		fd, err := p.fsys.Open(name + ".afm")
		if err == nil {
			m, err = Read(fd)
			fd.Close()
		}
		if err != nil {
			dvi.Logger().Warn("cannot load font metrics", "font", name, "error", err)
			m = nil
		}
	}
	p.fonts[name] = m
	return m
}
