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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/rect"
)

// Read reads an AFM file.
// Only the global font information and the character metrics are used;
// kerning and composite data is ignored.
func Read(fd io.Reader) (*Metrics, error) {
	res := &Metrics{
		Glyphs: make(map[string]*GlyphInfo),
	}

	res.Encoding = make([]string, 256)
	for i := range res.Encoding {
		res.Encoding[i] = ".notdef"
	}

	charMetrics := false
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "EndCharMetrics") {
			charMetrics = false
			continue
		}
		if charMetrics {
			name, code, info, err := parseCharMetrics(line)
			if err != nil {
				return nil, err
			}
			_, seen := res.Glyphs[name]
			if name == "" || seen {
				continue
			}
			if code >= 0 && code < 256 {
				res.Encoding[code] = name
			}
			res.Glyphs[name] = info
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "FontName":
			res.FontName = fields[1]
		case "FullName":
			res.FullName = strings.Join(fields[1:], " ")
		case "FontBBox":
			bbox, err := parseBox(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("invalid FontBBox: %v", err)
			}
			res.FontBBox = bbox
		case "Ascender":
			res.Ascent = parseNumber(fields[1])
		case "Descender":
			res.Descent = parseNumber(fields[1])
		case "StartCharMetrics":
			charMetrics = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

// parseCharMetrics parses one line of the CharMetrics section, for example
// "C 102 ; WX 333 ; N f ; B 20 0 383 683 ; L i fi ;".
func parseCharMetrics(line string) (string, int, *GlyphInfo, error) {
	var name string
	code := -1
	info := &GlyphInfo{}

	for _, keyVal := range strings.Split(line, ";") {
		ff := strings.Fields(keyVal)
		if len(ff) < 2 {
			continue
		}
		switch ff[0] {
		case "C":
			var err error
			code, err = strconv.Atoi(ff[1])
			if err != nil {
				return "", 0, nil, fmt.Errorf("invalid character code %q: %v", ff[1], err)
			}
		case "WX":
			w, err := strconv.ParseFloat(ff[1], 64)
			if err != nil {
				return "", 0, nil, fmt.Errorf("invalid character width %q: %v", ff[1], err)
			}
			info.WidthX = w
		case "N":
			name = ff[1]
		case "B":
			if len(ff) != 5 {
				continue
			}
			bbox, err := parseBox(ff[1:])
			if err != nil {
				return "", 0, nil, fmt.Errorf("invalid bounding box for %q: %v", name, err)
			}
			info.BBox = bbox
		}
	}
	return name, code, info, nil
}

func parseBox(ff []string) (rect.Rect, error) {
	var box rect.Rect
	if len(ff) != 4 {
		return box, fmt.Errorf("expected 4 numbers, got %d", len(ff))
	}
	coords := []*float64{&box.LLx, &box.LLy, &box.URx, &box.URy}
	for i, s := range ff {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return box, err
		}
		*coords[i] = x
	}
	return box, nil
}

// parseNumber returns the value of s, or 0 if s is not a number of a
// sensible size.
func parseNumber(s string) float64 {
	x, _ := strconv.ParseFloat(s, 64)
	if x >= math.MinInt32 && x <= math.MaxInt32 {
		// Note that the above test also excludes NaN values and infinities.
		return x
	}
	return 0
}
