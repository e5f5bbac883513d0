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

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/dvi"
	"seehuhn.de/go/dvi/afm"
	"seehuhn.de/go/dvi/bbox"
)

var (
	afmDir  = flag.String("afm", "", "read font metrics from AFM files in `dir`")
	pageArg = flag.Int("page", 0, "only process page `n`")
	points  = flag.Bool("pt", false, "print boxes in TeX points instead of DVI units")
	verbose = flag.Bool("v", false, "log every DVI command")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dvibbox - print the bounding boxes of the pages of a DVI file\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  dvibbox [options] <file.dvi>...\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  file.dvi   DVI or XDV files to inspect\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dvibbox -afm /usr/share/texmf/fonts/afm/public/amsfonts/cm paper.dvi\n")
		fmt.Fprintf(os.Stderr, "  dvibbox -pt -page 3 paper.dvi\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	dvi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	var metrics *afm.Provider
	if *afmDir != "" {
		metrics = afm.NewProvider(os.DirFS(*afmDir))
	} else {
		metrics = afm.NewProvider(nil)
	}

	for _, fname := range flag.Args() {
		err := processFile(os.Stdout, fname, metrics)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
	}
	return nil
}

func processFile(w io.Writer, fname string, metrics dvi.Metrics) error {
	fd, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer fd.Close()

	sink := bbox.NewSink(metrics)
	intp := dvi.NewInterpreter(fd, sink)
	intp.Metrics = metrics

	first := 1
	if *pageArg > 0 {
		err = intp.ExecutePage(*pageArg)
		first = *pageArg
	} else {
		err = intp.ExecuteAllPages()
	}
	if err != nil {
		return err
	}

	unit := 1.0
	if *points {
		unit = intp.Preamble().PointsPerUnit()
	}
	for i, box := range sink.Pages() {
		printBox(w, first+i, bbox.Scale(box, unit))
	}
	return nil
}

func printBox(w io.Writer, pageNo int, box rect.Rect) {
	if box.IsZero() {
		fmt.Fprintf(w, "page %d: empty\n", pageNo)
		return
	}
	fmt.Fprintf(w, "page %d: %g %g %g %g\n", pageNo, box.LLx, box.LLy, box.URx, box.URy)
}
