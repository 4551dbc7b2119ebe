// seehuhn.de/go/pdfdoc - write and read PDF documents
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
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

// Pdfdump lists the objects, pages and warnings of a PDF file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"seehuhn.de/go/pdfdoc"
)

var (
	verbose  = flag.Bool("v", false, "log warnings while reading")
	tokens   = flag.Bool("tokens", false, "show the flat token form of every object")
	showData = flag.Bool("data", false, "show decoded stream data (default when output is not a terminal)")
	maxPrev  = flag.Int("max-sections", 0, "maximal number of cross-reference sections")
)

func main() {
	flag.CommandLine.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [options] <file.pdf>\n\nOptions:\n",
			filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.CommandLine.Usage()
		os.Exit(1)
	}

	opt := &pdfdoc.ReaderOptions{MaxXRefSections: *maxPrev}
	if *verbose {
		opt.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	data := *showData
	if !isFlagSet("data") {
		data = !term.IsTerminal(int(os.Stdout.Fd()))
	}

	err := dump(os.Stdout, flag.Arg(0), opt, data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func dump(w io.Writer, fname string, opt *pdfdoc.ReaderOptions, data bool) error {
	file, err := pdfdoc.ReadFile(fname, opt)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "PDF-%s, %d objects\n", file.Version, len(file.Objects))
	fmt.Fprintf(w, "trailer %s\n\n", pdfdoc.Format(file.Trailer))

	for _, n := range file.Objects.Numbers() {
		obj := file.Objects[n]
		if *tokens {
			fmt.Fprintf(w, "%d 0 obj %s\n", n, pdfdoc.JoinTokens(pdfdoc.Flatten(obj.Value)))
		} else {
			fmt.Fprintf(w, "%d 0 obj %s\n", n, pdfdoc.Format(obj.Value))
		}
		if obj.IsStream() {
			fmt.Fprintf(w, "  stream: %d bytes stored, %d bytes decoded\n", len(obj.Stream), len(obj.Data))
			if data {
				w.Write(obj.Data)
				fmt.Fprintln(w)
			}
		}
	}

	pages, err := file.GetPageObjects()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d pages\n", len(pages))
	for i, page := range pages {
		box, err := page.MediaBox(file.Objects)
		if err != nil {
			fmt.Fprintf(w, "  page %d: object %d, %v\n", i+1, page.Number, err)
			continue
		}
		fmt.Fprintf(w, "  page %d: object %d, %gx%g\n", i+1, page.Number, box.Dx(), box.Dy())
	}

	for _, warning := range file.Warnings {
		fmt.Fprintln(w, "warning:", warning)
	}
	return nil
}
