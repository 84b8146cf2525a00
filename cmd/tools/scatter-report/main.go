// scatter-report renders a processed result table as a period/radius
// scatter plot, one colour per prediction class. Handy for eyeballing how a
// run's candidates distribute without the web UI.
//
// Usage:
//
//	scatter-report -in processed/run_processed.csv -out scatter.png
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/exoscan-data/exoplanet.report/internal/result"
	"github.com/exoscan-data/exoplanet.report/internal/table"
)

var (
	inFile  = flag.String("in", "", "Processed result table (CSV)")
	outFile = flag.String("out", "scatter.png", "Output PNG path")
)

// classColors maps prediction codes to plot colours.
var classColors = map[int]color.RGBA{
	0: {R: 0x2b, G: 0x8c, B: 0xbe, A: 0xff}, // candidate: blue
	1: {R: 0x31, G: 0xa3, B: 0x54, A: 0xff}, // confirmed: green
	2: {R: 0xd7, G: 0x30, B: 0x27, A: 0xff}, // false positive: red
}

func main() {
	flag.Parse()
	if *inFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*inFile)
	if err != nil {
		log.Fatalf("open %s: %v", *inFile, err)
	}
	defer f.Close()

	tbl, err := table.Read(f)
	if err != nil {
		log.Fatalf("read %s: %v", *inFile, err)
	}

	codeCol := tbl.ColumnIndex("Prediction")
	periodCol := tbl.ColumnIndex("Orbital Period")
	radiusCol := tbl.ColumnIndex("Planet Radius")
	if codeCol < 0 || periodCol < 0 || radiusCol < 0 {
		log.Fatalf("%s is not a processed result table", *inFile)
	}

	points := make(map[int]plotter.XYs)
	skipped := 0
	for _, row := range tbl.Rows {
		if row.Err != nil {
			skipped++
			continue
		}
		code, err := strconv.Atoi(row.Cells[codeCol])
		if err != nil {
			skipped++
			continue
		}
		period, errP := strconv.ParseFloat(row.Cells[periodCol], 64)
		radius, errR := strconv.ParseFloat(row.Cells[radiusCol], 64)
		if errP != nil || errR != nil || period <= 0 || radius <= 0 {
			skipped++
			continue
		}
		points[code] = append(points[code], plotter.XY{
			X: math.Log10(period),
			Y: math.Log10(radius),
		})
	}
	if skipped > 0 {
		log.Printf("skipped %d unplottable rows", skipped)
	}

	p := plot.New()
	p.Title.Text = "Predicted classes"
	p.X.Label.Text = "log10 orbital period [days]"
	p.Y.Label.Text = "log10 planet radius [Earth radii]"

	for code, xys := range points {
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			log.Fatalf("build scatter for class %d: %v", code, err)
		}
		c, ok := classColors[code]
		if !ok {
			c = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add(result.StatusFor(code).Label, scatter)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, *outFile); err != nil {
		log.Fatalf("save %s: %v", *outFile, err)
	}
	fmt.Printf("wrote %s\n", *outFile)
}
