// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/lepton/vospi"
)

// makeFrame builds a frame filled with base, with pix[0] forced to lo and
// pix[1] to hi.
func makeFrame(t *testing.T, base, lo, hi uint16) *vospi.Frame {
	pix := make([]uint16, vospi.Width*vospi.Height)
	for i := range pix {
		pix[i] = base
	}
	pix[0] = lo
	pix[1] = hi
	f, err := vospi.NewFrame(pix)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestGrayscale(t *testing.T) {
	if got := Grayscale[0]; got != (color.NRGBA{0, 0, 0, 0xFF}) {
		t.Fatalf("bottom: %v", got)
	}
	if got := Grayscale[255]; got != (color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("top: %v", got)
	}
	for i := 1; i < len(Grayscale); i++ {
		if Grayscale[i].R < Grayscale[i-1].R {
			t.Fatalf("not monotonic at %d: %v < %v", i, Grayscale[i], Grayscale[i-1])
		}
	}
}

func TestIron(t *testing.T) {
	for i, c := range Iron {
		if c.A != 0xFF {
			t.Fatalf("entry %d not opaque: %v", i, c)
		}
	}
	if Iron[0] != (color.NRGBA{0, 0, 0, 0xFF}) {
		t.Fatalf("bottom: %v", Iron[0])
	}
	if Iron[255] != (color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("top: %v", Iron[255])
	}
}

func TestFalseColor(t *testing.T) {
	f := makeFrame(t, 29500, 29000, 31000)
	img := FalseColor(f, Grayscale)
	if img.Bounds() != f.Bounds() {
		t.Fatalf("bounds: %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 0xFF}) {
		t.Fatalf("coldest pixel: %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("hottest pixel: %v", got)
	}
}

func TestFalseColorFlat(t *testing.T) {
	// A flat frame has no range to stretch. All pixels land at the bottom
	// of the palette.
	f := makeFrame(t, 30000, 30000, 30000)
	img := FalseColor(f, Iron)
	want := color.RGBA{0, 0, 0, 0xFF}
	if got := img.RGBAAt(40, 30); got != want {
		t.Fatalf("flat frame pixel: %v", got)
	}
}

func TestUpscale(t *testing.T) {
	f := makeFrame(t, 30000, 29000, 31000)
	img := Upscale(FalseColor(f, Grayscale), 4)
	if dx, dy := img.Bounds().Dx(), img.Bounds().Dy(); dx != 4*vospi.Width || dy != 4*vospi.Height {
		t.Fatalf("size: %dx%d", dx, dy)
	}
	// Nearest-neighbor keeps the source pixel intact across its block.
	if got := img.RGBAAt(2, 2); got != (color.RGBA{0, 0, 0, 0xFF}) {
		t.Fatalf("block pixel: %v", got)
	}
}

func TestUpscaleFactorFloor(t *testing.T) {
	f := makeFrame(t, 30000, 29000, 31000)
	img := Upscale(FalseColor(f, Grayscale), 0)
	if dx := img.Bounds().Dx(); dx != vospi.Width {
		t.Fatalf("size: %d", dx)
	}
}

func TestTermDraw(t *testing.T) {
	f := makeFrame(t, 30000, 29000, 31000)
	var buf bytes.Buffer
	term := NewTerm(&TermOpts{Writer: &buf})
	if s := term.String(); s != "ThermalTerm" {
		t.Fatal(s)
	}
	if err := term.Draw(FalseColor(f, Iron)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\033[") {
		t.Fatal("no ANSI escape codes in output")
	}
	if got := strings.Count(out, "\n"); got != vospi.Height {
		t.Fatalf("rows: %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	f := makeFrame(t, 29500, 29000, 31000)
	img, err := Snapshot(f, Iron, 2)
	if err != nil {
		t.Fatal(err)
	}
	if dx := img.Bounds().Dx(); dx != 2*vospi.Width {
		t.Fatalf("width: %d", dx)
	}
	wantH := 2*vospi.Height + legendBarHeight + legendTextHeight
	if dy := img.Bounds().Dy(); dy != wantH {
		t.Fatalf("height: %d", dy)
	}
	// Legend bar left edge carries the bottom of the palette.
	c := color.NRGBAModel.Convert(img.At(0, 2*vospi.Height+legendBarHeight/2)).(color.NRGBA)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("legend left edge: %v", c)
	}
}
