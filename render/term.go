// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// TermOpts represents the options available for the terminal preview.
type TermOpts struct {
	// Writer receives the ANSI stream. Leave nil for a colorable stdout.
	Writer io.Writer
	// Palette is the ANSI color quantization palette. Leave nil for the
	// default.
	Palette *ansi256.Palette
}

// Term writes thermal previews to a terminal using ANSI color codes.
//
// Useful while bringing up a camera over a serial console, before any real
// display is attached.
type Term struct {
	w       io.Writer
	palette ansi256.Palette
	buf     bytes.Buffer
}

// NewTerm returns a Term. The opts can be nil.
func NewTerm(opts *TermOpts) *Term {
	if opts == nil {
		opts = &TermOpts{}
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Term{w: w, palette: *p}
}

func (t *Term) String() string {
	return "ThermalTerm"
}

// Draw writes img as one block character per pixel, row by row.
func (t *Term) Draw(img image.Image) error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	t.buf.Reset()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		_, _ = t.buf.WriteString("\033[0m")
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			_, _ = io.WriteString(&t.buf, t.palette.Block(c))
		}
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}
