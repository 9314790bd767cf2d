// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package render turns Lepton frames into viewable images.
//
// It provides false-color rendering with min-max AGC, integer upscaling,
// an ANSI terminal preview and an annotated snapshot with a palette legend
// and the frame's temperature range.
package render

import (
	"image"
	"image/color"

	"github.com/GermanBionicSystems/lepton/vospi"
	xdraw "golang.org/x/image/draw"
)

// Palette maps a normalized 8-bit intensity to a display color.
type Palette [256]color.NRGBA

// Grayscale is a linear black to white palette.
var Grayscale = makeGradient([]color.NRGBA{
	{0x00, 0x00, 0x00, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
})

// Iron is the classic thermal imaging palette, black through purple, red
// and yellow to white.
var Iron = makeGradient([]color.NRGBA{
	{0x00, 0x00, 0x00, 0xFF},
	{0x20, 0x00, 0x60, 0xFF},
	{0x78, 0x00, 0x90, 0xFF},
	{0xC8, 0x30, 0x60, 0xFF},
	{0xF0, 0x80, 0x20, 0xFF},
	{0xFF, 0xD0, 0x60, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
})

// makeGradient fills a palette by linear interpolation between evenly
// spaced stops.
func makeGradient(stops []color.NRGBA) *Palette {
	var p Palette
	segs := len(stops) - 1
	for i := 0; i < len(p); i++ {
		pos := float64(i) / float64(len(p)-1) * float64(segs)
		s := int(pos)
		if s >= segs {
			s = segs - 1
		}
		frac := pos - float64(s)
		a, b := stops[s], stops[s+1]
		p[i] = color.NRGBA{
			R: lerp(a.R, b.R, frac),
			G: lerp(a.G, b.G, frac),
			B: lerp(a.B, b.B, frac),
			A: 0xFF,
		}
	}
	return &p
}

func lerp(a, b uint8, frac float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*frac + 0.5)
}

// FalseColor renders a frame through a palette, normalizing the frame's
// count range onto the palette (min-max AGC). A flat frame maps entirely to
// the bottom of the palette.
func FalseColor(f *vospi.Frame, p *Palette) *image.RGBA {
	lo, hi := f.Min(), f.Max()
	span := uint32(hi - lo)
	if span == 0 {
		span = 1
	}
	img := image.NewRGBA(f.Bounds())
	for y := 0; y < vospi.Height; y++ {
		for x := 0; x < vospi.Width; x++ {
			idx := uint32(f.Raw(x, y)-lo) * 255 / span
			c := p[idx]
			img.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, c.A})
		}
	}
	return img
}

// Upscale resizes img by an integer factor with nearest-neighbor sampling,
// keeping the blocky pixels a thermal image reader expects.
func Upscale(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
