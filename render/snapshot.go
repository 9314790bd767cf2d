// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/lepton/vospi"
)

const (
	legendBarHeight  = 10
	legendTextHeight = 18
)

// Snapshot renders a frame as an annotated image: the upscaled false-color
// view, a palette legend bar and the frame's temperature range. The
// temperature annotation assumes TLinear radiometry; scale is the integer
// upscaling factor.
func Snapshot(f *vospi.Frame, p *Palette, scale int) (image.Image, error) {
	img := Upscale(FalseColor(f, p), scale)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy() + legendBarHeight + legendTextHeight

	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.DrawImage(img, 0, 0)

	// Legend bar: the palette swept left to right.
	barTop := float64(img.Bounds().Dy())
	for x := 0; x < w; x++ {
		c := p[x*255/(w-1)]
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(float64(x), barTop, 1, legendBarHeight)
		dc.Fill()
	}

	ft, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parsing font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ft, &truetype.Options{Size: 12}))
	dc.SetRGB(1, 1, 1)
	label := fmt.Sprintf("%.1f°C .. %.1f°C", f.MinTemp().Celsius(), f.MaxTemp().Celsius())
	dc.DrawString(label, 4, float64(h)-5)

	return dc.Image(), nil
}
