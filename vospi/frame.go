// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/physic"
)

// Frame dimensions in pixels.
const (
	Width  = 80
	Height = 60
)

// Frame is one thermal image, one 16-bit count per pixel.
//
// With the camera's TLinear radiometry enabled each count is the scene
// temperature in centikelvin; without it the counts are raw14 sensor values
// with the top two bits zero. Frame implements image.Image as a Gray16
// image over the counts; raw frames come out dark and want the AGC
// normalization in the render package.
type Frame struct {
	pix [Width * Height]uint16
}

// NewFrame builds a frame from Width*Height counts in row-major order.
// Useful for synthetic data and tests; ReadFrame is the producer for real
// frames.
func NewFrame(pix []uint16) (*Frame, error) {
	if len(pix) != Width*Height {
		return nil, fmt.Errorf("vospi: frame needs %d pixels, got %d", Width*Height, len(pix))
	}
	f := &Frame{}
	copy(f.pix[:], pix)
	return f, nil
}

// Raw returns the count at (x, y).
func (f *Frame) Raw(x, y int) uint16 {
	return f.pix[y*Width+x]
}

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.Gray16Model
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// At implements image.Image.
func (f *Frame) At(x, y int) color.Color {
	return color.Gray16{Y: f.pix[y*Width+x]}
}

// Min returns the smallest count in the frame.
func (f *Frame) Min() uint16 {
	min := f.pix[0]
	for _, v := range f.pix {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest count in the frame.
func (f *Frame) Max() uint16 {
	max := f.pix[0]
	for _, v := range f.pix {
		if v > max {
			max = v
		}
	}
	return max
}

// MinTemp returns the coldest pixel as a temperature. Only meaningful with
// TLinear radiometry enabled.
func (f *Frame) MinTemp() physic.Temperature {
	return CountToTemperature(f.Min())
}

// MaxTemp returns the hottest pixel as a temperature. Only meaningful with
// TLinear radiometry enabled.
func (f *Frame) MaxTemp() physic.Temperature {
	return CountToTemperature(f.Max())
}

// CountToTemperature converts a TLinear radiometric count to a temperature.
// Counts are absolute centikelvin: 30000 is 300K.
func CountToTemperature(count uint16) physic.Temperature {
	return physic.Temperature(count) * 10 * physic.MilliKelvin
}

var _ image.Image = &Frame{}
