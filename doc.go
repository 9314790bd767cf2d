// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lepton is a container for FLIR Lepton thermal camera drivers.
//
// The cci package drives the camera's command and control interface over
// I²C, the vospi package captures video frames over SPI, and the render
// package turns frames into something you can look at. The wordbus package
// is a word-granularity I²C front end for targets without a kernel I²C
// driver.
package lepton
