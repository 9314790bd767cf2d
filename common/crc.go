// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, a CRC16 calculation.
package common

// CRC16 calculates the CRC-16/CCITT (XMODEM variant: polynomial 0x1021,
// zero initial value) of the byte slice parameter and returns the calculated
// value. This is the checksum the Lepton appends to every VoSPI packet.
func CRC16(bytes []byte) uint16 {
	var crc uint16
	for _, val := range bytes {
		crc ^= uint16(val) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ 0x1021
			}
		}
	}
	return crc
}
