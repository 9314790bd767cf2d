// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cci

import (
	"encoding/binary"

	"periph.io/x/conn/v3/i2c"
)

// Transport moves 16-bit register words to and from the camera.
//
// WriteWords sends the words in one write transaction, big-endian on the
// wire. ReadWords fills dst from one read transaction, leaving dst untouched
// on failure. A wordbus.Bus satisfies Transport directly.
type Transport interface {
	WriteWords(ws []uint16) error
	ReadWords(dst []uint16) error
}

// NewI2C returns a Dev that drives the control interface through a kernel
// I²C bus. The camera only answers on DeviceAddress. The Opts can be nil.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return New(&i2cWords{d: &i2c.Dev{Bus: b, Addr: addr}}, opts)
}

// i2cWords adapts an i2c.Dev to Transport.
type i2cWords struct {
	d *i2c.Dev
}

func (t *i2cWords) WriteWords(ws []uint16) error {
	w := make([]byte, 2*len(ws))
	for i, v := range ws {
		binary.BigEndian.PutUint16(w[2*i:], v)
	}
	return t.d.Tx(w, nil)
}

func (t *i2cWords) ReadWords(dst []uint16) error {
	r := make([]byte, 2*len(dst))
	if err := t.d.Tx(nil, r); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = binary.BigEndian.Uint16(r[2*i:])
	}
	return nil
}

func (t *i2cWords) String() string {
	return t.d.String()
}
