// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package vospi captures FLIR Lepton video frames over SPI.
//
// The camera streams a frame as 60 VoSPI packets of 164 bytes: a 2-byte ID,
// a 2-byte CRC and 80 16-bit pixels. Packets with 0xF in the ID's second
// nibble are discard packets emitted while no frame is ready. The reader
// validates every packet's CRC, tracks the line sequence and resynchronizes
// by idling the bus when the sequence breaks; the camera resets its stream
// after roughly 185ms of clock silence.
//
// Command and control of the camera is separate, see the cci package.
package vospi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/lepton/common"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// PacketSize is the size of one VoSPI packet in bytes.
	PacketSize = 164
	headerSize = 4

	discardMask = 0x0F00
	lineMask    = 0x0FFF
)

// DebugF is the debug print function type. See (*Dev).EnableDebug.
type DebugF func(format string, args ...interface{})

func noop(string, ...interface{}) {}

// ErrDesync is returned when packet synchronization could not be recovered
// within the configured number of attempts.
var ErrDesync = errors.New("vospi: lost packet synchronization")

// ErrNoFrame is returned when the camera kept emitting discard packets for
// an entire frame worth of reads without ever starting a frame.
var ErrNoFrame = errors.New("vospi: no frame start in discard stream")

// A frame period is about 37ms of packets. Give a slow camera a generous
// multiple of that before declaring it stuck.
const maxDiscards = 20000

// CRCError is reported through the debug hook when a packet fails its
// checksum; the reader treats it like a lost sync and retries.
type CRCError struct {
	Line int
	Want uint16
	Got  uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("vospi: packet %d crc 0x%04x, want 0x%04x", e.Line, e.Got, e.Want)
}

// Opts contains options to pass to the constructors.
type Opts struct {
	// ResyncPause is how long the bus idles to make the camera reset its
	// stream after a desynchronization. The camera needs at least 185ms.
	ResyncPause time.Duration
	// MaxResyncs is how many resynchronization attempts a single ReadFrame
	// may spend before giving up.
	MaxResyncs int
	// ValidateCRC disables per-packet checksum validation when false.
	ValidateCRC bool
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	ResyncPause: 200 * time.Millisecond,
	MaxResyncs:  3,
	ValidateCRC: true,
}

// Hook for the resync pause, swapped out by tests.
var sleep = time.Sleep

// Dev is a handle to the camera's video interface.
type Dev struct {
	c     spi.Conn
	opts  Opts
	debug DebugF
}

// NewSPI returns a Dev that reads frames from the given SPI port. The port
// is clocked at 20MHz in mode 3, per the camera's datasheet. The Opts can
// be nil.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	c, err := p.Connect(20*physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("vospi: %w", err)
	}
	return NewConn(c, opts)
}

// NewConn returns a Dev on an already connected SPI connection.
func NewConn(c spi.Conn, opts *Opts) (*Dev, error) {
	if c == nil {
		return nil, errors.New("vospi: nil connection")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{c: c, opts: *opts, debug: noop}
	if d.opts.ResyncPause <= 0 {
		d.opts.ResyncPause = DefaultOpts.ResyncPause
	}
	if d.opts.MaxResyncs <= 0 {
		d.opts.MaxResyncs = DefaultOpts.MaxResyncs
	}
	return d, nil
}

// EnableDebug sets a debug print function used to report checksum errors
// and resynchronizations. Nil restores the default of no output.
func (d *Dev) EnableDebug(f DebugF) {
	if f == nil {
		f = noop
	}
	d.debug = f
}

func (d *Dev) String() string {
	return fmt.Sprintf("Lepton VoSPI{%s}", d.c)
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return nil
}

// ReadFrame reads one complete frame from the stream.
//
// It blocks through discard packets until the camera starts a frame, then
// collects the 60 lines in order. A checksum failure or a line number out
// of sequence idles the bus to force the camera to restart its stream and
// begins over; after Opts.MaxResyncs such restarts it fails with ErrDesync.
func (d *Dev) ReadFrame() (*Frame, error) {
	f := &Frame{}
	var pkt [PacketSize]byte
	line := 0
	resyncs := 0
	discards := 0
	for line < Height {
		if err := d.c.Tx(nil, pkt[:]); err != nil {
			return nil, fmt.Errorf("vospi: reading packet: %w", err)
		}
		id := binary.BigEndian.Uint16(pkt[0:2])
		if id&discardMask == discardMask {
			if discards++; discards > maxDiscards {
				return nil, ErrNoFrame
			}
			continue
		}
		if d.opts.ValidateCRC {
			if err := checkCRC(pkt[:], line); err != nil {
				d.debug("vospi: %v", err)
				if resyncs++; resyncs > d.opts.MaxResyncs {
					return nil, ErrDesync
				}
				line = 0
				d.resync()
				continue
			}
		}
		if int(id&lineMask) != line {
			d.debug("vospi: packet %d arrived while expecting line %d", id&lineMask, line)
			if resyncs++; resyncs > d.opts.MaxResyncs {
				return nil, ErrDesync
			}
			line = 0
			d.resync()
			continue
		}
		for x := 0; x < Width; x++ {
			f.pix[line*Width+x] = binary.BigEndian.Uint16(pkt[headerSize+2*x:])
		}
		line++
	}
	return f, nil
}

// resync idles the bus long enough for the camera to reset its stream.
func (d *Dev) resync() {
	sleep(d.opts.ResyncPause)
}

// checkCRC validates a packet checksum. The CRC covers the whole packet
// with the ID's top nibble and the CRC field zeroed.
func checkCRC(pkt []byte, line int) error {
	got := binary.BigEndian.Uint16(pkt[2:4])
	var scratch [PacketSize]byte
	copy(scratch[:], pkt)
	scratch[0] &= 0x0F
	scratch[2] = 0
	scratch[3] = 0
	if want := common.CRC16(scratch[:]); want != got {
		return &CRCError{Line: line, Want: want, Got: got}
	}
	return nil
}
