// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package wordbus moves bytes and 16-bit words to and from a single slave
// device over a raw two-wire bus controller.
//
// It is meant for targets where there is no kernel I²C driver and the bus
// controller is driven register by register. The controller is abstracted by
// the Peripheral interface; every hardware-ready condition is polled in a
// tight loop bounded by a per-byte deadline. Words travel big-endian, high
// byte first.
package wordbus

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"
)

// Dir is the direction of a bus transaction.
type Dir int

const (
	// Read transfers bytes from the slave to the host.
	Read Dir = iota
	// Write transfers bytes from the host to the slave.
	Write
)

// Peripheral is a raw two-wire bus controller front end.
//
// Select configures the upcoming transaction's target address, direction and
// byte count and initiates the framing. The implementation must order the
// start and auto-stop enables correctly: for writes enable auto-stop first
// and then issue the start, for reads issue the start first and then enable
// auto-stop, otherwise a repeated start is not generated properly.
type Peripheral interface {
	Select(addr uint16, dir Dir, n int)
	// TransmitReady reports whether the controller can accept another byte.
	TransmitReady() bool
	// SendByte hands one byte to the controller. Only valid after
	// TransmitReady returned true.
	SendByte(b byte)
	// Nacked reports whether the slave negative-acknowledged the transfer.
	Nacked() bool
	// DataAvailable reports whether a received byte is waiting.
	DataAvailable() bool
	// RecvByte takes one received byte from the controller. Only valid after
	// DataAvailable returned true.
	RecvByte() byte
}

// Clock is the monotonic time source used to bound waits. On bare-metal
// targets it is typically backed by a tick counter incremented from a
// periodic interrupt; reading it must be safe concurrently with that
// increment.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is a Clock backed by the time package.
var SystemClock Clock = systemClock{}

var (
	// ErrTimeout is returned when a wait on a hardware-ready condition
	// expired before the controller became ready.
	ErrTimeout = errors.New("wordbus: timeout waiting for bus ready")
	// ErrNack is returned when the slave negative-acknowledged a transfer.
	ErrNack = errors.New("wordbus: slave nacked transfer")
)

// Opts contains options to pass to New.
type Opts struct {
	// Timeout bounds each wait on a hardware-ready condition. One byte gets
	// one full window.
	Timeout time.Duration
	// Clock is the time source for deadlines. Leave nil for SystemClock.
	Clock Clock
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Timeout: 10 * time.Millisecond,
}

// Bus transfers bytes and words to one fixed slave address.
//
// All methods are safe for concurrent use; the embedded mutex holds the bus
// for one whole transaction at a time. Interleaving transfers from two
// goroutines would otherwise corrupt the wire framing.
type Bus struct {
	sync.Mutex
	p       Peripheral
	addr    uint16
	timeout time.Duration
	clock   Clock
}

// New returns a Bus that talks to the slave at addr through the given
// controller front end. The Opts can be nil.
func New(p Peripheral, addr uint16, opts *Opts) (*Bus, error) {
	if p == nil {
		return nil, errors.New("wordbus: nil peripheral")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	b := &Bus{p: p, addr: addr, timeout: opts.Timeout, clock: opts.Clock}
	if b.timeout <= 0 {
		b.timeout = DefaultOpts.Timeout
	}
	if b.clock == nil {
		b.clock = SystemClock
	}
	return b, nil
}

// WriteByte writes a single byte in its own transaction.
func (b *Bus) WriteByte(v byte) error {
	b.Lock()
	defer b.Unlock()
	return b.write([]byte{v})
}

// WriteBytes writes p in a single transaction.
func (b *Bus) WriteBytes(p []byte) error {
	b.Lock()
	defer b.Unlock()
	return b.write(p)
}

// WriteWord writes one word, high byte first, in its own transaction.
func (b *Bus) WriteWord(w uint16) error {
	b.Lock()
	defer b.Unlock()
	return b.write([]byte{byte(w >> 8), byte(w)})
}

// WriteWords writes the words in ws back to back in a single transaction,
// each one high byte first.
func (b *Bus) WriteWords(ws []uint16) error {
	b.Lock()
	defer b.Unlock()
	p := make([]byte, 2*len(ws))
	for i, w := range ws {
		binary.BigEndian.PutUint16(p[2*i:], w)
	}
	return b.write(p)
}

// ReadByte reads a single byte in its own transaction.
func (b *Bus) ReadByte() (byte, error) {
	b.Lock()
	defer b.Unlock()
	var p [1]byte
	if err := b.read(p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBytes fills p from a single transaction. On failure p is left
// untouched.
func (b *Bus) ReadBytes(p []byte) error {
	b.Lock()
	defer b.Unlock()
	tmp := make([]byte, len(p))
	if err := b.read(tmp); err != nil {
		return err
	}
	copy(p, tmp)
	return nil
}

// ReadWord reads one word, high byte first, in its own transaction.
func (b *Bus) ReadWord() (uint16, error) {
	b.Lock()
	defer b.Unlock()
	var p [2]byte
	if err := b.read(p[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p[:]), nil
}

// ReadWords fills dst from a single transaction, reassembling each word high
// byte first. On failure dst is left untouched; there are no partial
// results.
func (b *Bus) ReadWords(dst []uint16) error {
	b.Lock()
	defer b.Unlock()
	p := make([]byte, 2*len(dst))
	if err := b.read(p); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = binary.BigEndian.Uint16(p[2*i:])
	}
	return nil
}

// write sends p as one transaction. The caller holds the lock.
func (b *Bus) write(p []byte) error {
	b.p.Select(b.addr, Write, len(p))
	for _, v := range p {
		if err := b.waitTransmit(); err != nil {
			return err
		}
		b.p.SendByte(v)
	}
	return nil
}

// read fills p from one transaction. The caller holds the lock.
func (b *Bus) read(p []byte) error {
	b.p.Select(b.addr, Read, len(p))
	for i := range p {
		if err := b.waitReceive(); err != nil {
			return err
		}
		p[i] = b.p.RecvByte()
	}
	return nil
}

// waitTransmit polls until the controller can take another byte. A latched
// nack fails immediately, an expired deadline fails with ErrTimeout.
func (b *Bus) waitTransmit() error {
	deadline := b.clock.Now().Add(b.timeout)
	for {
		if b.p.TransmitReady() {
			return nil
		}
		if b.p.Nacked() {
			return ErrNack
		}
		if b.clock.Now().After(deadline) {
			return ErrTimeout
		}
	}
}

// waitReceive polls until a received byte is waiting.
func (b *Bus) waitReceive() error {
	deadline := b.clock.Now().Add(b.timeout)
	for {
		if b.p.DataAvailable() {
			return nil
		}
		if b.clock.Now().After(deadline) {
			return ErrTimeout
		}
	}
}
