// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cci

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
)

// DebugF is the debug print function type. See (*Dev).EnableDebug.
type DebugF func(format string, args ...interface{})

func noop(string, ...interface{}) {}

// ErrBusyTimeout is returned when the camera's busy flag did not clear
// within the configured timeout.
var ErrBusyTimeout = errors.New("cci: busy flag did not clear before timeout")

// LengthMismatchError is returned when the data length register reports a
// byte count that does not match the caller's expected word count. It
// signals protocol-level corruption, as opposed to a timeout.
type LengthMismatchError struct {
	// Want is the expected byte count, twice the requested word count.
	Want int
	// Got is the byte count the camera reported. Zero means the camera has
	// no data block pending.
	Got int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("cci: data length register reported %d bytes, want %d", e.Got, e.Want)
}

// Opts contains options to pass to the constructors.
type Opts struct {
	// Timeout bounds each wait on the camera's busy flag. A command gets two
	// such waits, one before the command write and one after.
	Timeout time.Duration
}

// DefaultOpts is the recommended default options. The one second busy
// timeout covers the camera's worst case, the post-boot FFC.
var DefaultOpts = Opts{
	Timeout: time.Second,
}

// Hooks for the busy poll loop, swapped out by tests.
var (
	timeNow = time.Now
	sleep   = time.Sleep
)

// CommandCode packs a raw command ID and a command type into one command
// code word.
//
// id carries the module ID and command ID bits, typ is one of TypeGet,
// TypeSet or TypeRun. Both inputs are masked to their fields; the caller is
// expected to supply pre-masked constants, overlap is not checked.
func CommandCode(id, typ uint16) uint16 {
	return id&ModuleIDMask | id&CommandIDMask | typ&TypeMask
}

// Dev is a handle to the camera's command and control interface.
//
// All methods are safe for concurrent use. A mutex holds the interface for
// one whole command at a time since a command is a multi-transaction
// exchange against shared device registers.
type Dev struct {
	mu      sync.Mutex
	t       Transport
	timeout time.Duration
	debug   DebugF
	// last is the error code latched on the most recent successful
	// busy-clear observation. Busy timeouts leave it untouched.
	last Result
}

// New returns a Dev that drives the control interface through t.
//
// Use this constructor with a wordbus.Bus on targets that drive the two-wire
// controller directly. The Opts can be nil.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("cci: nil transport")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{t: t, timeout: opts.Timeout, debug: noop}
	if d.timeout <= 0 {
		d.timeout = DefaultOpts.Timeout
	}
	return d, nil
}

// EnableDebug sets a debug print function. The driver reports unexpected
// device behavior, like a sustained busy flag, through it. Nil restores the
// default of no output.
func (d *Dev) EnableDebug(f DebugF) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f == nil {
		f = noop
	}
	d.debug = f
}

// String implements conn.Resource.
func (d *Dev) String() string {
	if s, ok := d.t.(fmt.Stringer); ok {
		return fmt.Sprintf("Lepton CCI{%s}", s)
	}
	return "Lepton CCI"
}

// Halt implements conn.Resource. The control interface holds no state that
// needs stopping.
func (d *Dev) Halt() error {
	return nil
}

// GetCommand executes a GET command and fills out with the result data.
//
// It waits for the camera to become idle, writes the command code, waits for
// completion and reads back a length-validated data block of exactly
// len(out) words. On failure out is left untouched.
//
// The returned Result is the camera's own error code, latched from the last
// successful busy-clear observation. A nil error with a non-OK Result means
// the exchange succeeded but the camera rejected the command.
func (d *Dev) GetCommand(code uint16, out []uint16) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	if err := d.writeRegister(RegCommand, code); err != nil {
		return d.last, fmt.Errorf("cci: writing command 0x%04x: %w", code, err)
	}
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	if err := d.readData(out); err != nil {
		return d.last, err
	}
	return d.last, nil
}

// SetCommand executes a SET command with the given payload.
//
// It waits for the camera to become idle, writes the payload length and the
// payload itself, writes the command code and waits for completion. Payloads
// of up to MaxDirectWords words go to the data registers, larger ones to the
// block transfer buffer. An empty payload writes the command code only.
//
// See GetCommand for the meaning of the returned Result.
func (d *Dev) SetCommand(code uint16, payload []uint16) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	if len(payload) > 0 {
		if err := d.writeRegister(RegDataLength, uint16(len(payload))); err != nil {
			return d.last, fmt.Errorf("cci: writing data length: %w", err)
		}
		reg := RegData0
		if len(payload) > MaxDirectWords {
			reg = RegDataBuffer
		}
		ws := make([]uint16, 0, 1+len(payload))
		ws = append(ws, reg)
		ws = append(ws, payload...)
		if err := d.t.WriteWords(ws); err != nil {
			return d.last, fmt.Errorf("cci: writing %d payload words: %w", len(payload), err)
		}
	}
	if err := d.writeRegister(RegCommand, code); err != nil {
		return d.last, fmt.Errorf("cci: writing command 0x%04x: %w", code, err)
	}
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	return d.last, nil
}

// RunCommand executes a RUN command, which carries no data in either
// direction.
//
// See GetCommand for the meaning of the returned Result.
func (d *Dev) RunCommand(code uint16) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	if err := d.writeRegister(RegCommand, code); err != nil {
		return d.last, fmt.Errorf("cci: writing command 0x%04x: %w", code, err)
	}
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	return d.last, nil
}

// WaitReady blocks until the camera clears its busy flag or the timeout
// expires. Useful right after power-up, when the camera boots and runs its
// first flat field correction.
func (d *Dev) WaitReady() (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitBusy(); err != nil {
		return d.last, err
	}
	return d.last, nil
}

// LastResult returns the camera error code latched on the most recent
// successful busy-clear observation. It is not updated by calls that fail
// with a busy timeout or a transport error.
func (d *Dev) LastResult() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// waitBusy polls the status register until the busy flag clears. On a clear
// observation it latches the error code sub-field. The deadline is computed
// once; each re-read is preceded by a 1ms sleep. A transport failure is an
// immediate error, distinct from ErrBusyTimeout.
//
// The caller holds d.mu.
func (d *Dev) waitBusy() error {
	status, err := d.readRegister(RegStatus)
	if err != nil {
		return fmt.Errorf("cci: reading status register: %w", err)
	}
	if status&StatusBusyBit == 0 {
		d.last = Result(int8((status & StatusErrorMask) >> StatusErrorShift))
		return nil
	}

	deadline := timeNow().Add(d.timeout)
	for status&StatusBusyBit != 0 && timeNow().Before(deadline) {
		sleep(time.Millisecond)
		if status, err = d.readRegister(RegStatus); err != nil {
			return fmt.Errorf("cci: reading status register: %w", err)
		}
	}
	if status&StatusBusyBit != 0 {
		d.debug("cci: busy flag still set after %s", d.timeout)
		return ErrBusyTimeout
	}
	d.last = Result(int8((status & StatusErrorMask) >> StatusErrorShift))
	return nil
}

// readData reads the pending data block into out, validating its length
// first.
//
// The data length register is documented to report 16-bit words but the
// hardware reports bytes: a 16-word read reports 32. This is confirmed
// device behavior, so the expected count is 2*len(out) and anything else,
// including zero, is rejected before touching the data registers. The
// register pointer auto-increments past the length register, so the payload
// follows without re-pointing.
func (d *Dev) readData(out []uint16) error {
	if err := d.t.WriteWords([]uint16{RegDataLength}); err != nil {
		return fmt.Errorf("cci: selecting data length register: %w", err)
	}
	var n [1]uint16
	if err := d.t.ReadWords(n[:]); err != nil {
		return fmt.Errorf("cci: reading data length register: %w", err)
	}
	want := 2 * len(out)
	if int(n[0]) != want || n[0] == 0 {
		return &LengthMismatchError{Want: want, Got: int(n[0])}
	}
	if err := d.t.ReadWords(out); err != nil {
		return fmt.Errorf("cci: reading %d data words: %w", len(out), err)
	}
	return nil
}

// writeRegister writes one word into a device register in a single
// transaction.
func (d *Dev) writeRegister(reg, value uint16) error {
	return d.t.WriteWords([]uint16{reg, value})
}

// readRegister points the camera at a register and reads it back.
func (d *Dev) readRegister(reg uint16) (uint16, error) {
	if err := d.t.WriteWords([]uint16{reg}); err != nil {
		return 0, err
	}
	var v [1]uint16
	if err := d.t.ReadWords(v[:]); err != nil {
		return 0, err
	}
	return v[0], nil
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
