// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vospi

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/GermanBionicSystems/lepton/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// fakeConn serves scripted VoSPI packets.
type fakeConn struct {
	packets [][]byte
	i       int
	// loop re-serves the last packet forever once the script runs out.
	loop bool
}

func (f *fakeConn) String() string {
	return "fake"
}

func (f *fakeConn) Duplex() conn.Duplex {
	return conn.Full
}

func (f *fakeConn) Tx(w, r []byte) error {
	if f.i >= len(f.packets) {
		if !f.loop {
			return errors.New("fake: out of packets")
		}
		f.i = len(f.packets) - 1
	}
	copy(r, f.packets[f.i])
	f.i++
	return nil
}

func (f *fakeConn) TxPackets(p []spi.Packet) error {
	return errors.New("fake: not implemented")
}

var _ spi.Conn = &fakeConn{}

// makePacket builds a valid packet for one line. pixel(x) = base + x.
func makePacket(line int, base uint16) []byte {
	pkt := make([]byte, PacketSize)
	binary.BigEndian.PutUint16(pkt[0:2], uint16(line))
	for x := 0; x < Width; x++ {
		binary.BigEndian.PutUint16(pkt[headerSize+2*x:], base+uint16(x))
	}
	binary.BigEndian.PutUint16(pkt[2:4], common.CRC16(pkt))
	return pkt
}

func discardPacket() []byte {
	pkt := make([]byte, PacketSize)
	pkt[0] = 0x0F
	return pkt
}

func goodFrame() [][]byte {
	var pkts [][]byte
	for line := 0; line < Height; line++ {
		pkts = append(pkts, makePacket(line, uint16(line)*Width))
	}
	return pkts
}

// stubSleep replaces the resync pause and returns a counter plus a restore
// function.
func stubSleep() (*int, func()) {
	n := new(int)
	sleep = func(time.Duration) { *n++ }
	return n, func() { sleep = time.Sleep }
}

func getDev(t *testing.T, c spi.Conn) *Dev {
	d, err := NewConn(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestReadFrame(t *testing.T) {
	pkts := append([][]byte{discardPacket(), discardPacket()}, goodFrame()...)
	d := getDev(t, &fakeConn{packets: pkts})

	f, err := d.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			want := uint16(y)*Width + uint16(x)
			if got := f.Raw(x, y); got != want {
				t.Fatalf("Raw(%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
	if f.Bounds() != image.Rect(0, 0, Width, Height) {
		t.Errorf("Bounds() = %v", f.Bounds())
	}
	if c := f.At(79, 59).(color.Gray16); c.Y != f.Raw(79, 59) {
		t.Errorf("At(79, 59) = %v, want Y=%d", c, f.Raw(79, 59))
	}
}

func TestReadFrameBadCRC(t *testing.T) {
	count, restore := stubSleep()
	defer restore()

	bad := makePacket(0, 0)
	bad[10] ^= 0xFF // corrupt a pixel, CRC no longer matches
	pkts := append([][]byte{bad}, goodFrame()...)
	d := getDev(t, &fakeConn{packets: pkts})

	var msgs int
	d.EnableDebug(func(string, ...interface{}) { msgs++ })

	if _, err := d.ReadFrame(); err != nil {
		t.Fatal(err)
	}
	if *count != 1 {
		t.Errorf("resynced %d times, want 1", *count)
	}
	if msgs == 0 {
		t.Error("checksum error was not reported through the debug hook")
	}
}

func TestReadFrameDesync(t *testing.T) {
	count, restore := stubSleep()
	defer restore()

	// Always line 5: synchronization never recovers.
	pkts := [][]byte{makePacket(5, 0)}
	d, err := NewConn(&fakeConn{packets: pkts, loop: true}, &Opts{
		ResyncPause: time.Millisecond,
		MaxResyncs:  2,
		ValidateCRC: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.ReadFrame()
	if !errors.Is(err, ErrDesync) {
		t.Fatalf("error = %v, want ErrDesync", err)
	}
	if *count != 2 {
		t.Errorf("resynced %d times, want 2", *count)
	}
}

func TestReadFrameAllDiscards(t *testing.T) {
	d := getDev(t, &fakeConn{packets: [][]byte{discardPacket()}, loop: true})
	if _, err := d.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("error = %v, want ErrNoFrame", err)
	}
}

func TestReadFrameTransportError(t *testing.T) {
	d := getDev(t, &fakeConn{})
	if _, err := d.ReadFrame(); err == nil {
		t.Fatal("ReadFrame() succeeded on a dead bus")
	}
}

func TestCountToTemperature(t *testing.T) {
	tests := []struct {
		count uint16
		want  physic.Temperature
	}{
		{count: 30000, want: 300 * physic.Kelvin},
		{count: 0, want: 0},
		{count: 1, want: 10 * physic.MilliKelvin},
	}
	for _, test := range tests {
		if got := CountToTemperature(test.count); got != test.want {
			t.Errorf("CountToTemperature(%d) = %v, want %v", test.count, got, test.want)
		}
	}
}

func TestFrameMinMax(t *testing.T) {
	f := &Frame{}
	for i := range f.pix {
		f.pix[i] = 29500
	}
	f.pix[42] = 27315  // 273.15K
	f.pix[100] = 31015 // 310.15K
	if f.Min() != 27315 {
		t.Errorf("Min() = %d", f.Min())
	}
	if f.Max() != 31015 {
		t.Errorf("Max() = %d", f.Max())
	}
	if f.MinTemp() != 27315*10*physic.MilliKelvin {
		t.Errorf("MinTemp() = %v", f.MinTemp())
	}
	if f.MaxTemp() != 31015*10*physic.MilliKelvin {
		t.Errorf("MaxTemp() = %v", f.MaxTemp())
	}
}
