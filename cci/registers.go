// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cci

import "fmt"

// DeviceAddress is the camera's fixed I²C slave address.
const DeviceAddress uint16 = 0x2A

// Command and control interface registers. All registers are 16 bits wide
// and addressed by 16-bit words on the wire.
const (
	// RegPower is the power on/off register.
	RegPower uint16 = 0x0000
	// RegStatus holds the busy flag and the error code of the last command.
	RegStatus uint16 = 0x0002
	// RegCommand receives the packed command code.
	RegCommand uint16 = 0x0004
	// RegDataLength holds the size of the next data block. The datasheet
	// documents the unit as 16-bit words but the hardware reports bytes;
	// see (*Dev).readData.
	RegDataLength uint16 = 0x0006
	// RegData0 is the first of the 16 directly addressed data registers
	// (0x0008..0x0026).
	RegData0 uint16 = 0x0008
	// RegDataBuffer is the base of the block transfer buffer used for
	// payloads larger than the 16 data registers.
	RegDataBuffer uint16 = 0xF800
)

// MaxDirectWords is the largest payload that fits the directly addressed
// data registers. Larger payloads go through RegDataBuffer.
const MaxDirectWords = 16

// Status register layout.
const (
	// StatusBusyBit is set while the camera is executing a command.
	StatusBusyBit uint16 = 0x0001
	// StatusErrorMask selects the error code sub-field, valid when the busy
	// bit is clear.
	StatusErrorMask uint16 = 0xFF00
	// StatusErrorShift aligns the error code sub-field to bit 0.
	StatusErrorShift = 8
)

// Command code bit fields. A command code packs the module ID, the command
// ID within the module and the command type into one 16-bit word.
const (
	// ModuleIDMask selects the module ID bits of a command code.
	ModuleIDMask uint16 = 0x0F00
	// CommandIDMask selects the command ID bits of a command code.
	CommandIDMask uint16 = 0x00FC
	// TypeMask selects the command type bits of a command code.
	TypeMask uint16 = 0x0003
)

// Command types.
const (
	// TypeGet reads a data block from the camera.
	TypeGet uint16 = 0x0
	// TypeSet writes a data block to the camera.
	TypeSet uint16 = 0x1
	// TypeRun executes a command that carries no data.
	TypeRun uint16 = 0x2
)

// Module ID bases for building command IDs. The OEM and RAD modules
// additionally require the protection bit 0x4000 in the raw command ID; that
// bit lies outside ModuleIDMask and is stripped by CommandCode, matching the
// camera's documented GET/SET/RUN encoding for unprotected modules.
const (
	ModuleAGC uint16 = 0x0100
	ModuleSYS uint16 = 0x0200
	ModuleVID uint16 = 0x0300
)

// Result is the error code the camera latches in the status register after
// each command. Zero means success; the other values are negative and follow
// the camera's software interface description.
type Result int8

const (
	OK                   Result = 0
	Error                Result = -1
	NotReady             Result = -2
	RangeError           Result = -3
	ChecksumError        Result = -4
	BadArgError          Result = -5
	DataSizeError        Result = -6
	UndefinedFunction    Result = -7
	FunctionNotSupported Result = -8
	OTPWriteError        Result = -15
	OTPReadError         Result = -16
	OTPNotProgrammed     Result = -18
	DivZeroError         Result = -80
	CommTimeoutError     Result = -109
	OperationCanceled    Result = -126
	UndefinedError       Result = -127
)

// String returns a short description of the result code.
func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case Error:
		return "camera general error"
	case NotReady:
		return "camera not ready"
	case RangeError:
		return "command argument out of range"
	case ChecksumError:
		return "checksum error"
	case BadArgError:
		return "bad argument pointer"
	case DataSizeError:
		return "data size error"
	case UndefinedFunction:
		return "undefined function"
	case FunctionNotSupported:
		return "function not supported"
	case OTPWriteError:
		return "OTP write error"
	case OTPReadError:
		return "OTP read error"
	case OTPNotProgrammed:
		return "OTP not programmed"
	case DivZeroError:
		return "division by zero"
	case CommTimeoutError:
		return "communication timeout"
	case OperationCanceled:
		return "operation canceled"
	case UndefinedError:
		return "undefined error"
	}
	return fmt.Sprintf("unknown result %d", int8(r))
}
