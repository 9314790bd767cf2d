// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cci drives the FLIR Lepton's command and control interface.
//
// The camera exposes a small register file over I²C: a status register with
// a busy flag and an error code, a command register, a data length register
// and a block of data registers. Every command is the same exchange: wait
// for the busy flag to clear, write the payload if there is one, write the
// packed command code, wait for the busy flag to clear again and read back
// the result data if the command returns any.
//
// The driver implements that exchange generically. Command codes are built
// with CommandCode from the IDs in the camera's software interface
// description; the driver does not interpret them beyond writing them to
// the command register.
//
// On hosts with a kernel I²C driver use NewI2C. On bare-metal targets wire
// a wordbus.Bus through New.
//
// Datasheet: FLIR Lepton Software Interface Description Document (IDD),
// rev 200, https://www.flir.com/developer-center/lepton-integrated/
package cci
