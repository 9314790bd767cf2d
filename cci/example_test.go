// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cci_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/lepton/cci"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	dev, err := cci.NewI2C(b, cci.DeviceAddress, nil)
	if err != nil {
		log.Fatal(err)
	}

	// The camera boots into a flat field correction; wait it out.
	if _, err := dev.WaitReady(); err != nil {
		log.Fatal(err)
	}

	// Read the 8-word customer serial number with a generic GET. 0x0228 is
	// SYS module, customer serial number command, from the camera's software
	// IDD.
	serial := make([]uint16, 8)
	res, err := dev.GetCommand(cci.CommandCode(cci.ModuleSYS|0x28, cci.TypeGet), serial)
	if err != nil {
		log.Fatal(err)
	}
	if res != cci.OK {
		log.Fatalf("camera rejected command: %v", res)
	}
	fmt.Printf("serial: %04x\n", serial)
}
