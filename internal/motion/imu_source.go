// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// DefaultAccelLSBPerG is the MPU9250 accelerometer sensitivity at ±2g.
const DefaultAccelLSBPerG = 16384.0

// rawAccelReader is the part of the MPU9250 driver the source needs.
type rawAccelReader interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
}

type imuSource struct {
	imu     rawAccelReader
	lsbPerG float64
}

// NewIMUSource initializes an MPU9250 over SPI and returns a Source that
// reports its accelerometer in g.
func NewIMUSource(spiDev, csPin string, lsbPerG float64) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	// Calibration failure is not fatal: shake detection only needs a coarse
	// magnitude.
	if err := dev.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Printf("IMU calibration complete (%s)", spiDev)
	}

	return newIMUSource(dev, lsbPerG), nil
}

func newIMUSource(r rawAccelReader, lsbPerG float64) *imuSource {
	if lsbPerG <= 0 {
		lsbPerG = DefaultAccelLSBPerG
	}
	return &imuSource{imu: r, lsbPerG: lsbPerG}
}

// Next reads the three accelerometer axes and scales raw counts to g.
func (s *imuSource) Next() (Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	return Sample{
		X: float64(ax) / s.lsbPerG,
		Y: float64(ay) / s.lsbPerG,
		Z: float64(az) / s.lsbPerG,
	}, nil
}
