// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

// Transducer names a sensor board uses for its accelerometer axes in XDR
// sentences, e.g. $IIXDR,G,0.02,,ACCX,G,-0.01,,ACCY,G,0.99,,ACCZ*hh
const (
	xdrAccelX = "ACCX"
	xdrAccelY = "ACCY"
	xdrAccelZ = "ACCZ"
)

// SerialSource reads accelerometer samples from a sensor board that streams
// NMEA XDR transducer sentences over a serial line.
type SerialSource struct {
	port      io.ReadCloser
	reader    *bufio.Reader
	closeOnce sync.Once
	closeErr  error
}

// NewSerialSource opens the serial port at the given baud rate.
func NewSerialSource(portName string, baud int) (*SerialSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", portName, err)
	}
	log.Printf("motion: serial port opened on %s at %d baud", portName, baud)

	return newSerialSource(port), nil
}

func newSerialSource(r io.ReadCloser) *SerialSource {
	return &SerialSource{port: r, reader: bufio.NewReader(r)}
}

// Next blocks until the next complete accelerometer sentence arrives.
// Non-NMEA lines, unparsable sentences and unrelated sentence types are skipped.
func (s *SerialSource) Next() (Sample, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return Sample{}, fmt.Errorf("serial read: %w", err)
		}

		sample, ok, err := ParseXDR(line)
		if err != nil {
			log.Debugf("motion: NMEA parse error: %v (line: %q)", err, line)
			continue
		}
		if ok {
			return sample, nil
		}
	}
}

// Run streams samples into f until ctx is done or the port fails. The port
// is closed when Run returns. A read error caused by ctx ending is not
// reported.
func (s *SerialSource) Run(ctx context.Context, f *Feed) error {
	done := make(chan struct{})
	defer close(done)
	defer s.Close()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-done:
		}
	}()

	for {
		sample, err := s.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		f.Publish(sample)
	}
}

// Close closes the port. Only the first call reaches the port.
func (s *SerialSource) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.port.Close()
	})
	return s.closeErr
}

// ParseXDR extracts an accelerometer sample from one NMEA line. ok is false
// for blank lines, non-XDR sentences and XDR sentences that do not carry all
// three ACCX/ACCY/ACCZ measurements.
func ParseXDR(line string) (Sample, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return Sample{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Sample{}, false, err
	}
	if sentence.DataType() != nmea.TypeXDR {
		return Sample{}, false, nil
	}
	m := sentence.(nmea.XDR)

	var s Sample
	var seen int
	for _, meas := range m.Measurements {
		switch strings.ToUpper(meas.TransducerName) {
		case xdrAccelX:
			s.X = meas.Value
			seen |= 1
		case xdrAccelY:
			s.Y = meas.Value
			seen |= 2
		case xdrAccelZ:
			s.Z = meas.Value
			seen |= 4
		}
	}
	if seen != 7 {
		return Sample{}, false, nil
	}
	return s, true, nil
}
