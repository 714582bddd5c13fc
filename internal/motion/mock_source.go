// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"
	"time"
)

// Default cadence of the mock shake bursts.
const (
	mockShakePeriod = 4 * time.Second
	mockShakeLength = 300 * time.Millisecond
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock source that reports a device lying flat
// (about 1 g on Z with a little wobble) and shakes it hard for a short burst
// every few seconds.
func NewMockSource() Source {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.now().Sub(m.start)
	t := elapsed.Seconds()

	s := Sample{
		X: 0.05 * math.Sin(t*1.3),
		Y: 0.05 * math.Cos(t*0.9),
		Z: 1.0,
	}

	if elapsed%mockShakePeriod < mockShakeLength {
		s.X += 1.5 * math.Sin(t*40)
		s.Y += 1.5 * math.Cos(t*35)
		s.Z += 1.2
	}
	return s, nil
}
