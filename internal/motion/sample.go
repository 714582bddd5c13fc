// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "math"

// Sample is a single 3-axis accelerometer reading, in g.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sanitize returns a copy of s where any non-finite component is replaced by 0.
func (s Sample) Sanitize() Sample {
	return Sample{X: finite(s.X), Y: finite(s.Y), Z: finite(s.Z)}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Source is anything that can provide samples over time.
type Source interface {
	Next() (Sample, error)
}
