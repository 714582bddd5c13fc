// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package shake turns a stream of accelerometer samples into roll triggers.
package shake

import (
	"math"

	"github.com/relabs-tech/shake_dice/internal/motion"
)

// DefaultThreshold is the summed absolute acceleration, in g, above which a
// sample counts as a shake.
const DefaultThreshold = 2.5

// Detector compares each sample's magnitude against a fixed threshold.
// It keeps no history; debouncing is done by the caller's roll state.
type Detector struct {
	Threshold float64
}

// NewDetector returns a Detector for threshold, or DefaultThreshold when it
// is not a positive number.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	return &Detector{Threshold: threshold}
}

// Magnitude returns |x| + |y| + |z|. Non-finite components contribute 0.
func Magnitude(s motion.Sample) float64 {
	s = s.Sanitize()
	return math.Abs(s.X) + math.Abs(s.Y) + math.Abs(s.Z)
}

// Exceeds reports whether s is strong enough to be a shake.
func (d *Detector) Exceeds(s motion.Sample) bool {
	return Magnitude(s) > d.Threshold
}

// Trigger reports whether s should start a roll: the sample must exceed the
// threshold and no roll may be in progress.
func (d *Detector) Trigger(s motion.Sample, rolling bool) bool {
	return !rolling && d.Exceeds(s)
}
