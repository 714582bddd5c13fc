// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dice

import (
	"math"
	"math/rand"
	"time"
)

// Face is the value shown by the die, 1 through 6.
type Face int

const (
	MinFace Face = 1
	MaxFace Face = 6
)

// Valid reports whether f is a real die face.
func (f Face) Valid() bool {
	return f >= MinFace && f <= MaxFace
}

// Roller draws faces uniformly from {1..6}. It is not safe for concurrent use.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a Roller seeded with seed. A zero seed uses the current
// time, so production rolls differ between runs while tests can pin a seed.
func NewRoller(seed int64) *Roller {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll draws the next face.
func (r *Roller) Roll() Face {
	return Face(r.rng.Intn(int(MaxFace)) + 1)
}

// Pip is the center of one dot on a face, in a unit square centered on the
// face (x right, y up, both in [-0.5, 0.5]).
type Pip struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var pipLayouts = map[Face][]Pip{
	1: {{0, 0}},
	2: {{-0.25, 0.25}, {0.25, -0.25}},
	3: {{-0.25, 0.25}, {0, 0}, {0.25, -0.25}},
	4: {{-0.25, 0.25}, {0.25, 0.25}, {-0.25, -0.25}, {0.25, -0.25}},
	5: {{-0.25, 0.25}, {0.25, 0.25}, {0, 0}, {-0.25, -0.25}, {0.25, -0.25}},
	6: {{-0.25, 0.25}, {0.25, 0.25}, {-0.25, 0}, {0.25, 0}, {-0.25, -0.25}, {0.25, -0.25}},
}

// Pips returns the dot layout for f, or nil for an invalid face.
func Pips(f Face) []Pip {
	layout, ok := pipLayouts[f]
	if !ok {
		return nil
	}
	out := make([]Pip, len(layout))
	copy(out, layout)
	return out
}

// FacePlacement is the rotation that carries a set of pips drawn on the front
// face (Z+) onto the cube side where face f lives:
// 1 front, 2 right, 3 top, 4 bottom, 5 left, 6 back.
func FacePlacement(f Face) Orientation {
	switch f {
	case 2:
		return Orientation{Y: math.Pi / 2}
	case 3:
		return Orientation{X: -math.Pi / 2}
	case 4:
		return Orientation{X: math.Pi / 2}
	case 5:
		return Orientation{Y: -math.Pi / 2}
	case 6:
		return Orientation{Y: math.Pi}
	default:
		return Orientation{}
	}
}
