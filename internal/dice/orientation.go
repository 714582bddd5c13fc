// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dice

import "math"

// TwoPi is one full lap.
const TwoPi = 2 * math.Pi

// Orientation is an accumulated Euler rotation of the die, in radians.
// Angles are never wrapped: a value of 7.1 on X means one full lap plus 0.82.
type Orientation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SpinRate is the per-axis angular speed, in rad/s, while the die is rolling.
var SpinRate = Orientation{X: 15, Y: 10, Z: 5}

// DefaultEaseRate is the k in current += (target - current) * k * dt.
const DefaultEaseRate = 6.0

// faceRotations brings each face in front of a viewer looking down -Z.
var faceRotations = map[Face]Orientation{
	1: {},
	2: {Y: -math.Pi / 2},
	3: {X: math.Pi / 2},
	4: {X: -math.Pi / 2},
	5: {Y: math.Pi / 2},
	6: {X: math.Pi},
}

// CanonicalRotation returns the rotation presenting f to the viewer, with
// every axis reduced into [0, 2π). Unknown faces map to face 1.
func CanonicalRotation(f Face) Orientation {
	r := faceRotations[f]
	return Orientation{X: wrap(r.X), Y: wrap(r.Y), Z: wrap(r.Z)}
}

func wrap(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

// LapTarget places canonical (in [0, 2π)) on the same lap as current:
// canonical + floor(current/2π)·2π. When that lands behind current the next
// lap is used instead, so the result is always in [current, current+2π).
func LapTarget(canonical, current float64) float64 {
	lap := math.Floor(current/TwoPi) * TwoPi
	target := canonical + lap
	if target < current {
		target += TwoPi
	}
	return target
}

// NextTarget returns the accumulated orientation that shows f and never
// requires spinning backward from current.
func NextTarget(f Face, current Orientation) Orientation {
	c := CanonicalRotation(f)
	return Orientation{
		X: LapTarget(c.X, current.X),
		Y: LapTarget(c.Y, current.Y),
		Z: LapTarget(c.Z, current.Z),
	}
}

// Spin advances o by SpinRate over dt seconds.
func Spin(o Orientation, dt float64) Orientation {
	return Orientation{
		X: o.X + SpinRate.X*dt,
		Y: o.Y + SpinRate.Y*dt,
		Z: o.Z + SpinRate.Z*dt,
	}
}

// Ease moves current toward target by one exponential-decay step. k*dt is
// capped at 1 so a long frame lands on target instead of overshooting.
func Ease(current, target Orientation, k, dt float64) Orientation {
	step := k * dt
	if step <= 0 {
		return current
	}
	if step > 1 {
		step = 1
	}
	return Orientation{
		X: current.X + (target.X-current.X)*step,
		Y: current.Y + (target.Y-current.Y)*step,
		Z: current.Z + (target.Z-current.Z)*step,
	}
}

// Converged reports whether a and b are within eps on every axis.
func Converged(a, b Orientation, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Z-b.Z) <= eps
}
