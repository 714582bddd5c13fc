// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package dice holds the die itself: face values, the roll state machine and
// the rotation math that keeps the rendered cube spinning forward.
package dice

import (
	"math"
	"time"
)

// DefaultRollDuration is how long a roll spins before a face is drawn.
const DefaultRollDuration = 500 * time.Millisecond

// RollState is either Resting or Rolling.
type RollState int

const (
	Resting RollState = iota
	Rolling
)

func (s RollState) String() string {
	switch s {
	case Resting:
		return "resting"
	case Rolling:
		return "rolling"
	default:
		return "unknown"
	}
}

// Animator is the roll state machine plus the orientation it drives.
//
// Resting -> Rolling happens on Trigger. Rolling -> Resting happens the first
// time Settle or Update observes that the roll duration has elapsed; that is
// the only point where the face changes.
type Animator struct {
	duration time.Duration
	easeRate float64
	roller   *Roller

	state     RollState
	startedAt time.Time
	face      Face

	current Orientation
	target  Orientation
}

// NewAnimator returns a resting die showing face 1. Non-positive duration or
// ease rate fall back to the defaults.
func NewAnimator(roller *Roller, duration time.Duration, easeRate float64) *Animator {
	if duration <= 0 {
		duration = DefaultRollDuration
	}
	if easeRate <= 0 || math.IsNaN(easeRate) {
		easeRate = DefaultEaseRate
	}
	if roller == nil {
		roller = NewRoller(0)
	}
	return &Animator{
		duration: duration,
		easeRate: easeRate,
		roller:   roller,
		state:    Resting,
		face:     MinFace,
		target:   CanonicalRotation(MinFace),
	}
}

// Trigger starts a roll at now. It returns false, and changes nothing, when a
// roll is already in progress.
func (a *Animator) Trigger(now time.Time) bool {
	if a.state == Rolling {
		return false
	}
	a.state = Rolling
	a.startedAt = now
	return true
}

// Settle finishes the roll if its duration has elapsed at now: it draws a new
// face and aims the target at it on the current lap. It reports whether the
// transition happened.
func (a *Animator) Settle(now time.Time) bool {
	if a.state != Rolling || now.Sub(a.startedAt) < a.duration {
		return false
	}
	a.face = a.roller.Roll()
	a.target = NextTarget(a.face, a.current)
	a.state = Resting
	return true
}

// Update advances one frame of dt seconds ending at now: the die spins while
// rolling and eases toward its target while resting.
func (a *Animator) Update(now time.Time, dt float64) {
	a.Settle(now)

	if a.state == Rolling {
		a.current = Spin(a.current, dt)
		return
	}
	a.current = Ease(a.current, a.target, a.easeRate, dt)
}

// State is Rolling between a trigger and the end of the roll, else Resting.
func (a *Animator) State() RollState { return a.state }

// Rolling is shorthand for State() == Rolling.
func (a *Animator) Rolling() bool { return a.state == Rolling }

// Face returns the last drawn face. ok is false while a roll is in progress,
// since the upcoming face is not known yet.
func (a *Animator) Face() (f Face, ok bool) {
	return a.face, a.state == Resting
}

// Current is the orientation shown this frame.
func (a *Animator) Current() Orientation { return a.current }

// Target is the resting orientation the die eases toward.
func (a *Animator) Target() Orientation { return a.target }

// StartedAt is when the current or most recent roll began.
func (a *Animator) StartedAt() time.Time { return a.startedAt }

// Duration is how long a roll lasts.
func (a *Animator) Duration() time.Duration { return a.duration }
