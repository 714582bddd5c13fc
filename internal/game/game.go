// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package game wires the shake detector to the roll animator and exposes the
// per-frame state handed to renderers.
package game

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/dice"
	"github.com/relabs-tech/shake_dice/internal/motion"
	"github.com/relabs-tech/shake_dice/internal/shake"
)

// Frame is everything a rendering surface needs for one frame.
type Frame struct {
	Orientation dice.Orientation `json:"orientation"`
	Target      dice.Orientation `json:"target"`
	Face        dice.Face        `json:"face"`    // last resolved face
	Rolling     bool             `json:"rolling"` // face is indeterminate while true
	Motion      motion.Sample    `json:"motion"`
	Magnitude   float64          `json:"magnitude"`
	Rolls       int              `json:"rolls"`
}

// Status is the one-line caption shown under the die.
func (f Frame) Status() string {
	if f.Rolling {
		return "Rolling..."
	}
	if f.Rolls == 0 {
		return "Shake your device to roll the dice"
	}
	return fmt.Sprintf("You rolled %d", f.Face)
}

// Options configures a Game. Zero values fall back to package defaults.
type Options struct {
	Threshold    float64
	RollDuration time.Duration
	EaseRate     float64
	Seed         int64
	Now          func() time.Time
}

// Game owns the only copy of the roll state. It is not safe for concurrent
// use; Loop serializes sensor samples and frames onto one goroutine.
type Game struct {
	detector *shake.Detector
	animator *dice.Animator
	now      func() time.Time

	last  motion.Sample
	rolls int
}

// New returns a Game resting on face 1 with no rolls yet.
func New(opts Options) *Game {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Game{
		detector: shake.NewDetector(opts.Threshold),
		animator: dice.NewAnimator(dice.NewRoller(opts.Seed), opts.RollDuration, opts.EaseRate),
		now:      now,
	}
}

// HandleSample feeds one sensor reading to the detector. It reports whether
// the sample started a roll.
func (g *Game) HandleSample(s motion.Sample) bool {
	s = s.Sanitize()
	g.last = s

	now := g.now()
	g.settle(now)

	if !g.detector.Trigger(s, g.animator.Rolling()) {
		return false
	}
	g.animator.Trigger(now)
	log.Debugf("game: shake %.2f g started a roll", shake.Magnitude(s))
	return true
}

// Tick advances the animation by dt seconds and returns the resulting frame.
func (g *Game) Tick(dt float64) Frame {
	now := g.now()
	g.settle(now)
	g.animator.Update(now, dt)
	return g.Frame()
}

func (g *Game) settle(now time.Time) {
	if g.animator.Settle(now) {
		g.rolls++
		f, _ := g.animator.Face()
		log.Printf("game: rolled %d", f)
	}
}

// Frame reports the current state without advancing it.
func (g *Game) Frame() Frame {
	f, _ := g.animator.Face()
	return Frame{
		Orientation: g.animator.Current(),
		Target:      g.animator.Target(),
		Face:        f,
		Rolling:     g.animator.Rolling(),
		Motion:      g.last,
		Magnitude:   shake.Magnitude(g.last),
		Rolls:       g.rolls,
	}
}

// State reports whether a roll is in progress.
func (g *Game) State() dice.RollState { return g.animator.State() }
