// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package game

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/motion"
)

// sampleBacklog bounds how many unprocessed samples the loop keeps. When it
// is full new samples are dropped; the next one will carry the same shake.
const sampleBacklog = 64

// Renderer is a surface that draws one frame of the die.
type Renderer interface {
	Render(Frame) error
}

// Loop drives a Game from a motion provider and a frame clock on a single
// goroutine.
type Loop struct {
	Game          *Game
	Provider      motion.Provider
	Renderer      Renderer
	FrameInterval time.Duration
}

// Run subscribes to the provider and renders one frame every FrameInterval
// until ctx is done. The subscription is released on return.
func (l *Loop) Run(ctx context.Context) error {
	samples := make(chan motion.Sample, sampleBacklog)
	handle := l.Provider.Subscribe(func(s motion.Sample) {
		select {
		case samples <- s:
		default:
		}
	})
	defer l.Provider.Unsubscribe(handle)

	interval := l.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil

		case s := <-samples:
			l.Game.HandleSample(s)

		case t := <-ticker.C:
			dt := t.Sub(last).Seconds()
			last = t

			frame := l.Game.Tick(dt)
			if err := l.Renderer.Render(frame); err != nil {
				log.Printf("game: render error: %v", err)
			}
		}
	}
}
