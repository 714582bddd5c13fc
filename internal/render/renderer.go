// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package render holds the surfaces that draw the die: a text card, a 1-bit
// OLED card, a websocket feed for a browser-side 3D cube and an MQTT state
// publisher. All of them consume the same game.Frame.
package render

import (
	"errors"

	"github.com/relabs-tech/shake_dice/internal/game"
)

// Multi fans one frame out to several renderers. Every renderer sees every
// frame even if an earlier one fails.
type Multi []game.Renderer

func (m Multi) Render(f game.Frame) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// changeKey identifies the moments a text-like surface needs to redraw:
// a roll starting and a roll resolving.
type changeKey struct {
	rolling bool
	rolls   int
}

func keyOf(f game.Frame) changeKey {
	return changeKey{rolling: f.Rolling, rolls: f.Rolls}
}
