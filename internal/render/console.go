// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/relabs-tech/shake_dice/internal/game"
)

const barWidth = 24

// Console prints a flat text card each time a roll starts or resolves.
type Console struct {
	w    io.Writer
	last *changeKey
}

// NewConsole prints cards to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Render(f game.Frame) error {
	k := keyOf(f)
	if c.last != nil && *c.last == k {
		return nil
	}
	c.last = &k

	_, err := io.WriteString(c.w, Card(f))
	return err
}

// Card formats a frame as the text card:
//
//	[DICE] You rolled 4  [################--------]  X= 0.02 Y=-0.01 Z= 0.98
func Card(f game.Frame) string {
	bar := strings.Repeat("-", barWidth)
	if !f.Rolling && f.Rolls > 0 {
		filled := int(f.Face) * barWidth / 6
		bar = strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	}
	return fmt.Sprintf("[DICE] %-34s [%s]  X=%5.2f Y=%5.2f Z=%5.2f\n",
		f.Status(), bar, f.Motion.X, f.Motion.Y, f.Motion.Z)
}
