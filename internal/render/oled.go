// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/shake_dice/internal/game"
)

// panel is the part of an ssd1306.Dev the renderer draws through.
type panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// OLED draws the flat card on an SSD1306 panel. The panel is only redrawn
// when a roll starts or resolves; I²C is too slow to push every frame.
type OLED struct {
	dev  panel
	bus  i2c.BusCloser
	last *changeKey
}

// NewOLED opens the default I²C bus and the SSD1306 panel on it.
func NewOLED() (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	return &OLED{dev: dev, bus: bus}, nil
}

func (o *OLED) Render(f game.Frame) error {
	k := keyOf(f)
	if o.last != nil && *o.last == k {
		return nil
	}

	img := DrawCard(f)
	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("display: draw: %w", err)
	}
	o.last = &k
	return nil
}

func (o *OLED) Close() error {
	if o.bus == nil {
		return nil
	}
	return o.bus.Close()
}
