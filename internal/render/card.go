// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/shake_dice/internal/dice"
	"github.com/relabs-tech/shake_dice/internal/game"
)

// 128x64 card: the die face on the left square, text on the right.
const (
	cardW = 128
	cardH = 64

	faceSize  = 64
	faceInset = 2
	pipSpread = 48 // pixels per unit of pip coordinate
	pipRadius = 4
	textX     = 68
	barX      = 68
	barY      = 52
	barW      = 56
	barH      = 6
)

// DrawCard renders f into a fresh 1-bit image.
func DrawCard(f game.Frame) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, cardW, cardH))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawBox(img, faceInset, faceInset, faceSize-faceInset-1, faceSize-faceInset-1)

	switch {
	case f.Rolling:
		drawer.Dot = fixed.P(faceSize/2-3, faceSize/2+5)
		drawer.DrawString("?")
		drawer.Dot = fixed.P(textX, 26)
		drawer.DrawString("Rolling")
		drawer.Dot = fixed.P(textX, 39)
		drawer.DrawString("...")

	case f.Rolls == 0:
		drawPips(img, f.Face)
		drawer.Dot = fixed.P(textX, 26)
		drawer.DrawString("Shake to")
		drawer.Dot = fixed.P(textX, 39)
		drawer.DrawString("roll")

	default:
		drawPips(img, f.Face)
		drawer.Dot = fixed.P(textX, 13)
		drawer.DrawString("You")
		drawer.Dot = fixed.P(textX, 26)
		drawer.DrawString("rolled")
		drawer.Dot = fixed.P(textX, 42)
		drawer.DrawString(fmt.Sprintf("  %d", f.Face))

		drawBox(img, barX, barY, barX+barW-1, barY+barH-1)
		fill := int(f.Face) * (barW - 2) / 6
		fillRect(img, barX+1, barY+1, barX+fill, barY+barH-2)
	}

	return img
}

func drawPips(img *image1bit.VerticalLSB, f dice.Face) {
	cx, cy := faceSize/2, faceSize/2
	for _, p := range dice.Pips(f) {
		px := cx + int(p.X*pipSpread)
		py := cy - int(p.Y*pipSpread)
		fillCircle(img, px, py, pipRadius)
	}
}

func drawBox(img *image1bit.VerticalLSB, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		img.SetBit(x, y0, image1bit.On)
		img.SetBit(x, y1, image1bit.On)
	}
	for y := y0; y <= y1; y++ {
		img.SetBit(x0, y, image1bit.On)
		img.SetBit(x1, y, image1bit.On)
	}
}

func fillRect(img *image1bit.VerticalLSB, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			img.SetBit(x, y, image1bit.On)
		}
	}
}

func fillCircle(img *image1bit.VerticalLSB, cx, cy, r int) {
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if dx*dx+dy*dy <= r*r {
				img.SetBit(cx+dx, cy+dy, image1bit.On)
			}
		}
	}
}
