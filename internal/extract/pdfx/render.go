package pdfx

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const noPageTextLabel = "(no embedded text on this page)"

// renderTextPage paints the page's embedded text onto a white canvas sized
// pageW×pageH at the given zoom. There is no pure-Go rasterizer for full
// PDF content; the text layer is what the preview can show faithfully.
func renderTextPage(text string, pageW, pageH, zoom float64) image.Image {
	w := int(pageW * zoom)
	h := int(pageH * zoom)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if strings.TrimSpace(text) == "" {
		text = noPageTextLabel
	}

	face := basicfont.Face7x13
	const margin = 12
	lineHeight := face.Height + 3
	maxCols := (w - 2*margin) / face.Advance
	if maxCols < 8 {
		maxCols = 8
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	y := margin + face.Ascent
	for _, line := range wrapLines(text, maxCols) {
		if y > h-margin {
			break
		}
		drawer.Dot = fixed.P(margin, y)
		drawer.DrawString(line)
		y += lineHeight
	}
	return canvas
}

func wrapLines(text string, maxCols int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > maxCols {
			out = append(out, string(runes[:maxCols]))
			runes = runes[maxCols:]
		}
		out = append(out, string(runes))
	}
	return out
}
