// Package imaging decodes image files and scales them to fit a viewport
// without distorting the aspect ratio.
package imaging

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rinomina/facile/internal/core/domain"
)

// Extract decodes the image and downscales it to the viewport. Images
// already inside the viewport are left at their native size.
func Extract(path string, viewport domain.Viewport) domain.ExtractionResult {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FailureResult(domain.ErrNotFound, fmt.Sprintf("cannot stat %s: %v", path, err))
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.FailureResult(domain.ErrNotFound, fmt.Sprintf("cannot open %s: %v", path, err))
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return domain.FailureResult(domain.ErrDecodeFailure, fmt.Sprintf("cannot decode image (%v)", err))
	}

	scaled := FitViewport(img, viewport.OrDefault())
	header := fmt.Sprintf("%s · %s", domain.FileHeader(path, info.Size()), format)
	return domain.RenderedResult(header, scaled)
}

// FitViewport downscales img so it fits the viewport, preserving the
// aspect ratio exactly. It never upscales.
func FitViewport(img image.Image, viewport domain.Viewport) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return img
	}

	scale := min(
		float64(viewport.Width)/float64(w),
		float64(viewport.Height)/float64(h),
		1.0,
	)
	if scale >= 1.0 {
		return img
	}

	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
