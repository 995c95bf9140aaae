package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rinomina/facile/internal/core/domain"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestExtractPreservesAspectRatio(t *testing.T) {
	path := writeTestPNG(t, 1600, 1000)

	result := Extract(path, domain.Viewport{Width: 400, Height: 400})
	if result.Failed() {
		t.Fatalf("Extract() failed: %s", result.Body)
	}
	if result.Kind != domain.ResultRendered {
		t.Fatalf("Extract() kind = %q, want rendered", result.Kind)
	}

	bounds := result.Image.Bounds()
	gotRatio := float64(bounds.Dx()) / float64(bounds.Dy())
	wantRatio := 1600.0 / 1000.0
	if math.Abs(gotRatio-wantRatio) > 0.02 {
		t.Errorf("aspect ratio = %.4f, want %.4f within tolerance", gotRatio, wantRatio)
	}
	if bounds.Dx() > 400 || bounds.Dy() > 400 {
		t.Errorf("scaled size %dx%d exceeds viewport", bounds.Dx(), bounds.Dy())
	}
}

func TestExtractNeverUpscales(t *testing.T) {
	path := writeTestPNG(t, 120, 80)

	result := Extract(path, domain.Viewport{Width: 800, Height: 800})
	if result.Failed() {
		t.Fatalf("Extract() failed: %s", result.Body)
	}
	bounds := result.Image.Bounds()
	if bounds.Dx() != 120 || bounds.Dy() != 80 {
		t.Errorf("small image resized to %dx%d, want native 120x80", bounds.Dx(), bounds.Dy())
	}
}

func TestExtractCorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not a png at all"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := Extract(path, domain.Viewport{})
	if !result.Failed() {
		t.Fatal("expected failure result for corrupt image")
	}
	if !domain.IsKind(result.Failure, domain.ErrDecodeFailure) {
		t.Errorf("failure kind = %v, want ErrDecodeFailure", result.Failure)
	}
}

func TestExtractMissingImage(t *testing.T) {
	result := Extract(filepath.Join(t.TempDir(), "missing.png"), domain.Viewport{})
	if !domain.IsKind(result.Failure, domain.ErrNotFound) {
		t.Errorf("failure kind = %v, want ErrNotFound", result.Failure)
	}
}
