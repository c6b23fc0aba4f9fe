package media

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"math"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/starford/vitrine/internal/apperr"
)

// Thumbnail defaults.
const (
	DefaultThumbSize = 600
	thumbQuality     = 85
)

// DefaultBackground fills the padding around letterboxed thumbnails.
var DefaultBackground = color.RGBA{R: 245, G: 245, B: 245, A: 255}

// MakeSquareThumbnail writes a size×size JPEG of src to dst. The image is
// downscaled to fit, centered, and composited over bg so transparent pixels
// take the background color.
func MakeSquareThumbnail(src, dst string, size int, bg color.RGBA) error {
	if size <= 0 {
		return fmt.Errorf("media: invalid thumbnail size %d", size)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("media: open %s: %w", src, err)
	}
	img, _, err := image.Decode(in)
	_ = in.Close()
	if err != nil {
		return fmt.Errorf("media: decode %s: %w: %v", src, apperr.ErrDecode, err)
	}

	canvas := SquareCanvas(img, size, bg)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("media: create %s: %w", dst, err)
	}
	if err := jpeg.Encode(out, canvas, &jpeg.Options{Quality: thumbQuality}); err != nil {
		_ = out.Close()
		return fmt.Errorf("media: encode %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("media: close %s: %w", dst, err)
	}
	return nil
}

// SquareCanvas composes img onto an opaque size×size canvas filled with bg.
func SquareCanvas(img image.Image, size int, bg color.RGBA) *image.RGBA {
	bg.A = 255
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), size)
	x := (size - w) / 2
	y := (size - h) / 2
	target := image.Rect(x, y, x+w, y+h)

	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, target, img, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, target, img, b, draw.Over, nil)
	}
	return canvas
}

// fitWithin scales (w, h) down, keeping the aspect ratio, so neither side exceeds size.
// Images that already fit are left alone.
func fitWithin(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}
	if w >= h {
		nh := int(math.Round(float64(h) * float64(size) / float64(w)))
		return size, max(nh, 1)
	}
	nw := int(math.Round(float64(w) * float64(size) / float64(h)))
	return max(nw, 1), size
}
