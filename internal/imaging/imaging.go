package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PlaceholderColor fills rows whose icon has not arrived yet
var PlaceholderColor = color.NRGBA{R: 0xd8, G: 0xd8, B: 0xdc, A: 0xff}

// Decode reads an image in any registered format and returns it together
// with the format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeBytes is Decode over an in-memory buffer
func DecodeBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("failed to decode image: empty data")
	}
	return Decode(bytes.NewReader(data))
}

// Fit returns img scaled to size x size. Non-square images are center
// cropped to a square first. An image already at the target size is
// returned unchanged.
func Fit(img image.Image, size int) image.Image {
	if img == nil || size <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	cropped := cropSquare(img)
	return resize.Resize(uint(size), uint(size), cropped, resize.Lanczos3)
}

// cropSquare cuts the largest centered square out of img
func cropSquare(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return img
	}
	side := min(w, h)
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	rect := image.Rect(x0, y0, x0+side, y0+side)

	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Copy(dst, image.Point{}, img, rect, draw.Src, nil)
	return dst
}

// Placeholder returns a flat size x size tile
func Placeholder(size int) image.Image {
	if size <= 0 {
		size = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: PlaceholderColor}, image.Point{}, draw.Src)
	return img
}
