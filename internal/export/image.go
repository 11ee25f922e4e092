// Package export writes height fields and meshes to files for inspection.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/terrainforge/internal/config"
	"github.com/Faultbox/terrainforge/internal/terrain"
)

// Format is an image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
)

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatBMP {
		return ".bmp"
	}
	return ".png"
}

// ParseFormat accepts "png" (or empty) and "bmp".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	}
	return FormatPNG, fmt.Errorf("unknown image format %q", s)
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	if f == FormatBMP {
		return bmp.Encode(w, img)
	}
	return png.Encode(w, img)
}

// Region colours every height up to Height.
type Region struct {
	Name   string
	Height float64
	Color  color.RGBA
}

// RegionsFromConfig parses configured regions. Order is preserved.
func RegionsFromConfig(rs []config.RegionConfig) ([]Region, error) {
	out := make([]Region, 0, len(rs))
	for _, r := range rs {
		c, err := config.ParseColor(r.Color)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Name, err)
		}
		out = append(out, Region{Name: r.Name, Height: r.Height, Color: c})
	}
	return out, nil
}

// regionColor returns the first region covering h, or the last region above all of them.
func regionColor(regions []Region, h float64) color.RGBA {
	for _, r := range regions {
		if h <= r.Height {
			return r.Color
		}
	}
	if len(regions) == 0 {
		v := uint8(clampUnit(h) * 255)
		return color.RGBA{R: v, G: v, B: v, A: 0xff}
	}
	return regions[len(regions)-1].Color
}

// HeightImage maps field values in [0,1] to 16-bit grey. Values outside are clamped.
func HeightImage(field *terrain.HeightField) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, field.Width, field.Height))
	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			v := clampUnit(field.At(x, y))
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 0xffff))})
		}
	}
	return img
}

// ColorImage paints each cell with the colour of its height region.
func ColorImage(field *terrain.HeightField, regions []Region) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, field.Width, field.Height))
	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			img.SetRGBA(x, y, regionColor(regions, field.At(x, y)))
		}
	}
	return img
}

// Upscale enlarges img by an integer factor with nearest-neighbour sampling.
// Factors below 2 return img unchanged.
func Upscale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// WriteHeightPNG writes field as a 16-bit greyscale PNG.
func WriteHeightPNG(w io.Writer, field *terrain.HeightField) error {
	return png.Encode(w, HeightImage(field))
}

// WriteColorPNG writes field as a colour map PNG.
func WriteColorPNG(w io.Writer, field *terrain.HeightField, regions []Region) error {
	return png.Encode(w, ColorImage(field, regions))
}

func clampUnit(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
