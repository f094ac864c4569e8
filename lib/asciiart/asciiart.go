// Package asciiart maps luminance of an image onto a grid of characters.
package asciiart

import (
	"image"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"

	"minitools/lib/apperr"
)

// DefaultRamp goes from darkest to lightest.
const DefaultRamp = "Hesam "

// DefaultCharAspect compensates for monospace glyphs being taller than wide.
const DefaultCharAspect = 0.55

// output grid limits; zero in Options means these
const (
	DefaultMaxWidth = 4096
	DefaultMaxCells = 1 << 22
)

type Options struct {
	Ramp       string
	CharAspect float64
	Filter     imaging.ResampleFilter
	MaxWidth   int // characters per line
	MaxCells   int // width * rows
}

var DefaultOptions = Options{
	Ramp:       DefaultRamp,
	CharAspect: DefaultCharAspect,
	Filter:     imaging.Lanczos,
	MaxWidth:   DefaultMaxWidth,
	MaxCells:   DefaultMaxCells,
}

// Grid is immutable conversion result.
type Grid struct {
	Width  int
	Height int
	Lines  []string
}

// String returns text block with line break after every line.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.Width + 1) * g.Height)
	for _, l := range g.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Rows computes how many character rows width w produces for w0 x h0 image.
// Result saturates at math.MaxInt32.
func (o Options) Rows(w0, h0, w int) int {
	f := math.Round(float64(w) * (float64(h0) / float64(w0)) * o.CharAspect)
	if !(f < math.MaxInt32) {
		if math.IsNaN(f) {
			return 0
		}
		return math.MaxInt32
	}
	return int(f)
}

// WidthLimit returns effective maximum line width.
func (o Options) WidthLimit() int {
	if o.MaxWidth > 0 {
		return o.MaxWidth
	}
	return DefaultMaxWidth
}

func (o Options) cellLimit() int64 {
	if o.MaxCells > 0 {
		return int64(o.MaxCells)
	}
	return DefaultMaxCells
}

func (o Options) validate(width int) ([]rune, error) {
	if width <= 0 {
		return nil, apperr.New(apperr.InvalidInput, "convert", "width must be positive, got %d", width)
	}
	if width > o.WidthLimit() {
		return nil, apperr.New(apperr.InvalidInput, "convert", "width %d exceeds limit %d", width, o.WidthLimit())
	}
	n := utf8.RuneCountInString(o.Ramp)
	if n == 0 || n > 256 {
		return nil, apperr.New(apperr.InvalidInput, "convert", "ramp must have 1..256 characters, got %d", n)
	}
	if !(o.CharAspect > 0) {
		return nil, apperr.New(apperr.InvalidInput, "convert", "char aspect must be positive, got %v", o.CharAspect)
	}
	return []rune(o.Ramp), nil
}

// Convert resamples img to width x Rows(...) samples and maps each sample to a ramp character.
func (o Options) Convert(img image.Image, width int) (*Grid, error) {
	ramp, err := o.validate(width)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.New(apperr.EmptyResult, "convert", "no image")
	}
	sz := img.Bounds().Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return nil, apperr.New(apperr.EmptyResult, "convert", "image has zero area (%dx%d)", sz.X, sz.Y)
	}
	height := o.Rows(sz.X, sz.Y, width)
	if height <= 0 {
		return nil, apperr.New(apperr.EmptyResult, "convert", "%dx%d image yields no rows at width %d", sz.X, sz.Y, width)
	}
	if int64(width)*int64(height) > o.cellLimit() {
		return nil, apperr.New(apperr.InvalidInput, "convert",
			"%dx%d output exceeds limit of %d characters", width, height, o.cellLimit())
	}

	// gray first so resampling works on luminance only
	// R == G == B after this and stays so after resize
	simg := imaging.Resize(imaging.Grayscale(img), width, height, o.Filter)

	div := 256 / len(ramp)
	last := len(ramp) - 1
	lines := make([]string, height)
	row := make([]rune, width)
	for y := 0; y < height; y++ {
		off := y * simg.Stride
		for x := 0; x < width; x++ {
			i := int(simg.Pix[off+x*4]) / div
			if i > last {
				i = last
			}
			row[x] = ramp[i]
		}
		lines[y] = string(row)
	}

	return &Grid{Width: width, Height: height, Lines: lines}, nil
}

// Convert uses DefaultOptions.
func Convert(img image.Image, width int) (*Grid, error) {
	return DefaultOptions.Convert(img, width)
}

// FilterByName maps config names onto resample filters.
func FilterByName(name string) (imaging.ResampleFilter, bool) {
	switch strings.ToLower(name) {
	case "", "lanczos":
		return imaging.Lanczos, true
	case "catmullrom":
		return imaging.CatmullRom, true
	case "mitchellnetravali":
		return imaging.MitchellNetravali, true
	case "linear":
		return imaging.Linear, true
	case "box":
		return imaging.Box, true
	case "nearest", "nearestneighbor":
		return imaging.NearestNeighbor, true
	}
	return imaging.ResampleFilter{}, false
}
