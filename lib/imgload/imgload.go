// Package imgload reads raster images from disk and turns them into
// single-channel grayscale pixel grids.
package imgload

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gobwas/glob"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"minitools/lib/apperr"
	. "minitools/lib/logx"
)

type Config struct {
	MaxWidth, MaxHeight int
	MaxPixels           int
	MaxFileSize         int64
	// file name patterns, matched against lowercased base name
	Patterns []string
}

var DefaultConfig = Config{
	MaxWidth:    16384,
	MaxHeight:   16384,
	MaxPixels:   8192 * 8192,
	MaxFileSize: 128 * 1024 * 1024,
	Patterns:    []string{"*.{png,jpg,jpeg,bmp,gif,webp}"},
}

type Loader struct {
	cfg      Config
	patterns []glob.Glob
	log      Logger
}

func (c Config) BuildLoader(lx LoggerX) (*Loader, error) {
	l := &Loader{cfg: c, log: NewLogToX(lx, "imgload")}
	for _, p := range c.Patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, apperr.New(apperr.InvalidInput, "imgload", "bad pattern %q: %w", p, err)
		}
		l.patterns = append(l.patterns, g)
	}
	return l, nil
}

// Accepts tells whether file name looks like supported image.
// Empty pattern list accepts everything.
func (l *Loader) Accepts(path string) bool {
	if len(l.patterns) == 0 {
		return true
	}
	name := strings.ToLower(filepath.Base(path))
	for _, g := range l.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Load opens, validates and decodes image at path.
func (l *Loader) Load(path string) (*image.Gray, error) {
	if path == "" {
		return nil, apperr.New(apperr.InvalidInput, "load", "no image selected")
	}
	if !l.Accepts(path) {
		return nil, apperr.New(apperr.InvalidInput, "load", "unsupported file name %q", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.InvalidInput, "load", err)
		}
		return nil, apperr.Wrap(apperr.DecodeError, "load", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, apperr.Wrap(apperr.DecodeError, "load", err)
	}
	if !st.Mode().IsRegular() {
		return nil, apperr.New(apperr.InvalidInput, "load", "%q is not regular file", path)
	}
	if l.cfg.MaxFileSize > 0 && st.Size() > l.cfg.MaxFileSize {
		return nil, apperr.New(apperr.InvalidInput, "load",
			"file size %d exceeds limit %d", st.Size(), l.cfg.MaxFileSize)
	}

	l.log.LogPrintf(DEBUG, "loading %q", path)
	return l.Decode(f)
}

// Decode decodes image from r, which must be positioned at start.
func (l *Loader) Decode(r io.ReadSeeker) (*image.Gray, error) {
	imgcfg, cfgfmt, err := image.DecodeConfig(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.DecodeError, "decode", err)
	}
	switch cfgfmt {
	case "jpeg", "png", "gif", "webp", "bmp":
		l.log.LogPrintf(DEBUG, "detected format %q %dx%d", cfgfmt, imgcfg.Width, imgcfg.Height)
	default:
		return nil, apperr.New(apperr.DecodeError, "decode", "unsupported format %q", cfgfmt)
	}

	if imgcfg.Width <= 0 || imgcfg.Height <= 0 {
		return nil, apperr.New(apperr.EmptyResult, "decode", "image has zero area")
	}
	if (l.cfg.MaxWidth > 0 && imgcfg.Width > l.cfg.MaxWidth) ||
		(l.cfg.MaxHeight > 0 && imgcfg.Height > l.cfg.MaxHeight) ||
		(l.cfg.MaxPixels > 0 && imgcfg.Width*imgcfg.Height > l.cfg.MaxPixels) {

		return nil, apperr.New(apperr.InvalidInput, "decode",
			"%dx%d image exceeds configured limits", imgcfg.Width, imgcfg.Height)
	}

	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return nil, apperr.Wrap(apperr.DecodeError, "decode", err)
	}
	orient := 1
	if cfgfmt == "jpeg" {
		orient = exifOrient(r)
		if _, err = r.Seek(0, io.SeekStart); err != nil {
			return nil, apperr.Wrap(apperr.DecodeError, "decode", err)
		}
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.DecodeError, "decode", err)
	}

	g := toGray(rotate(orient, imaging.Grayscale(img)))
	if g.Rect.Empty() {
		return nil, apperr.New(apperr.EmptyResult, "decode", "image has zero area")
	}
	l.log.LogPrintf(DEBUG, "decoded %dx%d (orientation %d)", g.Rect.Dx(), g.Rect.Dy(), orient)
	return g, nil
}

// toGray takes channel R of gray NRGBA image
func toGray(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		so := y * src.Stride
		do := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[do+x] = src.Pix[so+x*4]
		}
	}
	return dst
}
