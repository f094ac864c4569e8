// Package config loads optional TOML configuration shared by executables.
package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"

	"minitools/lib/asciiart"
	"minitools/lib/asciiview"
	"minitools/lib/bookfinder"
	"minitools/lib/filelogger"
	"minitools/lib/hashtools"
	"minitools/lib/imgload"
	"minitools/lib/logx"
)

type LogCfg struct {
	Level string `toml:"level"`
	Color string `toml:"color"` // auto, on, off
}

type ArtCfg struct {
	Ramp       string  `toml:"ramp"`
	CharAspect float64 `toml:"char_aspect"`
	Filter     string  `toml:"filter"`
	Width      int     `toml:"width"`
	MaxWidth   int     `toml:"max_width"`
	MaxCells   int     `toml:"max_cells"`
}

type ImageCfg struct {
	MaxWidth    int      `toml:"max_width"`
	MaxHeight   int      `toml:"max_height"`
	MaxPixels   int      `toml:"max_pixels"`
	MaxFileSize int64    `toml:"max_file_size"`
	Patterns    []string `toml:"patterns"`
}

type BooksCfg struct {
	BaseURL   string   `toml:"base_url"`
	Proxy     string   `toml:"proxy"`
	Timeout   duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
}

type SaveCfg struct {
	Hash string   `toml:"hash"`
	Mode fileMode `toml:"mode"`
}

type Config struct {
	Log   LogCfg   `toml:"log"`
	Art   ArtCfg   `toml:"art"`
	Image ImageCfg `toml:"image"`
	Books BooksCfg `toml:"books"`
	Save  SaveCfg  `toml:"save"`
}

// duration accepts "30s" style strings
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

// fileMode is octal, "0644" or 644
type fileMode uint32

func (m *fileMode) UnmarshalText(text []byte) error {
	u, err := strconv.ParseUint(string(text), 8, 32)
	if err != nil {
		return xerrors.Errorf("bad file mode %q: %w", text, err)
	}
	if u&^uint64(os.ModePerm) != 0 {
		return xerrors.Errorf("file mode %q has bits beyond permissions", text)
	}
	*m = fileMode(u)
	return nil
}

var DefaultConfig = Config{
	Log: LogCfg{
		Level: "warn",
		Color: "auto",
	},
	Art: ArtCfg{
		Ramp:       asciiart.DefaultRamp,
		CharAspect: asciiart.DefaultCharAspect,
		Filter:     "lanczos",
		Width:      80,
		MaxWidth:   asciiart.DefaultMaxWidth,
		MaxCells:   asciiart.DefaultMaxCells,
	},
	Image: ImageCfg{
		MaxWidth:    imgload.DefaultConfig.MaxWidth,
		MaxHeight:   imgload.DefaultConfig.MaxHeight,
		MaxPixels:   imgload.DefaultConfig.MaxPixels,
		MaxFileSize: imgload.DefaultConfig.MaxFileSize,
		Patterns:    imgload.DefaultConfig.Patterns,
	},
	Books: BooksCfg{
		BaseURL:   bookfinder.DefaultConfig.BaseURL,
		UserAgent: bookfinder.DefaultConfig.UserAgent,
	},
	Save: SaveCfg{
		Hash: "blake3",
		Mode: 0644,
	},
}

// Parse decodes TOML text on top of defaults. Unknown keys are errors.
func Parse(text string) (c Config, err error) {
	c = DefaultConfig
	c.Image.Patterns = nil // replaced, not merged

	md, err := toml.Decode(text, &c)
	if err != nil {
		return
	}
	if und := md.Undecoded(); len(und) != 0 {
		keys := make([]string, len(und))
		for i := range und {
			keys[i] = und[i].String()
		}
		sort.Strings(keys)
		err = xerrors.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		return
	}
	if !md.IsDefined("image", "patterns") {
		c.Image.Patterns = DefaultConfig.Image.Patterns
	}
	err = c.Validate()
	return
}

// Load reads file; empty name gives defaults.
func Load(name string) (Config, error) {
	if name == "" {
		return DefaultConfig, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return Config{}, xerrors.Errorf("failed reading config: %w", err)
	}
	c, err := Parse(string(b))
	if err != nil {
		return Config{}, xerrors.Errorf("config %q: %w", name, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := filelogger.ParseUseColor(c.Log.Color); err != nil {
		return err
	}
	if _, ok := asciiart.FilterByName(c.Art.Filter); !ok {
		return xerrors.Errorf("unknown resample filter %q", c.Art.Filter)
	}
	if n := utf8.RuneCountInString(c.Art.Ramp); n == 0 || n > 256 {
		return xerrors.Errorf("art.ramp must have 1..256 characters, got %d", n)
	}
	if !(c.Art.CharAspect > 0) {
		return xerrors.Errorf("art.char_aspect must be positive, got %v", c.Art.CharAspect)
	}
	if c.Art.MaxWidth <= 0 || c.Art.MaxCells <= 0 {
		return xerrors.Errorf("art.max_width and art.max_cells must be positive")
	}
	if c.Art.Width <= 0 || c.Art.Width > c.Art.MaxWidth {
		return xerrors.Errorf("art.width must be in 1..%d, got %d", c.Art.MaxWidth, c.Art.Width)
	}
	if _, err := hashtools.ParseHashType(c.Save.Hash); err != nil {
		return err
	}
	return nil
}

// The following assume Validate passed.

func (c Config) LogLevel() logx.Level {
	l, _ := logx.ParseLevel(c.Log.Level)
	return l
}

func (c Config) LogColor() filelogger.UseColor {
	u, _ := filelogger.ParseUseColor(c.Log.Color)
	return u
}

func (c Config) ArtOptions() asciiart.Options {
	f, _ := asciiart.FilterByName(c.Art.Filter)
	return asciiart.Options{
		Ramp:       c.Art.Ramp,
		CharAspect: c.Art.CharAspect,
		Filter:     f,
		MaxWidth:   c.Art.MaxWidth,
		MaxCells:   c.Art.MaxCells,
	}
}

func (c Config) ImageConfig() imgload.Config {
	return imgload.Config{
		MaxWidth:    c.Image.MaxWidth,
		MaxHeight:   c.Image.MaxHeight,
		MaxPixels:   c.Image.MaxPixels,
		MaxFileSize: c.Image.MaxFileSize,
		Patterns:    c.Image.Patterns,
	}
}

func (c Config) ViewConfig() asciiview.Config {
	ht, _ := hashtools.ParseHashType(c.Save.Hash)
	return asciiview.Config{
		DefaultWidth: c.Art.Width,
		Art:          c.ArtOptions(),
		HashType:     ht,
		FileMode:     os.FileMode(c.Save.Mode),
	}
}

func (c Config) BookConfig() bookfinder.Config {
	bc := bookfinder.DefaultConfig
	bc.BaseURL = c.Books.BaseURL
	bc.Proxy = c.Books.Proxy
	bc.Timeout = c.Books.Timeout.Duration
	bc.UserAgent = c.Books.UserAgent
	return bc
}
