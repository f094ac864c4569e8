// Package asciiview keeps state of interactive ASCII art generator.
//
// View methods are meant to be called from single goroutine owning the view
// (the UI loop). Conversion runs on background goroutine which never touches
// State; it only posts messages which the UI loop applies via Apply or Pump.
package asciiview

import (
	"context"
	"errors"
	"image"
	"os"
	"strconv"
	"strings"

	"minitools/lib/apperr"
	"minitools/lib/asciiart"
	"minitools/lib/fileutil"
	"minitools/lib/hashtools"
	. "minitools/lib/logx"
)

const (
	ProgressRunning = "Generating..."
	ProgressDone    = "Generation Complete!"
)

// ErrBusy is returned by Generate while previous run is in flight.
var ErrBusy = errors.New("generation already in progress")

type Loader interface {
	Load(path string) (*image.Gray, error)
}

type Config struct {
	DefaultWidth int
	Art          asciiart.Options
	HashType     hashtools.HashType
	FileMode     os.FileMode
}

var DefaultConfig = Config{
	DefaultWidth: 80,
	Art:          asciiart.DefaultOptions,
	HashType:     hashtools.BLAKE3_224,
	FileMode:     0644,
}

type State struct {
	ImagePath string
	WidthText string
	Output    string
	Progress  string
	Busy      bool
	Err       error // last generation failure
}

type MsgKind int

const (
	MsgDone MsgKind = iota
	MsgError
	MsgReset
)

type Msg struct {
	Kind MsgKind
	Grid *asciiart.Grid
	Err  error
}

type View struct {
	cfg    Config
	loader Loader
	st     State
	msgs   chan Msg
	log    Logger
}

func New(cfg Config, loader Loader, lx LoggerX) *View {
	return &View{
		cfg:    cfg,
		loader: loader,
		st:     State{WidthText: strconv.Itoa(cfg.DefaultWidth)},
		// one run at a time posts at most two messages
		msgs: make(chan Msg, 2),
		log:  NewLogToX(lx, "asciiview"),
	}
}

func (v *View) State() State { return v.st }

func (v *View) SetImagePath(p string) { v.st.ImagePath = strings.TrimSpace(p) }

func (v *View) SetWidth(s string) { v.st.WidthText = strings.TrimSpace(s) }

// Messages is for select loops; received messages must be passed to Apply.
func (v *View) Messages() <-chan Msg { return v.msgs }

func (v *View) width() (int, error) {
	w, err := strconv.Atoi(v.st.WidthText)
	if err != nil || w <= 0 {
		return 0, apperr.New(apperr.InvalidInput, "generate", "please enter a valid width")
	}
	if lim := v.cfg.Art.WidthLimit(); w > lim {
		return 0, apperr.New(apperr.InvalidInput, "generate", "please enter a valid width (at most %d)", lim)
	}
	return w, nil
}

// Generate validates inputs and starts conversion in background.
func (v *View) Generate() error {
	if v.st.Busy {
		return ErrBusy
	}
	w, err := v.width()
	if err != nil {
		return err
	}
	path := v.st.ImagePath
	if path == "" {
		return apperr.New(apperr.InvalidInput, "generate", "please select a valid image")
	}
	if _, err = os.Stat(path); err != nil {
		return apperr.New(apperr.InvalidInput, "generate", "please select a valid image: %w", err)
	}

	v.st.Output = ""
	v.st.Err = nil
	v.st.Progress = ProgressRunning
	v.st.Busy = true
	v.log.LogPrintf(INFO, "generating %q at width %d", path, w)

	go v.work(path, w)
	return nil
}

func (v *View) work(path string, w int) {
	defer func() { v.msgs <- Msg{Kind: MsgReset} }()

	img, err := v.loader.Load(path)
	if err != nil {
		v.msgs <- Msg{Kind: MsgError, Err: err}
		return
	}
	g, err := v.cfg.Art.Convert(img, w)
	if err != nil {
		v.msgs <- Msg{Kind: MsgError, Err: err}
		return
	}
	v.msgs <- Msg{Kind: MsgDone, Grid: g}
}

// Apply updates state according to message posted by worker.
func (v *View) Apply(m Msg) {
	switch m.Kind {
	case MsgDone:
		v.st.Output = m.Grid.String()
		v.st.Progress = ProgressDone
		v.log.LogPrintf(INFO, "generated %dx%d", m.Grid.Width, m.Grid.Height)
	case MsgError:
		v.st.Err = m.Err
		v.st.Progress = ""
		v.log.LogPrintf(WARN, "generation failed: %v", m.Err)
	case MsgReset:
		v.st.Busy = false
		if v.st.Progress != ProgressDone {
			v.st.Progress = ""
		}
	}
}

// Pump waits for single message and applies it.
func (v *View) Pump(ctx context.Context) (Msg, error) {
	select {
	case m := <-v.msgs:
		v.Apply(m)
		return m, nil
	case <-ctx.Done():
		return Msg{}, ctx.Err()
	}
}

// Wait pumps messages until view is idle.
func (v *View) Wait(ctx context.Context) error {
	for v.st.Busy {
		if _, err := v.Pump(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Save writes displayed text, trimmed of surrounding whitespace, to path.
// It returns fingerprint of written content.
func (v *View) Save(path string) (sum string, err error) {
	text := strings.TrimSpace(v.st.Output)
	if text == "" {
		return "", apperr.New(apperr.EmptyResult, "save", "no ASCII art to save")
	}
	if path == "" {
		return "", apperr.New(apperr.InvalidInput, "save", "no file name given")
	}

	err = fileutil.WriteFileAtomic(path, strings.NewReader(text), v.cfg.FileMode)
	if err != nil {
		return "", apperr.Wrap(apperr.InvalidInput, "save", err)
	}

	sum, err = hashtools.Sum(strings.NewReader(text), v.cfg.HashType)
	if err != nil {
		return "", err
	}
	v.log.LogPrintf(INFO, "saved %d bytes to %q (%s)", len(text), path, sum)
	return sum, nil
}
