package asciiview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"

	"minitools/lib/apperr"
	"minitools/lib/imgload"
	"minitools/lib/logx"
)

type fakeLoader struct {
	gate chan struct{} // if non-nil, Load blocks until closed
	img  *image.Gray
	err  error
}

func (f *fakeLoader) Load(string) (*image.Gray, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.img, f.err
}

func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / w)})
		}
	}
	return img
}

func touch(t *testing.T) string {
	p := filepath.Join(t.TempDir(), "img.png")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestGenerateValidation(t *testing.T) {
	v := New(DefaultConfig, &fakeLoader{img: gradient(10, 10)}, logx.NopLoggerX{})
	if st := v.State(); st.WidthText != "80" {
		t.Errorf("default width text %q", st.WidthText)
	}

	p := touch(t)
	cases := []struct {
		path, width string
	}{
		{p, "abc"},
		{p, "0"},
		{p, "-3"},
		{p, "4097"},
		{p, "999999999999"},
		{"", "10"},
		{filepath.Join(t.TempDir(), "missing.png"), "10"},
	}
	for _, c := range cases {
		v.SetImagePath(c.path)
		v.SetWidth(c.width)
		err := v.Generate()
		if !errors.Is(err, apperr.InvalidInput) {
			t.Errorf("%q/%q: exp InvalidInput, got %v", c.path, c.width, err)
		}
		if v.State().Busy {
			t.Fatalf("%q/%q: view became busy", c.path, c.width)
		}
	}
}

func TestGenerateBusy(t *testing.T) {
	fl := &fakeLoader{gate: make(chan struct{}), img: gradient(40, 20)}
	v := New(DefaultConfig, fl, logx.NopLoggerX{})
	v.SetImagePath(touch(t))
	v.SetWidth("20")

	if err := v.Generate(); err != nil {
		t.Fatal(err)
	}
	st := v.State()
	if !st.Busy || st.Progress != ProgressRunning {
		t.Errorf("unexpected state after start: %s", spew.Sdump(st))
	}
	if err := v.Generate(); err != ErrBusy {
		t.Errorf("exp ErrBusy, got %v", err)
	}

	close(fl.gate)
	if err := v.Wait(testCtx(t)); err != nil {
		t.Fatal(err)
	}

	st = v.State()
	if st.Busy || st.Progress != ProgressDone || st.Err != nil {
		t.Errorf("unexpected state after run: %s", spew.Sdump(st))
	}
	lines := strings.Split(strings.TrimSuffix(st.Output, "\n"), "\n")
	// 20 * 0.5 * 0.55 = 5.5 rounds to 6
	if len(lines) != 6 {
		t.Errorf("exp 6 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if len(l) != 20 {
			t.Errorf("line %q is not 20 wide", l)
		}
	}

	// trigger works again once idle
	if err := v.Generate(); err != nil {
		t.Errorf("second run: %v", err)
	}
	if err := v.Wait(testCtx(t)); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateFailure(t *testing.T) {
	fl := &fakeLoader{err: apperr.New(apperr.DecodeError, "decode", "broken")}
	v := New(DefaultConfig, fl, logx.NopLoggerX{})
	v.SetImagePath(touch(t))

	if err := v.Generate(); err != nil {
		t.Fatal(err)
	}
	if err := v.Wait(testCtx(t)); err != nil {
		t.Fatal(err)
	}
	st := v.State()
	if !errors.Is(st.Err, apperr.DecodeError) || st.Progress != "" || st.Busy || st.Output != "" {
		t.Errorf("unexpected state: %s", spew.Sdump(st))
	}

	// zero-area image surfaces as EmptyResult, not crash
	fl.err = nil
	fl.img = image.NewGray(image.Rect(0, 0, 0, 7))
	if err := v.Generate(); err != nil {
		t.Fatal(err)
	}
	if err := v.Wait(testCtx(t)); err != nil {
		t.Fatal(err)
	}
	if st = v.State(); !errors.Is(st.Err, apperr.EmptyResult) {
		t.Errorf("exp EmptyResult, got %v", st.Err)
	}

	// output grid over cell limit is rejected before resampling
	fl.img = gradient(1, 100000)
	v.SetWidth("100")
	if err := v.Generate(); err != nil {
		t.Fatal(err)
	}
	if err := v.Wait(testCtx(t)); err != nil {
		t.Fatal(err)
	}
	if st = v.State(); !errors.Is(st.Err, apperr.InvalidInput) || st.Busy || st.Output != "" {
		t.Errorf("unexpected state: %s", spew.Sdump(st))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	v := New(DefaultConfig, &fakeLoader{img: gradient(64, 64)}, logx.NopLoggerX{})

	if _, err := v.Save(filepath.Join(t.TempDir(), "x.txt")); !errors.Is(err, apperr.EmptyResult) {
		t.Errorf("exp EmptyResult on empty output, got %v", err)
	}

	v.SetImagePath(touch(t))
	v.SetWidth("32")
	if err := v.Generate(); err != nil {
		t.Fatal(err)
	}
	if err := v.Wait(testCtx(t)); err != nil {
		t.Fatal(err)
	}

	fn := filepath.Join(t.TempDir(), "art.txt")
	sum, err := v.Save(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sum, "blake3:") {
		t.Errorf("unexpected fingerprint %q", sum)
	}

	b, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if exp := strings.TrimSpace(v.State().Output); string(b) != exp {
		t.Errorf("saved content differs:\nexp %q\ngot %q", exp, b)
	}
}

func TestSession(t *testing.T) {
	dir := t.TempDir()
	imgfn := filepath.Join(dir, "in.png")
	f, err := os.Create(imgfn)
	if err != nil {
		t.Fatal(err)
	}
	if err = png.Encode(f, gradient(50, 25)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ld, err := imgload.DefaultConfig.BuildLoader(logx.NopLoggerX{})
	if err != nil {
		t.Fatal(err)
	}
	v := New(DefaultConfig, ld, logx.NopLoggerX{})

	outfn := filepath.Join(dir, "out.txt")
	script := strings.Join([]string{
		"save " + outfn,
		"open " + imgfn,
		"width 0",
		"generate",
		"width 25",
		"generate",
		"wait",
		"save " + outfn,
		"bogus",
		"quit",
		"status",
	}, "\n") + "\n"

	var out bytes.Buffer
	s := NewSession(v, strings.NewReader(script), &out)
	if err = s.Run(testCtx(t)); err != nil {
		t.Fatal(err)
	}

	o := out.String()
	for _, exp := range []string{
		"Warning: save: empty result: no ASCII art to save",
		"Error: generate: invalid input: please enter a valid width",
		ProgressRunning,
		ProgressDone,
		"ASCII art saved successfully (blake3:",
		`Error: session: invalid input: unknown command "bogus"`,
	} {
		if !strings.Contains(o, exp) {
			t.Errorf("output lacks %q:\n%s", exp, o)
		}
	}
	if strings.Contains(o, "busy:") {
		t.Error("commands after quit should not run")
	}
	if _, err = os.Stat(outfn); err != nil {
		t.Errorf("output file: %v", err)
	}

	if err = s.command(testCtx(t), "frobnicate"); !errors.Is(err, apperr.InvalidInput) {
		t.Errorf("unknown command: exp InvalidInput, got %v", err)
	}
}
