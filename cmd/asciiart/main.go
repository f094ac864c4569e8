package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"minitools/lib/asciiview"
	"minitools/lib/cliapp"
	"minitools/lib/logx"
)

type convertCmd struct {
	Image  string `arg:"" help:"Image file (png, jpeg, bmp, gif, webp)." type:"path"`
	Width  int    `short:"w" help:"Output width in characters; config value when omitted."`
	Output string `short:"o" help:"Save art into file instead of printing it." type:"path" placeholder:"FILE"`
}

type viewCmd struct {
	Image string `arg:"" optional:"" help:"Image file to start with." type:"path"`
}

var cli struct {
	cliapp.Globals `embed:""`

	Convert convertCmd `cmd:"" help:"Convert image into ASCII art."`
	View    viewCmd    `cmd:"" help:"Interactive generator session reading commands from stdin."`
}

type app struct {
	*cliapp.App
	ctx  context.Context
	view *asciiview.View
}

func newApp(ctx context.Context) (*app, error) {
	ca, err := cli.Globals.Setup("asciiart", os.Stderr)
	if err != nil {
		return nil, err
	}
	ld, err := ca.Cfg.ImageConfig().BuildLoader(ca.LogX)
	if err != nil {
		return nil, err
	}
	v := asciiview.New(ca.Cfg.ViewConfig(), ld, ca.LogX)
	return &app{App: ca, ctx: ctx, view: v}, nil
}

func (c *convertCmd) Run(a *app) error {
	v := a.view
	v.SetImagePath(c.Image)
	if c.Width != 0 {
		v.SetWidth(strconv.Itoa(c.Width))
	}
	if err := v.Generate(); err != nil {
		return err
	}
	if err := v.Wait(a.ctx); err != nil {
		return err
	}
	st := v.State()
	if st.Err != nil {
		return fmt.Errorf("failed to generate ASCII art: %w", st.Err)
	}

	if c.Output == "" {
		_, err := fmt.Fprint(os.Stdout, st.Output)
		return err
	}
	sum, err := v.Save(c.Output)
	if err != nil {
		return err
	}
	a.Log.LogPrintf(logx.NOTICE, "saved %q (%s)", c.Output, sum)
	return nil
}

func (c *viewCmd) Run(a *app) error {
	if c.Image != "" {
		a.view.SetImagePath(c.Image)
	}
	fmt.Fprintln(os.Stdout, "ASCII Art Generator; type help for commands")
	return asciiview.NewSession(a.view, os.Stdin, os.Stdout).Run(a.ctx)
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("asciiart"),
		kong.Description("Turns images into text approximating their luminance."),
		kong.UsageOnError())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		cliapp.Fail(os.Stderr, err)
	}
	if err = kctx.Run(a); err != nil {
		a.Log.LogPrintln(logx.DEBUG, "command failed:", err)
		stop()
		cliapp.Fail(os.Stderr, err)
	}
}
