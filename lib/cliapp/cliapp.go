// Package cliapp has flags and setup common to executables.
package cliapp

import (
	"fmt"
	"io"
	"log"
	"os"

	"minitools/lib/config"
	fl "minitools/lib/filelogger"
	"minitools/lib/logx"
)

// Globals are embedded into each executable's kong CLI struct.
type Globals struct {
	Config   string `help:"TOML configuration file." type:"path" placeholder:"FILE"`
	LogLevel string `help:"Log level: debug, info, notice, warn, error, critical." placeholder:"LEVEL"`
	Color    string `help:"Colored output: auto, on, off." placeholder:"MODE"`
}

type App struct {
	Cfg    config.Config
	LogX   logx.LoggerX
	Log    logx.Logger
	Stderr io.Writer
}

// Setup loads config, applies flag overrides and builds logger writing to stderr.
func (g Globals) Setup(name string, stderr io.Writer) (*App, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Color != "" {
		cfg.Log.Color = g.Color
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := fl.NewFileLogger(stderr, cfg.LogLevel(), cfg.LogColor())
	a := &App{
		Cfg:    cfg,
		LogX:   lgr,
		Log:    logx.NewLogToX(lgr, name),
		Stderr: stderr,
	}
	// stray stdlib log output (net/http and friends) goes to our log
	log.SetFlags(0)
	log.SetOutput(logx.NewWriteToLog(logx.NewLogToX(lgr, "stdlog"), logx.WARN))

	a.Log.LogPrintf(logx.DEBUG, "config %q loaded", g.Config)
	return a, nil
}

// ColorOutput decides coloring for w and returns writer to use.
func (a *App) ColorOutput(w io.Writer) (io.Writer, bool) {
	return fl.ColorWriter(w, a.Cfg.LogColor())
}

// Fail reports err on stderr and exits.
func Fail(stderr io.Writer, err error) {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	os.Exit(1)
}
