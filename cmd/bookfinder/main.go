package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"minitools/lib/bookfinder"
	"minitools/lib/cliapp"
	"minitools/lib/logx"
)

var cli struct {
	cliapp.Globals `embed:""`

	Query []string `arg:"" optional:"" help:"Book name; asked for interactively when omitted."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("bookfinder"),
		kong.Description("Looks a book up in Open Library and prints its record."),
		kong.UsageOnError())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := cli.Globals.Setup("bookfinder", os.Stderr)
	if err != nil {
		cliapp.Fail(os.Stderr, err)
	}

	c, err := bookfinder.NewClient(a.Cfg.BookConfig(), a.LogX)
	if err != nil {
		cliapp.Fail(os.Stderr, err)
	}
	out, color := a.ColorOutput(os.Stdout)
	p := bookfinder.NewPrinter(c, out, color)

	query := strings.Join(cli.Query, " ")
	if query == "" {
		query, err = p.Prompt(os.Stdin)
		if err != nil {
			cliapp.Fail(os.Stderr, err)
		}
	}

	// Lookup already printed notice for user
	if err = p.Lookup(ctx, query); err != nil {
		a.Log.LogPrintln(logx.DEBUG, "lookup failed:", err)
		stop()
		os.Exit(1)
	}
}
