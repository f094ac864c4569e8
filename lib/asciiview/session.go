package asciiview

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"minitools/lib/apperr"
)

const sessionHelp = `commands:
  open PATH    select image
  width N      output width in characters
  generate     convert selected image
  wait         wait for running conversion
  show         print current output
  save PATH    save current output
  status       print current state
  quit         leave
`

// Session drives View from line oriented text input.
// Lines and worker messages are both handled by Run's goroutine.
type Session struct {
	v   *View
	in  io.Reader
	out io.Writer
}

func NewSession(v *View, in io.Reader, out io.Writer) *Session {
	return &Session{v: v, in: in, out: out}
}

var errQuit = errors.New("quit")

// Run processes input until quit, EOF or ctx cancellation.
// On EOF running conversion is allowed to finish.
func (s *Session) Run(ctx context.Context) error {
	lines := make(chan string)
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-rctx.Done():
				return
			}
		}
	}()

	fmt.Fprint(s.out, "> ")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case m := <-s.v.Messages():
			s.v.Apply(m)
			s.report(m)

		case l, ok := <-lines:
			if !ok {
				return s.finish(ctx)
			}
			err := s.command(ctx, l)
			if err == errQuit {
				return nil
			}
			if err != nil {
				s.printErr(err)
			}
			fmt.Fprint(s.out, "> ")
		}
	}
}

func (s *Session) finish(ctx context.Context) error {
	for s.v.State().Busy {
		m, err := s.v.Pump(ctx)
		if err != nil {
			return err
		}
		s.report(m)
	}
	return nil
}

func (s *Session) report(m Msg) {
	switch m.Kind {
	case MsgDone:
		fmt.Fprint(s.out, "\n", s.v.State().Output)
		fmt.Fprintln(s.out, s.v.State().Progress)
	case MsgError:
		fmt.Fprintf(s.out, "\nError: Failed to generate ASCII art: %v\n", m.Err)
	}
}

func (s *Session) printErr(err error) {
	if apperr.KindOf(err) == apperr.EmptyResult {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *Session) command(ctx context.Context, line string) error {
	cmd, arg := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		cmd, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "":
		return nil
	case "open", "path":
		s.v.SetImagePath(arg)
	case "width":
		s.v.SetWidth(arg)
	case "generate", "gen":
		if err := s.v.Generate(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, s.v.State().Progress)
	case "wait":
		return s.finish(ctx)
	case "show":
		fmt.Fprint(s.out, s.v.State().Output)
	case "save":
		sum, err := s.v.Save(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "ASCII art saved successfully (%s)\n", sum)
	case "status":
		st := s.v.State()
		fmt.Fprintf(s.out, "image: %q\nwidth: %s\nbusy: %v\n", st.ImagePath, st.WidthText, st.Busy)
		if st.Progress != "" {
			fmt.Fprintf(s.out, "progress: %s\n", st.Progress)
		}
	case "help", "?":
		fmt.Fprint(s.out, sessionHelp)
	case "quit", "exit", "q":
		return errQuit
	default:
		return apperr.New(apperr.InvalidInput, "session", "unknown command %q, try help", cmd)
	}
	return nil
}
