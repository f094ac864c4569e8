package filelogger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"

	"minitools/lib/logx"
)

type UseColor int

const (
	ColorAuto UseColor = iota
	ColorOn
	ColorOff
)

func ParseUseColor(s string) (UseColor, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always", "yes":
		return ColorOn, nil
	case "off", "never", "no":
		return ColorOff, nil
	}
	return ColorAuto, fmt.Errorf("unknown color mode %q", s)
}

// IsTerminal reports whether w is file connected to terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorWriter decides whether output to w should be colored,
// and wraps terminal files so that escapes work on windows consoles too.
func ColorWriter(w io.Writer, c UseColor) (io.Writer, bool) {
	if c == ColorOff {
		return w, false
	}
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		return colorable.NewColorable(f), true
	}
	return w, c == ColorOn
}

type logLevels [logx.LevelCount]string

var levelstrings = [2]logLevels{
	// uncolored
	{
		logx.DEBUG:    "   DEBUG",
		logx.INFO:     "    INFO",
		logx.NOTICE:   "  NOTICE",
		logx.WARN:     " WARNING",
		logx.ERROR:    "   ERROR",
		logx.CRITICAL: "CRITICAL",
	},
	// colored
	{
		logx.DEBUG:    "\033[37m   DEBUG\033[0m",
		logx.INFO:     "\033[34m    INFO\033[0m",
		logx.NOTICE:   "\033[32m  NOTICE\033[0m",
		logx.WARN:     "\033[33m WARNING\033[0m",
		logx.ERROR:    "\033[31m   ERROR\033[0m",
		logx.CRITICAL: "\033[35mCRITICAL\033[0m",
	},
}

var formatstrings = [2]string{
	// uncolored
	" %s [%s] ",
	// colored
	" %s [\033[36m%s\033[0m] ",
}

var _ logx.LoggerX = (*FileLogger)(nil)

type FileLogger struct {
	w splitter
	l sync.Mutex
	t uint       // 1 if colored
	m logx.Level // minimum level
	d int        // last printed yearday, colored mode only
}

var nowTime = time.Now

func NewFileLogger(w io.Writer, logLevel logx.Level, c UseColor) *FileLogger {
	cw, colored := ColorWriter(w, c)
	l := &FileLogger{m: logLevel, d: -1}
	if colored {
		l.t = 1
	}
	l.w.w = bufio.NewWriter(cw)
	return l
}

func (l *FileLogger) Level() logx.Level {
	return l.m
}

func (l *FileLogger) writeTime(t time.Time) {
	if l.t != 0 {
		// colored output is for humans; print date only when it changes
		if yd := t.Year()*1000 + t.YearDay(); l.d != yd {
			l.d = yd
			fmt.Fprintf(l.w.w, "\033[1mdate is %s\033[0m\n", t.Format("2006-01-02"))
		}
		l.w.p.WriteString(t.Format("15:04:05"))
	} else {
		l.w.p.WriteString(t.Format("2006-01-02 15:04:05"))
	}
}

func (l *FileLogger) prepareWrite(section string, lvl logx.Level) {
	l.w.reset()
	l.writeTime(nowTime().UTC())
	fmt.Fprintf(&l.w.p, formatstrings[l.t], levelstrings[l.t][lvl], section)
}

func (l *FileLogger) LogPrintX(section string, lvl logx.Level, v ...interface{}) {
	if l.m > lvl {
		return
	}

	l.l.Lock()
	defer l.l.Unlock()

	l.prepareWrite(section, lvl)
	fmt.Fprint(&l.w, v...)
	l.w.finish()
}

func (l *FileLogger) LogPrintlnX(section string, lvl logx.Level, v ...interface{}) {
	if l.m > lvl {
		return
	}

	l.l.Lock()
	defer l.l.Unlock()

	l.prepareWrite(section, lvl)
	fmt.Fprintln(&l.w, v...)
	l.w.finish()
}

func (l *FileLogger) LogPrintfX(section string, lvl logx.Level, fmts string, v ...interface{}) {
	if l.m > lvl {
		return
	}

	l.l.Lock()
	defer l.l.Unlock()

	l.prepareWrite(section, lvl)
	fmt.Fprintf(&l.w, fmts, v...)
	l.w.finish()
}
