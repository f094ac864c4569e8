package logx

import (
	"fmt"
	"io"
	"strings"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	NOTICE
	WARN
	ERROR
	CRITICAL
	LevelCount
)

var levelNames = [LevelCount]string{
	DEBUG:    "debug",
	INFO:     "info",
	NOTICE:   "notice",
	WARN:     "warn",
	ERROR:    "error",
	CRITICAL: "critical",
}

func (l Level) String() string {
	if l >= 0 && l < LevelCount {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel accepts level names case-insensitively ("warning" is also fine).
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WARN, nil
	}
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

type LoggerX interface {
	Level() Level
	LogPrintX(section string, lvl Level, v ...interface{})
	LogPrintlnX(section string, lvl Level, v ...interface{})
	LogPrintfX(section string, lvl Level, fmt string, v ...interface{})
}

type Logger interface {
	Level() Level
	LogPrint(lvl Level, v ...interface{})
	LogPrintln(lvl Level, v ...interface{})
	LogPrintf(lvl Level, fmt string, v ...interface{})
}

var _ Logger = LogToX{}

// LogToX binds LoggerX to single section.
type LogToX struct {
	section string
	logx    LoggerX
}

func (l LogToX) Level() Level {
	return l.logx.Level()
}
func (l LogToX) LogPrint(lvl Level, v ...interface{}) {
	l.logx.LogPrintX(l.section, lvl, v...)
}
func (l LogToX) LogPrintln(lvl Level, v ...interface{}) {
	l.logx.LogPrintlnX(l.section, lvl, v...)
}
func (l LogToX) LogPrintf(lvl Level, fmt string, v ...interface{}) {
	l.logx.LogPrintfX(l.section, lvl, fmt, v...)
}
func NewLogToX(logx LoggerX, section string) LogToX {
	return LogToX{section: section, logx: logx}
}

// NewWriteToLog returns writer which logs every written chunk as separate
// message. Useful for plugging into things which want io.Writer.
func NewWriteToLog(log Logger, lvl Level) io.Writer {
	if lvl < log.Level() {
		return io.Discard
	}
	return writeToLog{log: log, lvl: lvl}
}

type writeToLog struct {
	log Logger
	lvl Level
}

func (w writeToLog) Write(b []byte) (int, error) {
	w.log.LogPrint(w.lvl, strings.TrimRight(string(b), "\n"))
	return len(b), nil
}

var _ LoggerX = NopLoggerX{}

// NopLoggerX discards everything.
type NopLoggerX struct{}

func (NopLoggerX) Level() Level {
	return LevelCount
}
func (NopLoggerX) LogPrintX(string, Level, ...interface{}) {}

func (NopLoggerX) LogPrintlnX(string, Level, ...interface{}) {}

func (NopLoggerX) LogPrintfX(string, Level, string, ...interface{}) {}
