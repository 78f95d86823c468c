package amd

import (
	"io"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogSettings defines where and how much amd logs.
type LogSettings struct {
	Level      string // debug, info, warn, error or none
	File       string // rotated log file, in addition to the provided writer
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// NewLogger returns a logfmt logger writing to w (and to the rotated log file if one is set).
func NewLogger(s LogSettings, w io.Writer) kitlog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if s.File != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   s.File,
			MaxSize:    s.MaxSizeMB,
			MaxBackups: s.MaxBackups,
			Compress:   s.Compress,
		})
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	klog = kitlog.With(klog, "ts", kitlog.DefaultTimestampUTC)
	return level.NewFilter(klog, levelOption(s.Level))
}

func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	case "none":
		return level.AllowNone()
	default:
		return level.AllowInfo()
	}
}

// orNop returns the nop logger instead of nil.
func orNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}
