package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

var (
	mu       sync.RWMutex
	defLevel string
	console  bool
	file     *lumberjack.Logger
)

// Configure sets the level and format used by loggers created afterwards.
// LOG_LEVEL and APP_ENV=dev still take precedence.
func Configure(level string, consoleOutput bool) {
	mu.Lock()
	defer mu.Unlock()
	defLevel = level
	console = consoleOutput
}

// RotateTo additionally writes JSON entries of loggers created afterwards to
// a size-rotated file. An empty path stops file output. The previous file,
// if any, is closed.
func RotateTo(path string, maxSizeMB, maxBackups, maxAgeDays int) error {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		if err := file.Close(); err != nil {
			return err
		}
		file = nil
	}
	if path == "" {
		return nil
	}
	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return nil
}

// NewZerologLogger creates a ZerologLogger writing to stdout and to the
// rotated file set with RotateTo. APP_ENV=dev
// switches to the human readable console format. All entries carry the
// component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	level, pretty, rotated := defLevel, console, file
	mu.RUnlock()
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		pretty = true
	}
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if rotated != nil {
		out = zerolog.MultiLevelWriter(out, rotated)
	}
	return NewWithWriter(out, component, level)
}

// NewWithWriter creates a ZerologLogger writing to w. An empty or unknown
// level selects info.
func NewWithWriter(w io.Writer, component, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
