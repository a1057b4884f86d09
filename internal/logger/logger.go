package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	isDevelopment = false // human readable console output

	logFile *os.File = nil

	// AdHocLogger is for places that do not own a component logger.
	AdHocLogger zerolog.Logger

	mu sync.RWMutex

	baseLogger zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	AdHocLogger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "ad-hoc-logger").Caller().Logger()
	baseLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Setup rebuilds the base logger from the current development flag and log file, and
// installs it as the zerolog global logger.
func Setup(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()

	var out io.Writer = os.Stderr
	if isDevelopment {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339,
			FormatLevel: func(i any) string {
				return strings.ToUpper(fmt.Sprintf("[%5s]", i))
			},
			FormatMessage: func(i any) string {
				return fmt.Sprintf("| %s |", i)
			},
			FormatCaller: func(i any) string {
				return filepath.Base(fmt.Sprintf("%s", i))
			},
			PartsExclude: []string{
				zerolog.TimestampFieldName,
			}}
	}
	if logFile != nil {
		// file gets JSON, console gets whatever was chosen above
		out = zerolog.MultiLevelWriter(out, logFile)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if isDevelopment {
		ctx = ctx.Caller()
	}
	baseLogger = ctx.Logger()
	log.Logger = baseLogger
}

// GetLogger returns a logger tagged with the component name.
func GetLogger(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger.With().Str("service", component).Logger()
}

func SetDevelopment(value bool) {
	isDevelopment = value
}

func SetLogFile(file *os.File) {
	logFile = file
}
