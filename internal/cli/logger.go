package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/logging"
)

// newLogger builds the process logger: console output (pretty when stdout
// is a terminal) plus a rotating file under the data directory, both behind
// the sensitive-value filter.
func newLogger(dataDir string, verbose, quiet bool) zerolog.Logger {
	var console io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogsDir(dataDir), constants.LogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}

	multi := zerolog.MultiLevelWriter(console, fileWriter)
	filtered := logging.NewFilteringWriter(multi)

	return zerolog.New(filtered).
		Level(selectLevel(verbose, quiet)).
		With().
		Timestamp().
		Logger()
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.WarnLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
