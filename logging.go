package walkcover

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates JSON logger, or human readable console logger when pretty is set.
// Unknown level falls back to info.
func NewLogger(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
