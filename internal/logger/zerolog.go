package logger

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Zerolog writes component-scoped entries through a zerolog.Logger.
type Zerolog struct {
	logger zerolog.Logger
}

func NewZerolog(w io.Writer, level zerolog.Level) *Zerolog {
	return &Zerolog{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// NewConsole writes human-readable lines to stderr.
func NewConsole(level zerolog.Level) *Zerolog {
	return NewZerolog(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, level)
}

// New picks the console or JSON writer on stderr.
func New(level string, jsonOutput bool) (*Zerolog, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if jsonOutput {
		return NewZerolog(os.Stderr, lvl), nil
	}
	return NewConsole(lvl), nil
}

func (z *Zerolog) Info(component, message string, fields map[string]interface{}) {
	emit(z.logger.Info(), component, fields, message)
}

// Error names the failing component in the message, and the error itself
// goes under "error".
func (z *Zerolog) Error(component string, err error, fields map[string]interface{}) {
	emit(z.logger.Error().Err(err), component, fields, errorMessage(component, fields))
}

func (z *Zerolog) Warning(component, message string, fields map[string]interface{}) {
	emit(z.logger.Warn(), component, fields, message)
}

func (z *Zerolog) Debug(component, message string, fields map[string]interface{}) {
	emit(z.logger.Debug(), component, fields, message)
}

// emit adds fields in key order so console output is stable.
func emit(e *zerolog.Event, component string, fields map[string]interface{}, message string) {
	if e == nil {
		return
	}
	e = e.Str("component", component)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			e = e.Str(k, v)
		case error:
			e = e.AnErr(k, v)
		case time.Duration:
			e = e.Dur(k, v)
		default:
			e = e.Interface(k, v)
		}
	}
	e.Msg(message)
}

func errorMessage(component string, fields map[string]interface{}) string {
	msg := strings.ToLower(component) + " failed"
	if cmd, ok := fields["command"].(string); ok && cmd != "" {
		msg += ": " + cmd
	}
	return msg
}
