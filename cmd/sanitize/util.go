package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gofrs/uuid"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// useColor reports whether output written to w should be colored.
func (a *app) useColor(w io.Writer) bool {
	return !a.v.GetBool("no-color") && isTerminal(w)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func (a *app) processGlobalFlags() {
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
}

// logger returns a console logger on w tagged with a fresh run id.
func (a *app) logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(a.v.GetString("log-level")))
	if err != nil || a.v.GetString("log-level") == "" {
		level = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !a.useColor(w)}
	runID := uuid.Must(uuid.NewV4())
	return zerolog.New(out).Level(level).With().Timestamp().Str("run", runID.String()).Logger()
}

// marshalJSON indents v, with colors when the destination is a terminal.
func (a *app) marshalJSON(w io.Writer, v any) ([]byte, error) {
	if a.useColor(w) {
		return prettyjson.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
