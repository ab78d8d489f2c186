// Package logging builds the hclog loggers used across themekit.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "themekit"

// Options controls how New builds a logger.
type Options struct {
	// Level is an hclog level name such as "debug" or "warn". Empty means info.
	Level string
	// Verbose forces debug output and wins over Quiet.
	Verbose bool
	// Quiet silences everything below error.
	Quiet bool
	// JSON switches to structured JSON lines.
	JSON bool
	// Output defaults to stderr.
	Output io.Writer
}

// New returns a logger for opts. An unrecognised level falls back to info.
func New(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		Output:     output,
		Level:      resolveLevel(opts),
		JSONFormat: opts.JSON,
		// Terminal output stays readable; timestamps only matter in JSON.
		DisableTime: !opts.JSON,
	})
}

// Discard returns a logger that drops everything.
func Discard() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Output: io.Discard,
		Level:  hclog.Off,
	})
}

func resolveLevel(opts Options) hclog.Level {
	switch {
	case opts.Verbose:
		return hclog.Debug
	case opts.Quiet:
		return hclog.Error
	}

	level := hclog.LevelFromString(strings.TrimSpace(opts.Level))
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}
