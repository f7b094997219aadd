// Package logger builds the diagnostic logger shared by the CLI and services.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv overrides the default warn level (debug, info, warn, error).
const LevelEnv = "VIEWFIELD_LOG_LEVEL"

// New returns a JSON logger writing to w. verbose forces debug level.
func New(w io.Writer, verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if s := strings.ToLower(strings.TrimSpace(os.Getenv(LevelEnv))); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", LevelEnv, s, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}
