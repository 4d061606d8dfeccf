package bootctl

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Leveled console logging backed by zerolog.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

func init() {
	// default from env if present
	SetLogLevel(envStr("OCRBOOT_LOG_LEVEL", "info"))
}

func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "info":
		log = log.Level(zerolog.InfoLevel)
	case "warn", "warning":
		log = log.Level(zerolog.WarnLevel)
	case "error", "err":
		log = log.Level(zerolog.ErrorLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}
}

func debug(format string, a ...any) { log.Debug().Msgf(format, a...) }
func info(format string, a ...any)  { log.Info().Msgf(format, a...) }
func warn(format string, a ...any)  { log.Warn().Msgf(format, a...) }
func errl(format string, a ...any)  { log.Error().Msgf(format, a...) }

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, err := fmt.Sscanf(v, "%d", &n)
		if err == nil {
			return n
		}
	}
	return def
}
