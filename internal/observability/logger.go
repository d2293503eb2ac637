package observability

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const EnvLogLevel = "REFLECTCTL_LOG_LEVEL"

func InitLogger(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel)))); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}
	log.Logger = logger
	return logger
}
