package testlog

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Start routes global logging into the test and puts gin in test mode.
func Start(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log.Logger = zerolog.New(zerolog.NewTestWriter(t))
	log.Info().Str("test", t.Name()).Msg("start")
}
