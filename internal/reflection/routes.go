package reflection

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (s *Server) registerRoutes() {
	r := s.router

	r.GET("/api/__health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
			"uptime": time.Since(s.appeared).String(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/api/actions", func(c *gin.Context) {
		c.Header(VersionHeader, s.version)
		c.JSON(http.StatusOK, s.registry.List())
	})

	r.POST("/api/notify", func(c *gin.Context) {
		c.Header(VersionHeader, s.version)
		c.JSON(http.StatusOK, gin.H{})
	})

	r.POST("/api/runAction", s.handleRunAction)

	r.POST("/api/__quitquitquit", func(c *gin.Context) {
		log.Info().Str("server", s.name).Msg("termination_requested")
		s.shutdown.Trigger()
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	r.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
}
