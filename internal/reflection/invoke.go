package reflection

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/reflectctl/internal/codec"
	"github.com/danmuck/reflectctl/internal/observability"
	"github.com/danmuck/reflectctl/internal/registry"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type runActionRequest struct {
	Key     string          `json:"key"`
	Input   json.RawMessage `json:"input"`
	Context map[string]any  `json:"context"`
}

type invocationResult struct {
	Result    any       `json:"result"`
	Telemetry telemetry `json:"telemetry"`
}

type telemetry struct {
	TraceID string `json:"traceId"`
}

// handleRunAction executes exactly one action per request. The stream=true
// query parameter selects streaming mode; everything else buffers.
func (s *Server) handleRunAction(c *gin.Context) {
	var req runActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": codec.ErrorDoc{
			Kind:    codec.KindInvalidArgument,
			Message: "malformed request body: " + err.Error(),
		}})
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": codec.ErrorDoc{
			Kind:    codec.KindInvalidArgument,
			Message: "missing action key",
		}})
		return
	}

	action, ok := s.registry.LookupByKey(req.Key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Action not found: %s", req.Key)})
		return
	}

	runCtx := req.Context
	if runCtx == nil {
		runCtx = map[string]any{}
	}

	if c.Query("stream") == "true" {
		s.runStreamingAction(c, action, req, runCtx)
		return
	}
	s.runBufferedAction(c, action, req, runCtx)
}

// runBufferedAction awaits completion and writes one terminal JSON body.
func (s *Server) runBufferedAction(c *gin.Context, action registry.Action, req runActionRequest, runCtx map[string]any) {
	start := time.Now()
	out, err := action.Run(c.Request.Context(), req.Input, runCtx, nil)
	c.Header(VersionHeader, s.version)
	if err != nil {
		doc := codec.FromError(err)
		log.Error().
			Str("key", req.Key).
			Str("kind", doc.Kind).
			Str("message", doc.Message).
			Msg("action_run_failed")
		observability.RecordActionRun(s.name, req.Key, "buffered", false, 0, time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{"error": doc})
		return
	}
	observability.RecordActionRun(s.name, req.Key, "buffered", true, 0, time.Since(start))
	c.JSON(http.StatusOK, invocationResult{
		Result:    out.Response,
		Telemetry: telemetry{TraceID: out.TraceID},
	})
}

// runStreamingAction commits status and headers before the action runs, then
// writes one newline-delimited JSON line per chunk and a single terminal
// line. A mid-stream failure cannot change the status; it is reported in-band
// as the terminal {"error": ...} line.
func (s *Server) runStreamingAction(c *gin.Context, action registry.Action, req runActionRequest, runCtx map[string]any) {
	start := time.Now()
	w := c.Writer
	c.Header(VersionHeader, s.version)
	c.Header("Content-Type", s.streamContentType)
	w.WriteHeader(http.StatusOK)
	w.Flush()

	chunks := 0
	sink := func(chunk any) error {
		line, err := codec.MarshalLine(chunk)
		if err != nil {
			return fmt.Errorf("encode chunk: %w", err)
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		w.Flush()
		chunks++
		return nil
	}

	out, err := action.Run(c.Request.Context(), req.Input, runCtx, sink)
	if err != nil {
		doc := codec.FromError(err)
		log.Error().
			Str("key", req.Key).
			Str("kind", doc.Kind).
			Str("message", doc.Message).
			Int("chunks", chunks).
			Msg("action_stream_failed")
		observability.RecordActionRun(s.name, req.Key, "streaming", false, chunks, time.Since(start))
		s.writeTerminalLine(c, gin.H{"error": doc})
		return
	}

	observability.RecordActionRun(s.name, req.Key, "streaming", true, chunks, time.Since(start))
	s.writeTerminalLine(c, invocationResult{
		Result:    out.Response,
		Telemetry: telemetry{TraceID: out.TraceID},
	})
}

func (s *Server) writeTerminalLine(c *gin.Context, v any) {
	line, err := codec.MarshalLine(v)
	if err != nil {
		line, _ = codec.MarshalLine(gin.H{"error": codec.ErrorDoc{
			Kind:    codec.KindInternal,
			Message: "encode terminal response: " + err.Error(),
		}})
	}
	if _, err := c.Writer.Write(line); err != nil {
		log.Warn().Err(err).Msg("terminal_line_write_failed")
		return
	}
	c.Writer.Flush()
}
