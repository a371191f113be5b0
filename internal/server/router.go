package server

import (
	"net/http"
	"time"

	"github.com/alexanderramin/redtally/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Router returns the HTTP routes:
//
//	GET  /healthz
//	GET  /report          last report; ?format=json|markdown|csv
//	GET  /report/status
//	POST /report/run      start a regeneration
func (s *Server) Router() *gin.Engine {
	if s.log.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("m", c.Request.Method).
			Str("p", c.FullPath()).
			Int("s", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http")
	})

	r.GET("/healthz", s.healthz)
	r.GET("/report", s.lastReport)
	r.GET("/report/status", s.status)
	r.POST("/report/run", s.runNow)

	return r
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

var contentTypes = map[string]string{
	render.FormatJSON:     "application/json; charset=utf-8",
	render.FormatMarkdown: "text/markdown; charset=utf-8",
	render.FormatCSV:      "text/csv; charset=utf-8",
}

func (s *Server) lastReport(c *gin.Context) {
	format := c.DefaultQuery("format", render.FormatJSON)
	contentType, ok := contentTypes[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, markdown or csv"})
		return
	}

	last := s.Last()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report generated yet"})
		return
	}
	if format == render.FormatJSON {
		c.JSON(http.StatusOK, last)
		return
	}

	write, err := render.ForFormat(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if err := write(c.Writer, last); err != nil {
		s.log.Error().Err(err).Str("format", format).Msg("writing report response")
	}
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status())
}

func (s *Server) runNow(c *gin.Context) {
	if !s.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"status": "running"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
