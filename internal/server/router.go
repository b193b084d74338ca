package server

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/newsmood/internal/models"
)

// Analyzer is implemented by analysis.Service.
type Analyzer interface {
	Analyze(ctx context.Context, body []byte) ([]models.AnalysisResult, error)
}

type Options struct {
	Backend string
	// Healthy reflects the classifier probe. Nil means always healthy.
	Healthy *atomic.Bool
}

func NewRouter(analyzer Analyzer, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), Recovery())

	h := &handler{analyzer: analyzer, opts: opts}

	r.POST("/analyze", h.analyze)
	r.GET("/healthz", h.healthz)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})

	return r
}
