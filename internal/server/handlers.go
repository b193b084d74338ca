package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/newsmood/internal/analysis"
	"github.com/spacesedan/newsmood/internal/models"
)

type handler struct {
	analyzer Analyzer
	opts     Options
}

func (h *handler) analyze(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		slog.Warn("[AnalyzeHandler] Failed to read request body",
			slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: analysis.MSG_INVALID_LIST})
		return
	}

	results, err := h.analyzer.Analyze(c.Request.Context(), body)
	if err != nil {
		writeError(c, err)
		return
	}

	payload, err := json.Marshal(results)
	if err != nil {
		slog.Error("[AnalyzeHandler] Failed to serialize results",
			slog.String("error", err.Error()))
		writeInternalError(c)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func writeError(c *gin.Context, err error) {
	var structural *analysis.StructuralError
	var validation *analysis.ValidationError

	switch {
	case errors.As(err, &structural):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: structural.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
			Error:         validation.Error(),
			MissingFields: validation.MissingFields,
			InvalidFields: validation.InvalidFields,
			ArticleIndex:  validation.Index,
		})
	default:
		slog.Error("[AnalyzeHandler] Analysis failed",
			slog.String("error", err.Error()))
		writeInternalError(c)
	}
}

func writeInternalError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: analysis.MSG_INTERNAL})
}

func (h *handler) healthz(c *gin.Context) {
	healthy := h.opts.Healthy == nil || h.opts.Healthy.Load()

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ok": healthy, "backend": h.opts.Backend})
}
