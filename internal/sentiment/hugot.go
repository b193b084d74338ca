package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/newsmood/internal/models"
)

const (
	hugotPipelineName = "newsSentimentPipeline"
	onnxLibPathEnv    = "ONNXRUNTIME_LIB_PATH"
)

// HugotClassifier runs a Hugging Face text-classification model locally on
// the ONNX runtime.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// ModelPath is where hugot.DownloadModel places modelName inside dir.
func ModelPath(dir, modelName string) string {
	name, _, _ := strings.Cut(modelName, ":")
	return filepath.Join(dir, strings.ReplaceAll(name, "/", "_"))
}

// EnsureModel downloads modelName into dir unless it is already there.
func EnsureModel(modelName, dir string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := ModelPath(dir, modelName)
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat model path: %w", err)
	}

	slog.Info("[HugotClassifier] Model not found, downloading...",
		slog.String("model", modelName))
	start := time.Now()
	downloaded, err := hugot.DownloadModel(modelName, dir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model %s: %w", modelName, err)
	}
	slog.Info("[HugotClassifier] Model downloaded successfully",
		slog.String("path", downloaded),
		slog.Duration("elapsed", time.Since(start)))

	return downloaded, nil
}

// newHugotSession opens an ONNX runtime session, using the shared library
// named by ONNXRUNTIME_LIB_PATH when it is set.
func newHugotSession() (*hugot.Session, error) {
	if libPath := os.Getenv(onnxLibPathEnv); libPath != "" {
		return hugot.NewORTSession(options.WithOnnxLibraryPath(libPath))
	}
	return hugot.NewORTSession()
}

// NewHugotClassifier loads the model at modelPath. It blocks until the
// runtime session and pipeline are ready.
func NewHugotClassifier(modelPath string) (*HugotClassifier, error) {
	session, err := newHugotSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      hugotPipelineName,
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			slog.Warn("[HugotClassifier] Failed to destroy session",
				slog.String("error", destroyErr.Error()))
		}
		return nil, fmt.Errorf("failed to initialize text classification pipeline: %w", err)
	}

	slog.Info("[HugotClassifier] Pipeline ready", slog.String("model_path", modelPath))
	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func (h *HugotClassifier) Classify(ctx context.Context, text string) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}

	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return models.Prediction{}, fmt.Errorf("hugot pipeline failed: %w", err)
	}

	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return models.Prediction{}, errors.New("hugot pipeline returned no classification")
	}

	best := output.ClassificationOutputs[0][0]
	for _, candidate := range output.ClassificationOutputs[0][1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	return models.Prediction{Label: best.Label, Score: float64(best.Score)}, nil
}

func (h *HugotClassifier) Close() error {
	return h.session.Destroy()
}
