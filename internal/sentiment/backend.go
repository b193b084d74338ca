package sentiment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/newsmood/config"
	"github.com/spacesedan/newsmood/internal/clients"
)

// NewClassifier builds the backend selected by cfg. Local models are
// downloaded and loaded here, so the call blocks until inference is possible.
func NewClassifier(cfg config.Config) (Classifier, error) {
	start := time.Now()
	slog.Info("[Classifier] Loading sentiment classifier",
		slog.String("backend", cfg.Model.Backend))

	var classifier Classifier
	switch cfg.Model.Backend {
	case config.BACKEND_HUGOT:
		modelPath, err := EnsureModel(cfg.Model.Name, cfg.Model.Dir)
		if err != nil {
			return nil, err
		}
		hc, err := NewHugotClassifier(modelPath)
		if err != nil {
			return nil, err
		}
		classifier = hc
	case config.BACKEND_VADER:
		classifier = NewVaderClassifier()
	case config.BACKEND_REMOTE:
		classifier = NewRemoteClassifier(clients.NewInferenceClient(cfg.Remote))
	case config.BACKEND_OPENAI:
		oc, err := clients.GetOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		classifier = NewOpenAIClassifier(oc)
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.Model.Backend)
	}

	if cfg.Model.Serialize {
		classifier = Serialized(classifier)
	}

	slog.Info("[Classifier] Sentiment classifier ready",
		slog.String("backend", cfg.Model.Backend),
		slog.Bool("serialized", cfg.Model.Serialize),
		slog.Duration("elapsed", time.Since(start)))
	return classifier, nil
}
