package sentiment

import (
	"context"
	"errors"

	"github.com/spacesedan/newsmood/internal/models"
)

// InferenceAPI is the part of clients.InferenceClient the remote backend uses.
type InferenceAPI interface {
	Classify(ctx context.Context, text string) (models.InferenceResponse, error)
}

// RemoteClassifier delegates inference to an HTTP model server and keeps the
// highest scoring label.
type RemoteClassifier struct {
	api InferenceAPI
}

func NewRemoteClassifier(api InferenceAPI) *RemoteClassifier {
	return &RemoteClassifier{api: api}
}

func (r *RemoteClassifier) Classify(ctx context.Context, text string) (models.Prediction, error) {
	predictions, err := r.api.Classify(ctx, text)
	if err != nil {
		return models.Prediction{}, err
	}
	return TopPrediction(predictions)
}

func TopPrediction(predictions []models.Prediction) (models.Prediction, error) {
	if len(predictions) == 0 {
		return models.Prediction{}, errors.New("no predictions returned")
	}

	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, nil
}
