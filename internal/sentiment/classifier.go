package sentiment

import (
	"context"
	"io"
	"sync"

	"github.com/spacesedan/newsmood/internal/models"
)

// Classifier turns a piece of text into a raw label and confidence score.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Prediction, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (models.Prediction, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (models.Prediction, error) {
	return f(ctx, text)
}

type serialized struct {
	mu   sync.Mutex
	next Classifier
}

// Serialized wraps c so that at most one Classify call runs at a time. Use it
// for backends that are not safe for concurrent inference.
func Serialized(c Classifier) Classifier {
	if _, ok := c.(*serialized); ok {
		return c
	}
	return &serialized{next: c}
}

func (s *serialized) Classify(ctx context.Context, text string) (models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}
	return s.next.Classify(ctx, text)
}

func (s *serialized) Close() error {
	return Close(s.next)
}

// Close releases c if it holds resources, e.g. an ONNX runtime session.
func Close(c Classifier) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
