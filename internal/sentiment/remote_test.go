package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/spacesedan/newsmood/internal/models"
)

type fakeInferenceAPI struct {
	resp models.InferenceResponse
	err  error
	text string
}

func (f *fakeInferenceAPI) Classify(ctx context.Context, text string) (models.InferenceResponse, error) {
	f.text = text
	return f.resp, f.err
}

func TestRemoteClassifierPicksHighestScore(t *testing.T) {
	api := &fakeInferenceAPI{resp: models.InferenceResponse{
		{Label: "neutral", Score: 0.2},
		{Label: "negative", Score: 0.7},
		{Label: "positive", Score: 0.1},
	}}

	got, err := NewRemoteClassifier(api).Classify(context.Background(), "stocks fell")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Label != "negative" || got.Score != 0.7 {
		t.Errorf("got %+v, want negative/0.7", got)
	}
	if api.text != "stocks fell" {
		t.Errorf("text not forwarded, got %q", api.text)
	}
}

func TestRemoteClassifierErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := NewRemoteClassifier(&fakeInferenceAPI{err: boom}).Classify(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped api error, got %v", err)
	}

	if _, err := NewRemoteClassifier(&fakeInferenceAPI{}).Classify(context.Background(), "x"); err == nil {
		t.Error("expected an error for an empty response")
	}
}
