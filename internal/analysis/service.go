package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/newsmood/internal/models"
	"github.com/spacesedan/newsmood/internal/sentiment"
)

const (
	fieldID      = "id"
	fieldTitle   = "title"
	fieldSummary = "summary"
)

var requiredFields = []string{fieldID, fieldTitle, fieldSummary}

// Service validates article batches and labels each summary with the
// configured classifier. It holds no per-request state.
type Service struct {
	classifier    sentiment.Classifier
	labels        *sentiment.LabelMapper
	maxInputChars int
}

func NewService(classifier sentiment.Classifier, labels *sentiment.LabelMapper, maxInputChars int) *Service {
	if maxInputChars <= 0 {
		maxInputChars = sentiment.DEFAULT_MAX_INPUT_CHARS
	}
	return &Service{
		classifier:    classifier,
		labels:        labels,
		maxInputChars: maxInputChars,
	}
}

// Analyze returns one result per article in body, in input order. The batch
// is validated in full before the classifier is called.
func (s *Service) Analyze(ctx context.Context, body []byte) ([]models.AnalysisResult, error) {
	articles, err := DecodeBatch(body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]models.AnalysisResult, 0, len(articles))
	for i, article := range articles {
		label, err := s.AnalyzeSummary(ctx, article.Summary)
		if err != nil {
			return nil, &ClassificationError{Index: i, Err: err}
		}

		results = append(results, models.AnalysisResult{
			ID:        article.ID,
			Title:     article.Title,
			Sentiment: label,
		})
	}

	slog.Info("[AnalysisService] Analysis complete",
		slog.Int("articles", len(results)),
		slog.Duration("elapsed", time.Since(start)))
	return results, nil
}

// AnalyzeSummary labels a single summary. An empty summary is neutral and
// never reaches the classifier.
func (s *Service) AnalyzeSummary(ctx context.Context, summary string) (string, error) {
	if summary == "" {
		return s.labels.Neutral(), nil
	}

	prediction, err := s.classifier.Classify(ctx, sentiment.Truncate(summary, s.maxInputChars))
	if err != nil {
		return "", err
	}

	label, ok := s.labels.Map(prediction.Label)
	if !ok {
		slog.Warn("[AnalysisService] Unrecognized classifier label, defaulting to neutral",
			slog.String("label", prediction.Label),
			slog.Float64("score", prediction.Score))
	}
	return label, nil
}

// DecodeBatch parses body into articles, stopping at the first article that
// is missing a required field.
func DecodeBatch(body []byte) ([]models.ArticleRequest, error) {
	// id and title are echoed as raw bytes
	if !utf8.Valid(body) {
		slog.Warn("[AnalysisService] Request body is not valid UTF-8")
		return nil, &StructuralError{Reason: "invalid UTF-8"}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		slog.Warn("[AnalysisService] Request body is not a JSON list",
			slog.String("error", err.Error()))
		return nil, &StructuralError{Reason: err.Error()}
	}
	if len(elements) == 0 {
		slog.Warn("[AnalysisService] Request body is an empty list")
		return nil, &StructuralError{Reason: "empty list"}
	}

	articles := make([]models.ArticleRequest, 0, len(elements))
	for i, element := range elements {
		article, err := decodeArticle(i, element)
		if err != nil {
			slog.Warn("[AnalysisService] Article failed validation",
				slog.Int("article_index", i),
				slog.String("detail", err.Detail()))
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func decodeArticle(index int, element json.RawMessage) (models.ArticleRequest, *ValidationError) {
	// anything that is not an object has none of the fields
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(element, &fields); err != nil {
		fields = nil
	}

	var missing []string
	for _, name := range requiredFields {
		if isNull(fields[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return models.ArticleRequest{}, &ValidationError{Index: index, MissingFields: missing}
	}

	var summary string
	if err := json.Unmarshal(fields[fieldSummary], &summary); err != nil {
		return models.ArticleRequest{}, &ValidationError{Index: index, InvalidFields: []string{fieldSummary}}
	}

	return models.ArticleRequest{
		ID:      fields[fieldID],
		Title:   fields[fieldTitle],
		Summary: summary,
	}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
