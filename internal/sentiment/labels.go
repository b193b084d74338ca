package sentiment

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const (
	LABEL_POSITIVE = "positive"
	LABEL_NEGATIVE = "negative"
	LABEL_NEUTRAL  = "neutral"
)

// Vocabulary is the public spelling of the three sentiments returned to
// callers.
type Vocabulary struct {
	Positive string
	Negative string
	Neutral  string
}

var (
	English = Vocabulary{Positive: "positive", Negative: "negative", Neutral: "neutral"}
	Korean  = Vocabulary{Positive: "긍정", Negative: "부정", Neutral: "중립"}
)

func VocabularyFor(language string) (Vocabulary, error) {
	switch strings.ToLower(language) {
	case "", "en":
		return English, nil
	case "ko":
		return Korean, nil
	default:
		return Vocabulary{}, fmt.Errorf("unsupported sentiment language %q", language)
	}
}

// LabelMapper maps raw classifier labels onto a Vocabulary. Labels outside
// the positive/negative/neutral table fall back to neutral and are counted.
type LabelMapper struct {
	table     map[string]string
	neutral   string
	fallbacks atomic.Int64
}

func NewLabelMapper(vocab Vocabulary) *LabelMapper {
	return &LabelMapper{
		table: map[string]string{
			LABEL_POSITIVE: vocab.Positive,
			LABEL_NEGATIVE: vocab.Negative,
			LABEL_NEUTRAL:  vocab.Neutral,
		},
		neutral: vocab.Neutral,
	}
}

// Map is case-insensitive on the raw label.
func (m *LabelMapper) Map(raw string) (string, bool) {
	if sentiment, ok := m.table[strings.ToLower(raw)]; ok {
		return sentiment, true
	}
	m.fallbacks.Add(1)
	return m.neutral, false
}

func (m *LabelMapper) Neutral() string {
	return m.neutral
}

func (m *LabelMapper) FallbackCount() int64 {
	return m.fallbacks.Load()
}
