package sentiment

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/newsmood/internal/models"
)

const VADER_THRESHOLD = 0.20

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// VaderClassifier is a lexicon based classifier. It needs no model download
// and is safe for concurrent use.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1") // keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup so
// only the visible words are scored.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		// no smartypants, so apostrophes reach the lexicon unchanged.
		// Renderers hold state and are built per call.
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: blackfriday.HTMLFlagsNone,
		})))
	plainText := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(output), " "))

	return strings.Join(strings.Fields(plainText), " ")
}

func (v *VaderClassifier) Classify(ctx context.Context, text string) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}

	score := v.analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound

	var label string
	if score >= VADER_THRESHOLD {
		label = LABEL_POSITIVE
	} else if score <= -VADER_THRESHOLD {
		label = LABEL_NEGATIVE
	} else {
		label = LABEL_NEUTRAL
	}

	return models.Prediction{Label: label, Score: score}, nil
}
