package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/spacesedan/newsmood/internal/clients"
	"github.com/spacesedan/newsmood/internal/models"
)

const openAIPrompt = `You classify the sentiment of news article summaries.
Answer with exactly one lowercase word and nothing else: positive, negative, or neutral.`

// OpenAIClassifier asks a chat model for a single sentiment word.
type OpenAIClassifier struct {
	client *clients.OpenAIClient
}

func NewOpenAIClassifier(client *clients.OpenAIClient) *OpenAIClassifier {
	return &OpenAIClassifier{client: client}
}

func (o *OpenAIClassifier) Classify(ctx context.Context, text string) (models.Prediction, error) {
	completion, err := o.client.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAIPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(o.client.Model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return models.Prediction{}, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return models.Prediction{}, errors.New("openai returned no choices")
	}

	return models.Prediction{
		Label: CleanCompletionLabel(completion.Choices[0].Message.Content),
		Score: 1,
	}, nil
}

// CleanCompletionLabel reduces a chat answer such as "Positive." to the bare
// label word. Anything unrecognised is passed through for the label mapper to
// handle.
func CleanCompletionLabel(content string) string {
	cleaned := strings.ToLower(strings.TrimSpace(content))
	cleaned = strings.Trim(cleaned, " \t\n.!\"'`")
	if fields := strings.Fields(cleaned); len(fields) > 0 {
		return fields[0]
	}
	return cleaned
}
