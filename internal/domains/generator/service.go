package generator

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bloghub-backend/internal/domains/post/model"
)

// ErrGenerationFailed covers missing credentials, quota exhaustion and
// network failures. Callers surface it as recoverable and user-retryable;
// it must never block manual content entry.
var ErrGenerationFailed = errors.New("failed to generate content")

// TextCompleter is the prompt-completion contract. The OpenAI client in
// infrastructure/ai satisfies it; tests inject a fake.
type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const systemPrompt = "You are a professional blog writer. You write high-quality, SEO-friendly blog content."

// GenerateRequest - POST /v1/generate
type GenerateRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
}

func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Category,
			validation.Required.Error("category is required"),
			validation.In(categoryValues()...).Error("unknown category"),
		),
		validation.Field(&r.Title,
			validation.Length(0, 200),
		),
	)
}

func categoryValues() []interface{} {
	values := make([]interface{}, len(model.Categories))
	for i, c := range model.Categories {
		values[i] = c
	}
	return values
}

// Service builds the generation prompt and delegates to the completion
// provider. Each call is a fresh request: no caching, no retry.
type Service struct {
	client TextCompleter
}

func NewService(client TextCompleter) *Service {
	return &Service{client: client}
}

// Generate produces blog post body text for a category and optional title.
func (s *Service) Generate(ctx context.Context, category, title string) (string, error) {
	prompt := buildPrompt(category, title)

	text, err := s.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("AI generation failed")
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return text, nil
}

func buildPrompt(category, title string) string {
	topic := ""
	if title != "" {
		topic = fmt.Sprintf(` and the topic/title: %q`, title)
	}

	return fmt.Sprintf(`Write a professional and engaging blog post content for the category: %s%s.
The output should be the body of the blog post only. Use markdown for formatting if appropriate.
Format it so it's ready to be published. Do not include the title in the output if a title was provided.`, category, topic)
}
