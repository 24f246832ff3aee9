package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	lastSystem string
	lastPrompt string
	reply      string
	err        error
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestGenerate(t *testing.T) {
	completer := &fakeCompleter{reply: "## A fresh take on travel\n\nPacking light changes everything."}
	svc := NewService(completer)

	text, err := svc.Generate(context.Background(), "travel", "Packing Light")

	require.NoError(t, err)
	assert.Equal(t, completer.reply, text)
	assert.Contains(t, completer.lastPrompt, "travel")
	assert.Contains(t, completer.lastPrompt, `"Packing Light"`)
	assert.Contains(t, completer.lastSystem, "blog writer")
}

func TestGenerateWithoutTitle(t *testing.T) {
	completer := &fakeCompleter{reply: "body"}
	svc := NewService(completer)

	_, err := svc.Generate(context.Background(), "food", "")

	require.NoError(t, err)
	assert.Contains(t, completer.lastPrompt, "food")
	assert.False(t, strings.Contains(completer.lastPrompt, "topic/title"), "no topic clause when title is empty")
}

func TestGenerateProviderFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	svc := NewService(completer)

	_, err := svc.Generate(context.Background(), "tech", "")

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerateRequest
		wantErr bool
	}{
		{"valid", GenerateRequest{Category: "tech", Title: "Why Go"}, false},
		{"valid without title", GenerateRequest{Category: "food"}, false},
		{"missing category", GenerateRequest{Title: "Why Go"}, true},
		{"unknown category", GenerateRequest{Category: "blockchain"}, true},
		{"title too long", GenerateRequest{Category: "tech", Title: strings.Repeat("x", 201)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				var verr validation.Errors
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
