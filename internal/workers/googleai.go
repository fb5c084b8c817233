package workers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/googleai"
)

func newGemini(ctx context.Context, credential, model string) (Worker, error) {
	llm, err := googleai.New(ctx, googleai.WithAPIKey(credential), googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("googleai: %w", err)
	}
	// this adapter rejects a standalone system role
	return &chat{model: llm, inlineSystem: true}, nil
}
