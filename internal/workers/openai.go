package workers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

func newOpenAI(_ context.Context, credential, model string) (Worker, error) {
	llm, err := openai.New(openai.WithToken(credential), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return &chat{model: llm}, nil
}
