package workers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"
)

func newAnthropic(_ context.Context, credential, model string) (Worker, error) {
	llm, err := anthropic.New(anthropic.WithToken(credential), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return &chat{model: llm}, nil
}
