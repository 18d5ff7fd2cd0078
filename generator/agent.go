package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"content_generation_suite/form"
	"content_generation_suite/logger"
)

// Output 是一次生成的正文与分析。
type Output struct {
	Content  string
	Analysis Analysis
}

// Agent 负责根据表单生成内容并计算 SEO 分析。
type Agent struct {
	llm    LLMClient
	logger *slog.Logger
}

func NewAgent(llm LLMClient, l *slog.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if l == nil {
		l = logger.Default()
	}
	return &Agent{llm: llm, logger: l}, nil
}

// Generate builds the prompt, calls the model and analyzes the result.
func (a *Agent) Generate(ctx context.Context, in form.Input) (Output, error) {
	if !in.HasTopic() {
		return Output{}, &form.ValidationError{Field: "topic"}
	}
	prompt := BuildPrompt(in)
	a.logger.Debug("[generator] prompt sent", "prompt", prompt.User)

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return Output{}, err
	}
	content := strings.TrimSpace(raw)
	if content == "" {
		return Output{}, errors.New("model returned empty content")
	}
	a.logger.Debug("[generator] response received", "content", content)

	return Output{Content: content, Analysis: Analyze(content, in)}, nil
}
