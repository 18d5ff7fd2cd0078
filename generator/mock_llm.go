package generator

import (
	"context"
	"strings"
)

// MockLLM 本地调试用，不调用外部模型，直接把提示词拼成一篇 Markdown。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	lines := strings.Split(strings.TrimSpace(prompt.User), "\n")
	var sb strings.Builder
	sb.WriteString("# Draft\n\n")
	sb.WriteString("This is placeholder content generated without calling a model.\n\n")
	sb.WriteString("## Brief\n\n")
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
