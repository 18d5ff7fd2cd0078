package generator

import (
	"fmt"
	"strings"

	"content_generation_suite/form"
)

// Prompt 表示发送给 LLM 的消息。
type Prompt struct {
	System string
	User   string
}

// BuildPrompt 按表单字段生成提示词。
func BuildPrompt(in form.Input) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a %s about %s.\n", in.ContentType, in.Topic))
	sb.WriteString(fmt.Sprintf("Tone: %s\n", in.Tone))
	sb.WriteString(fmt.Sprintf("Target audience: %s\n", in.Audience))
	sb.WriteString(fmt.Sprintf("Keywords to include: %s\n", in.Keywords))
	sb.WriteString("\nMake it engaging and professional.")
	if hint := formatHint(in.ContentType); hint != "" {
		sb.WriteString("\n")
		sb.WriteString(hint)
	}
	return Prompt{User: sb.String()}
}

func formatHint(ct form.ContentType) string {
	switch ct {
	case form.ContentBlog:
		return "Use Markdown with a title and subheadings."
	case form.ContentSocial:
		return "Keep it short enough for a single social media post."
	case form.ContentEmail:
		return "Include a subject line, a greeting and a sign-off."
	}
	return ""
}
