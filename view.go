package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"content_generation_suite/client"
	"content_generation_suite/lifecycle"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	statStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 2).Align(lipgloss.Center)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func renderStatus(s lifecycle.State) string {
	switch s.Phase {
	case lifecycle.PhaseLoading:
		return mutedStyle.Render("Generating...")
	case lifecycle.PhaseSuccess:
		return mutedStyle.Render("Done.")
	case lifecycle.PhaseError:
		return mutedStyle.Render("Failed.")
	}
	return ""
}

// renderState 展示当前状态；draft 为可能被编辑过的正文。
func renderState(s lifecycle.State, draft string) string {
	switch s.Phase {
	case lifecycle.PhaseError:
		return errorStyle.Render(s.Message)
	case lifecycle.PhaseLoading:
		return mutedStyle.Render("Generating...")
	case lifecycle.PhaseIdle:
		return mutedStyle.Render("No content generated yet")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Generated Content"))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(draft))
	if s.Result != nil && s.Result.Analysis != nil {
		b.WriteString("\n")
		b.WriteString(renderAnalysis(s.Result.Analysis))
	}
	return b.String()
}

func renderAnalysis(a *client.SeoAnalysis) string {
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(fmt.Sprintf("%d\nWords", a.WordCount)),
		statStyle.Render(a.Readability+"\nReadability"),
		statStyle.Render(strconv.FormatFloat(a.KeywordDensity, 'f', -1, 64)+"%\nKeyword Density"),
	)

	var b strings.Builder
	b.WriteString(headerStyle.Render("SEO Analysis"))
	b.WriteString("\n")
	b.WriteString(stats)
	if len(a.Suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range a.Suggestions {
			b.WriteString("  • ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return b.String()
}
