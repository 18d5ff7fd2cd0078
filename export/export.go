// Package export 提供复制到剪贴板和下载为文件两种导出方式，均为尽力而为。
package export

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"content_generation_suite/form"
	"content_generation_suite/logger"
)

// Clipboard 是平台剪贴板能力。
type Clipboard interface {
	WriteAll(text string) error
}

// Saver 是平台"下载文件"能力。
type Saver interface {
	Save(name string, data []byte) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this platform")
	}
	return clipboard.WriteAll(text)
}

// SystemClipboard 返回基于系统剪贴板的实现。
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

// DirSaver writes downloads into Dir, creating it when needed.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Save(name string, data []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, safeFileName(name)), data, 0o644)
}

// Exporter 对当前草稿执行导出。
type Exporter struct {
	clip   Clipboard
	saver  Saver
	logger *slog.Logger
}

func New(clip Clipboard, saver Saver, l *slog.Logger) *Exporter {
	if clip == nil {
		clip = SystemClipboard()
	}
	if saver == nil {
		saver = DirSaver{Dir: "."}
	}
	if l == nil {
		l = logger.Default()
	}
	return &Exporter{clip: clip, saver: saver, logger: l}
}

// CopyToClipboard 写入剪贴板；失败只记录日志并返回，不会中断流程。
func (e *Exporter) CopyToClipboard(text string) error {
	if err := e.clip.WriteAll(text); err != nil {
		e.logger.Warn("[export] failed to copy text", "error", err)
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	e.logger.Info("[export] copied to clipboard", "bytes", len(text))
	return nil
}

// DownloadAsFile saves text as a plain-text file. Failures are logged only.
func (e *Exporter) DownloadAsFile(text, name string) {
	if err := e.saver.Save(name, []byte(text)); err != nil {
		e.logger.Warn("[export] download failed", "name", name, "error", err)
		return
	}
	e.logger.Info("[export] downloaded", "name", name, "bytes", len(text))
}

// DownloadAsHTML 将 Markdown 草稿渲染为 HTML 后保存。
func (e *Exporter) DownloadAsHTML(markdown, title, name string) {
	page, err := RenderHTML(markdown, title)
	if err != nil {
		e.logger.Warn("[export] render html failed", "name", name, "error", err)
		return
	}
	e.DownloadAsFile(page, name)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SuggestedName 生成 "<contentType>-<topic>.<ext>"，topic 中每段连续空白替换为 "-"。
func SuggestedName(ct form.ContentType, topic, ext string) string {
	slug := whitespaceRun.ReplaceAllString(topic, "-")
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "txt"
	}
	return fmt.Sprintf("%s-%s.%s", ct, slug, ext)
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts markdown into a standalone HTML page.
func RenderHTML(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func safeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "download.txt"
	}
	return name
}
