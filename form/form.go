package form

import (
	"fmt"
	"strings"
)

// ContentType 生成内容的类别。
type ContentType string

const (
	ContentBlog   ContentType = "blog"
	ContentSocial ContentType = "social"
	ContentEmail  ContentType = "email"
)

// ContentTypes 按表单展示顺序列出全部类别。
var ContentTypes = []ContentType{ContentBlog, ContentSocial, ContentEmail}

func (c ContentType) Valid() bool {
	switch c {
	case ContentBlog, ContentSocial, ContentEmail:
		return true
	}
	return false
}

// Tone 生成内容的语气。
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneCasual         Tone = "casual"
	ToneFriendly       Tone = "friendly"
	ToneAuthoritative  Tone = "authoritative"
	ToneConversational Tone = "conversational"
)

var Tones = []Tone{ToneProfessional, ToneCasual, ToneFriendly, ToneAuthoritative, ToneConversational}

func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneFriendly, ToneAuthoritative, ToneConversational:
		return true
	}
	return false
}

// Input is the request body sent to the generation service, field for field.
type Input struct {
	ContentType ContentType `json:"contentType"`
	Topic       string      `json:"topic"`
	Tone        Tone        `json:"tone"`
	Audience    string      `json:"audience"`
	Keywords    string      `json:"keywords"`
}

// DefaultInput 返回表单初始值。
func DefaultInput() Input {
	return Input{ContentType: ContentBlog, Tone: ToneProfessional}
}

// HasTopic reports whether the topic contains anything besides whitespace.
func (in Input) HasTopic() bool {
	return strings.TrimSpace(in.Topic) != ""
}

// ValidationError 表示表单字段取值非法。
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: value is required", e.Field)
	}
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Busy 由生命周期状态机实现，用于判断是否有请求在途。
type Busy interface {
	Loading() bool
}

// Model 持有五个表单字段，并给出是否允许提交的派生判断。
type Model struct {
	in   Input
	busy Busy
}

// NewModel 创建带默认值的表单；busy 可为 nil（视为空闲）。
func NewModel(busy Busy) *Model {
	return &Model{in: DefaultInput(), busy: busy}
}

// Attach 绑定状态机，通常在状态机创建后调用。
func (m *Model) Attach(busy Busy) {
	m.busy = busy
}

func (m *Model) ContentType() ContentType { return m.in.ContentType }
func (m *Model) Topic() string            { return m.in.Topic }
func (m *Model) Tone() Tone               { return m.in.Tone }
func (m *Model) Audience() string         { return m.in.Audience }
func (m *Model) Keywords() string         { return m.in.Keywords }

func (m *Model) SetContentType(c ContentType) error {
	if !c.Valid() {
		return &ValidationError{Field: "contentType", Value: string(c)}
	}
	m.in.ContentType = c
	return nil
}

func (m *Model) SetTopic(topic string) { m.in.Topic = topic }

func (m *Model) SetTone(t Tone) error {
	if !t.Valid() {
		return &ValidationError{Field: "tone", Value: string(t)}
	}
	m.in.Tone = t
	return nil
}

func (m *Model) SetAudience(audience string) { m.in.Audience = audience }

// SetKeywords 原样保存逗号分隔的关键词，不在客户端拆分。
func (m *Model) SetKeywords(keywords string) { m.in.Keywords = keywords }

// Input 返回当前字段的副本。
func (m *Model) Input() Input { return m.in }

// IsSubmittable is true when the topic is non-blank and no request is loading.
func (m *Model) IsSubmittable() bool {
	if !m.in.HasTopic() {
		return false
	}
	return m.busy == nil || !m.busy.Loading()
}
