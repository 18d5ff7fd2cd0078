package client

import (
	"bytes"
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ReadabilityNotAvailable 是响应缺少 readability 时的占位值。
const ReadabilityNotAvailable = "not available"

// Shape 标识响应命中的结构。
type Shape int

const (
	ShapeString Shape = iota + 1
	ShapeContent
	ShapeText
	ShapeFallback
)

func (s Shape) String() string {
	switch s {
	case ShapeString:
		return "string"
	case ShapeContent:
		return "content"
	case ShapeText:
		return "text"
	case ShapeFallback:
		return "fallback"
	}
	return "unknown"
}

// SeoAnalysis 是服务返回的可选 SEO 评估。
type SeoAnalysis struct {
	WordCount      int      `json:"wordCount"`
	Readability    string   `json:"readability"`
	KeywordDensity float64  `json:"keywordDensity"`
	Suggestions    []string `json:"suggestions"`
}

// Result is the canonical form of every generation response.
type Result struct {
	Content  string       `json:"content"`
	Analysis *SeoAnalysis `json:"analysis,omitempty"`
	Shape    Shape        `json:"-"`
}

var errNotJSON = errors.New("body is not valid JSON")

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// matcher 按顺序尝试，第一个命中者生效；fallback 总是命中。
type matcher struct {
	shape Shape
	match func(v gjson.Result) bool
	build func(v gjson.Result) Result
}

var matchers = []matcher{
	{
		shape: ShapeString,
		match: func(v gjson.Result) bool { return v.Type == gjson.String },
		build: func(v gjson.Result) Result {
			return Result{Content: v.Str}
		},
	},
	{
		shape: ShapeContent,
		match: func(v gjson.Result) bool { return hasField(v, "content") },
		build: func(v gjson.Result) Result {
			return Result{
				Content:  text(v.Get("content")),
				Analysis: analysisFrom(v.Get("analysis")),
			}
		},
	},
	{
		shape: ShapeText,
		match: func(v gjson.Result) bool { return hasField(v, "text") },
		build: func(v gjson.Result) Result {
			a := analysisFrom(v.Get("seo"))
			if a == nil {
				a = analysisFrom(v.Get("analysis"))
			}
			return Result{Content: text(v.Get("text")), Analysis: a}
		},
	},
	{
		shape: ShapeFallback,
		match: func(gjson.Result) bool { return true },
		build: func(v gjson.Result) Result {
			return Result{Content: prettyJSON(v.Raw)}
		},
	},
}

// Normalize maps any JSON body to a Result. Only non-JSON input is an error.
func Normalize(body []byte) (Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return Result{}, errNotJSON
	}
	v := gjson.ParseBytes(body)
	for _, m := range matchers {
		if m.match(v) {
			r := m.build(v)
			r.Shape = m.shape
			return r, nil
		}
	}
	// unreachable: the fallback matcher accepts everything
	return Result{Content: prettyJSON(v.Raw), Shape: ShapeFallback}, nil
}

func hasField(v gjson.Result, name string) bool {
	if !v.IsObject() {
		return false
	}
	f := v.Get(name)
	return f.Exists() && f.Type != gjson.Null
}

// text 返回字符串字段的值；非字符串值按 JSON 排版后返回。
func text(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return prettyJSON(v.Raw)
}

func prettyJSON(raw string) string {
	out := pretty.PrettyOptions([]byte(raw), prettyOptions)
	return string(bytes.TrimRight(out, "\n"))
}

func analysisFrom(v gjson.Result) *SeoAnalysis {
	if !v.IsObject() {
		return nil
	}
	a := &SeoAnalysis{
		Readability: ReadabilityNotAvailable,
		Suggestions: []string{},
	}

	if wc := v.Get("wordCount"); wc.Exists() {
		if n := wc.Int(); n > 0 {
			a.WordCount = int(n)
		}
	}

	r := v.Get("readability")
	switch r.Type {
	case gjson.String:
		if r.Str != "" {
			a.Readability = r.Str
		}
	case gjson.Number:
		a.Readability = r.Raw
	}

	if kd := v.Get("keywordDensity"); kd.Exists() {
		a.KeywordDensity = kd.Float()
	}

	if s := v.Get("suggestions"); s.IsArray() {
		for _, item := range s.Array() {
			if item.Type == gjson.Null {
				continue
			}
			a.Suggestions = append(a.Suggestions, item.String())
		}
	}
	return a
}
