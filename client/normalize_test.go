package client

import (
	"reflect"
	"testing"
)

func TestNormalizeContentShapeDefaultsAnalysis(t *testing.T) {
	res, err := Normalize([]byte(`{"content":"X","analysis":{"wordCount":5}}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Shape != ShapeContent {
		t.Errorf("expected content shape, got %s", res.Shape)
	}
	if res.Content != "X" {
		t.Errorf("expected content X, got %q", res.Content)
	}
	if res.Analysis == nil {
		t.Fatal("expected analysis")
	}
	want := SeoAnalysis{WordCount: 5, Readability: ReadabilityNotAvailable, KeywordDensity: 0, Suggestions: []string{}}
	if !reflect.DeepEqual(*res.Analysis, want) {
		t.Errorf("analysis = %+v, want %+v", *res.Analysis, want)
	}
}

func TestNormalizeBareString(t *testing.T) {
	res, err := Normalize([]byte(`"hello"`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Shape != ShapeString || res.Content != "hello" || res.Analysis != nil {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestNormalizeTextShapePrefersSeo(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		suggestions []string
		readability string
	}{
		{
			name:        "seo only",
			body:        `{"text":"Y","seo":{"suggestions":["add more headings"]}}`,
			suggestions: []string{"add more headings"},
			readability: ReadabilityNotAvailable,
		},
		{
			name:        "seo wins over analysis",
			body:        `{"text":"Y","seo":{"readability":"easy"},"analysis":{"readability":"hard"}}`,
			suggestions: []string{},
			readability: "easy",
		},
		{
			name:        "analysis when seo missing",
			body:        `{"text":"Y","analysis":{"readability":62.5}}`,
			suggestions: []string{},
			readability: "62.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Normalize([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if res.Shape != ShapeText || res.Content != "Y" {
				t.Fatalf("unexpected result %+v", res)
			}
			if res.Analysis == nil {
				t.Fatal("expected analysis")
			}
			if !reflect.DeepEqual(res.Analysis.Suggestions, tt.suggestions) {
				t.Errorf("suggestions = %v, want %v", res.Analysis.Suggestions, tt.suggestions)
			}
			if res.Analysis.Readability != tt.readability {
				t.Errorf("readability = %q, want %q", res.Analysis.Readability, tt.readability)
			}
		})
	}
}

func TestNormalizeFallback(t *testing.T) {
	res, err := Normalize([]byte(`{"foo":"bar"}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Shape != ShapeFallback {
		t.Errorf("expected fallback, got %s", res.Shape)
	}
	want := "{\n  \"foo\": \"bar\"\n}"
	if res.Content != want {
		t.Errorf("content = %q, want %q", res.Content, want)
	}
	if res.Analysis != nil {
		t.Errorf("fallback must not carry analysis")
	}

	again, _ := Normalize([]byte(`{"foo":"bar"}`))
	if again.Content != res.Content {
		t.Errorf("fallback rendering is not stable")
	}
}

func TestNormalizeAlwaysYieldsContent(t *testing.T) {
	bodies := []string{
		`{}`,
		`[]`,
		`[1,2,3]`,
		`42`,
		`true`,
		`null`,
		`{"content":null}`,
		`{"text":null,"other":1}`,
		`{"content":{"nested":true}}`,
		`{"analysis":{"wordCount":3}}`,
	}
	for _, b := range bodies {
		res, err := Normalize([]byte(b))
		if err != nil {
			t.Errorf("Normalize(%s) failed: %v", b, err)
			continue
		}
		if res.Content == "" {
			t.Errorf("Normalize(%s) produced empty content", b)
		}
	}
}

func TestNormalizeNullContentFallsThrough(t *testing.T) {
	res, err := Normalize([]byte(`{"content":null,"text":"T"}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Shape != ShapeText || res.Content != "T" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestNormalizeAnalysisFields(t *testing.T) {
	body := `{"content":"C","analysis":{"wordCount":-3,"readability":75,"keywordDensity":2.5,"suggestions":["a",null,"b"]}}`
	res, err := Normalize([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	a := res.Analysis
	if a.WordCount != 0 {
		t.Errorf("negative word count must clamp to 0, got %d", a.WordCount)
	}
	if a.Readability != "75" {
		t.Errorf("readability = %q", a.Readability)
	}
	if a.KeywordDensity != 2.5 {
		t.Errorf("keywordDensity = %v", a.KeywordDensity)
	}
	if !reflect.DeepEqual(a.Suggestions, []string{"a", "b"}) {
		t.Errorf("suggestions = %v", a.Suggestions)
	}
}

func TestNormalizeNonObjectAnalysisIsAbsent(t *testing.T) {
	res, err := Normalize([]byte(`{"content":"C","analysis":5}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Analysis != nil {
		t.Errorf("expected no analysis, got %+v", res.Analysis)
	}
}

func TestNormalizeRejectsNonJSON(t *testing.T) {
	for _, b := range []string{"", "   ", "<html>", `{"content":`, "hello"} {
		if _, err := Normalize([]byte(b)); err == nil {
			t.Errorf("expected error for %q", b)
		}
	}
}
