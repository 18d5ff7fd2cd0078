package generator

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"content_generation_suite/form"
)

// Analysis mirrors the "analysis" object of the /generate response.
type Analysis struct {
	WordCount      int
	Readability    int // Flesch reading ease, 0..100
	KeywordDensity float64
	Suggestions    []string
}

const (
	minBlogWords      = 300
	maxSocialChars    = 280
	maxKeywordDensity = 3.0
	minReadability    = 50
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	headingLine = regexp.MustCompile(`(?m)^#{2,6}\s+\S`)
)

// Analyze 计算字数、可读性、关键词密度，并给出建议。
func Analyze(content string, in form.Input) Analysis {
	words := tokenize(content)
	a := Analysis{
		WordCount:   len(words),
		Readability: readingEase(content, words),
		Suggestions: []string{},
	}

	keywords := splitKeywords(in.Keywords)
	var matched int
	for _, kw := range keywords {
		n := countPhrase(words, kw)
		if n == 0 {
			a.Suggestions = append(a.Suggestions, fmt.Sprintf("Include the keyword %q", strings.Join(kw, " ")))
		}
		matched += n * len(kw)
	}
	if len(words) > 0 {
		a.KeywordDensity = math.Round(float64(matched)/float64(len(words))*10000) / 100
	}

	if a.KeywordDensity > maxKeywordDensity {
		a.Suggestions = append(a.Suggestions, "Reduce keyword repetition to avoid keyword stuffing")
	}
	if len(words) > 0 && a.Readability < minReadability {
		a.Suggestions = append(a.Suggestions, "Use shorter sentences and simpler words to improve readability")
	}
	switch in.ContentType {
	case form.ContentBlog:
		if !headingLine.MatchString(content) {
			a.Suggestions = append(a.Suggestions, "Add more headings to structure the post")
		}
		if len(words) < minBlogWords {
			a.Suggestions = append(a.Suggestions, fmt.Sprintf("Expand the post to at least %d words", minBlogWords))
		}
	case form.ContentSocial:
		if len([]rune(content)) > maxSocialChars {
			a.Suggestions = append(a.Suggestions, fmt.Sprintf("Trim the post to %d characters", maxSocialChars))
		}
	}
	return a
}

// tokenize 返回小写、去掉首尾标点的单词。
func tokenize(s string) []string {
	fields := strings.Fields(s)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(strings.ToLower(f), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func splitKeywords(raw string) [][]string {
	var out [][]string
	for _, part := range strings.Split(raw, ",") {
		if kw := tokenize(part); len(kw) > 0 {
			out = append(out, kw)
		}
	}
	return out
}

func countPhrase(words, phrase []string) int {
	n := 0
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

// readingEase 计算 Flesch reading ease，并限制在 0..100。
func readingEase(content string, words []string) int {
	if len(words) == 0 {
		return 0
	}
	sentences := len(sentenceEnd.FindAllStringIndex(content, -1))
	if sentences == 0 {
		sentences = 1
	}
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}
	wc := float64(len(words))
	score := 206.835 - 1.015*(wc/float64(sentences)) - 84.6*(float64(syllables)/wc)
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func countSyllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range word {
		v := strings.ContainsRune("aeiouy", r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
