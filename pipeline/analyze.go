package pipeline

import (
	"fmt"
	"strings"
)

// dataTypeWindow is how many characters of context are returned around a
// matched data-type keyword.
const dataTypeWindow = 100

// limitationTemplate names the matched keyword rather than quoting the
// matched sentence; the short form is intentional.
const limitationTemplate = "The authors acknowledge open issues related to %q that warrant further investigation."

// Analysis is the five-field heuristic extraction derived from one paper's
// abstract. It exists only within a single pipeline run and is never
// persisted.
type Analysis struct {
	PaperTitle     string
	Problem        string
	Methodology    string
	DataType       string
	KeyResults     string
	Limitations    string
	RelevanceScore int
}

// AnalyzeAbstract extracts the five heuristic fields from a paper's
// abstract. It is total: every field is a non-empty string even when no
// keyword matches, falling back to positional sentences or a fixed phrase.
func AnalyzeAbstract(title, abstract string, relevanceScore int) Analysis {
	sentences := splitSentences(abstract)

	return Analysis{
		PaperTitle:     title,
		Problem:        extractProblem(sentences),
		Methodology:    extractMethodology(sentences),
		DataType:       extractDataType(abstract),
		KeyResults:     extractKeyResults(sentences),
		Limitations:    extractLimitations(abstract),
		RelevanceScore: relevanceScore,
	}
}

// splitSentences breaks the abstract on sentence punctuation and keeps
// trimmed fragments longer than ten characters.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var sentences []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); len(s) > 10 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// firstSentenceWith returns the first sentence containing any of the
// keywords, scanning sentences in order.
func firstSentenceWith(sentences []string, keywords []string) (string, bool) {
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return s, true
			}
		}
	}
	return "", false
}

func extractProblem(sentences []string) string {
	if s, ok := firstSentenceWith(sentences, problemKeywords); ok {
		return s
	}
	if len(sentences) > 0 {
		return sentences[0]
	}
	return fallbackProblem
}

func extractMethodology(sentences []string) string {
	if s, ok := firstSentenceWith(sentences, methodologyKeywords); ok {
		return s
	}
	if len(sentences) > 1 {
		return sentences[1]
	}
	return fallbackMethodology
}

// extractDataType scans the whole abstract and returns a fixed-size window
// of text starting at the first matched keyword. Folding only ASCII letters
// keeps byte offsets identical between the folded and original text, so the
// index stays valid for abstracts containing multi-byte runes.
func extractDataType(abstract string) string {
	lower := strings.Map(asciiLower, abstract)
	for _, kw := range dataTypeKeywords {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		end := idx + dataTypeWindow
		if end > len(abstract) {
			end = len(abstract)
		}
		return strings.TrimSpace(abstract[idx:end])
	}
	return fallbackDataType
}

func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func extractKeyResults(sentences []string) string {
	if s, ok := firstSentenceWith(sentences, resultKeywords); ok {
		return s
	}
	if len(sentences) > 0 {
		return sentences[len(sentences)-1]
	}
	return fallbackResults
}

func extractLimitations(abstract string) string {
	lower := strings.ToLower(abstract)
	for _, kw := range limitationKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Sprintf(limitationTemplate, kw)
		}
	}
	return fallbackLimitations
}
