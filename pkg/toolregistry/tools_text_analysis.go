package toolregistry

import (
	"regexp"
	"sort"
	"strings"
)

var textAnalysisStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "is": true, "it": true, "this": true,
	"that": true, "was": true, "are": true, "be": true, "has": true, "had": true,
	"have": true, "not": true, "no": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "shall": true, "so": true, "if": true, "then": true,
	"than": true, "as": true, "up": true, "out": true, "about": true, "into": true,
	"over": true, "after": true, "i": true, "me": true, "my": true, "we": true,
	"our": true, "you": true, "your": true, "he": true, "she": true, "they": true,
	"them": true, "its": true, "his": true, "her": true, "their": true, "all": true,
	"each": true, "every": true, "both": true, "few": true, "more": true, "most": true,
	"other": true, "some": true, "such": true, "only": true, "own": true, "same": true,
	"just": true, "also": true, "very": true, "even": true, "how": true, "what": true,
	"which": true, "who": true, "when": true, "where": true, "why": true, "been": true,
	"being": true, "because": true, "between": true, "through": true, "during": true,
	"before": true, "while": true, "these": true, "those": true, "am": true,
}

var textAnalysisOperations = map[string]bool{
	"word_count": true, "sentence_count": true, "char_count": true, "key_terms": true,
	"complexity_score": true, "paragraph_count": true, "avg_word_length": true,
	"unique_words": true, "full_report": true,
}

var reSentenceSplit = regexp.MustCompile(`[.!?]+`)
var reWordToken = regexp.MustCompile(`\b[a-zA-Z]+\b`)
var reParagraphSplit = regexp.MustCompile(`\n\s*\n`)

// TextAnalysisTool computes word/sentence/character counts, key terms, and
// a simple readability score over free text.
type TextAnalysisTool struct{}

func (TextAnalysisTool) Name() string { return "text_analysis" }
func (TextAnalysisTool) Description() string {
	return "Analyze text for word count, sentence count, key terms, complexity, and more. " +
		"Required args: text (string), operation (string). " +
		"Operations: word_count, sentence_count, char_count, key_terms, " +
		"complexity_score, paragraph_count, avg_word_length, unique_words, full_report."
}

func (TextAnalysisTool) Execute(args map[string]any) map[string]any {
	text, _ := args["text"].(string)
	operation, _ := args["operation"].(string)
	operation = strings.ToLower(strings.TrimSpace(operation))

	if text == "" {
		return map[string]any{"error": "text is required"}
	}
	if operation == "" {
		return map[string]any{"error": "operation is required"}
	}
	if !textAnalysisOperations[operation] {
		names := make([]string, 0, len(textAnalysisOperations))
		for k := range textAnalysisOperations {
			names = append(names, k)
		}
		sort.Strings(names)
		return map[string]any{"error": "unknown operation '" + operation + "'. Valid: " + strings.Join(names, ", ")}
	}

	if operation == "full_report" {
		return textFullReport(text)
	}

	switch operation {
	case "word_count":
		return textWordCount(text)
	case "sentence_count":
		return textSentenceCount(text)
	case "char_count":
		return textCharCount(text)
	case "key_terms":
		return textKeyTerms(text)
	case "complexity_score":
		return textComplexityScore(text)
	case "paragraph_count":
		return textParagraphCount(text)
	case "avg_word_length":
		return textAvgWordLength(text)
	case "unique_words":
		return textUniqueWords(text)
	default:
		return map[string]any{"error": "operation '" + operation + "' not implemented"}
	}
}

func textWordCount(text string) map[string]any {
	return map[string]any{"word_count": len(strings.Fields(text))}
}

func textSentenceCount(text string) map[string]any {
	sentences := reSentenceSplit.Split(text, -1)
	count := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return map[string]any{"sentence_count": count}
}

func textCharCount(text string) map[string]any {
	runes := []rune(text)
	noSpaces := strings.ReplaceAll(text, " ", "")
	return map[string]any{"char_count": len(runes), "char_count_no_spaces": len([]rune(noSpaces))}
}

func textKeyTerms(text string) map[string]any {
	words := reWordToken.FindAllString(strings.ToLower(text), -1)
	counts := map[string]int{}
	order := make([]string, 0, len(words))
	for _, w := range words {
		if textAnalysisStopWords[w] || len(w) <= 2 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	top := order
	if len(top) > 10 {
		top = top[:10]
	}
	terms := make([]any, len(top))
	for i, t := range top {
		terms[i] = map[string]any{"term": t, "count": counts[t]}
	}
	return map[string]any{"key_terms": terms}
}

func textComplexityScore(text string) map[string]any {
	words := strings.Fields(text)
	wordCount := len(words)
	if wordCount == 0 {
		return map[string]any{"complexity_score": 0.0, "level": "trivial"}
	}
	sentences := reSentenceSplit.Split(text, -1)
	sentenceCount := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			sentenceCount++
		}
	}
	if sentenceCount < 1 {
		sentenceCount = 1
	}
	var totalLen int
	for _, w := range words {
		totalLen += len([]rune(w))
	}
	avgWordLen := float64(totalLen) / float64(wordCount)
	avgSentenceLen := float64(wordCount) / float64(sentenceCount)
	score := round2(avgWordLen*1.5 + avgSentenceLen*0.5)
	level := "simple"
	if score >= 20 {
		level = "complex"
	} else if score >= 12 {
		level = "moderate"
	}
	return map[string]any{
		"complexity_score":     score,
		"level":                level,
		"avg_word_length":      round2(avgWordLen),
		"avg_sentence_length":  round2(avgSentenceLen),
	}
}

func textParagraphCount(text string) map[string]any {
	paragraphs := reParagraphSplit.Split(text, -1)
	count := 0
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	if count == 0 && strings.TrimSpace(text) != "" {
		count = 1
	}
	return map[string]any{"paragraph_count": count}
}

func textAvgWordLength(text string) map[string]any {
	words := strings.Fields(text)
	if len(words) == 0 {
		return map[string]any{"avg_word_length": 0.0}
	}
	var total int
	for _, w := range words {
		total += len([]rune(w))
	}
	return map[string]any{"avg_word_length": round2(float64(total) / float64(len(words)))}
}

func textUniqueWords(text string) map[string]any {
	words := reWordToken.FindAllString(strings.ToLower(text), -1)
	seen := map[string]bool{}
	var unique []string
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			unique = append(unique, w)
		}
	}
	sort.Strings(unique)
	if unique == nil {
		unique = []string{}
	}
	return map[string]any{"unique_words": unique, "unique_count": len(unique), "total_count": len(words)}
}

func textFullReport(text string) map[string]any {
	report := map[string]any{"operation": "full_report"}
	merge := func(m map[string]any) {
		for k, v := range m {
			report[k] = v
		}
	}
	merge(textWordCount(text))
	merge(textSentenceCount(text))
	merge(textCharCount(text))
	merge(textKeyTerms(text))
	merge(textComplexityScore(text))
	merge(textParagraphCount(text))
	merge(textUniqueWords(text))
	return report
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
