package mockbackend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/doeshing/unlp/internal/domain"
)

// The mock never calls a model; each intent gets a deterministic answer built from the input.

var (
	instructionPrefix = regexp.MustCompile(`(?i)^\s*(please\s+)?(summari[sz]e|translate|analy[sz]e|extract|write|generate|create|compose|draft)[^:\n]*:\s*`)
	sentenceEnd       = regexp.MustCompile(`[.!?](\s|$)`)
	targetLanguage    = regexp.MustCompile(`(?i)\b(?:to|into|in)\s+(english|spanish|french|german|chinese|japanese)\b`)
	entityToken       = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*\b`)
	wordToken         = regexp.MustCompile(`[a-zA-Z']+`)
)

var (
	positiveWords = map[string]bool{"good": true, "great": true, "love": true, "excellent": true, "happy": true, "amazing": true, "wonderful": true, "best": true, "like": true, "enjoy": true}
	negativeWords = map[string]bool{"bad": true, "terrible": true, "hate": true, "awful": true, "sad": true, "worst": true, "poor": true, "angry": true, "disappointing": true, "broken": true}
)

const summaryWordLimit = 30

func respond(intent Intent, text string, opts domain.ProcessOptions) string {
	body := strings.TrimSpace(instructionPrefix.ReplaceAllString(text, ""))
	if body == "" {
		body = strings.TrimSpace(text)
	}
	if opts.EnableCode && intent == IntentCustom {
		return codeAnswer(body)
	}
	switch intent {
	case IntentSummarization:
		return summarize(body)
	case IntentTranslation:
		return translate(text, body)
	case IntentSentiment:
		return sentiment(body)
	case IntentEntityExtraction:
		return entities(body)
	case IntentTextGeneration:
		return generate(body)
	default:
		return fmt.Sprintf("**Request received**\n\n%s\n\n_Answered by the local mock backend._", body)
	}
}

func summarize(body string) string {
	first := body
	if loc := sentenceEnd.FindStringIndex(body); loc != nil {
		first = strings.TrimSpace(body[:loc[0]+1])
	}
	words := strings.Fields(first)
	if len(words) > summaryWordLimit {
		first = strings.Join(words[:summaryWordLimit], " ") + "..."
	}
	return "**Summary:** " + first
}

func translate(original, body string) string {
	language := "English"
	if m := targetLanguage.FindStringSubmatch(original); m != nil {
		language = strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	}
	return fmt.Sprintf("**%s:** %s", language, body)
}

func sentiment(body string) string {
	pos, neg := 0, 0
	for _, word := range wordToken.FindAllString(strings.ToLower(body), -1) {
		switch {
		case positiveWords[word]:
			pos++
		case negativeWords[word]:
			neg++
		}
	}
	label := "neutral"
	switch {
	case pos > neg:
		label = "positive"
	case neg > pos:
		label = "negative"
	}
	return fmt.Sprintf("**Sentiment:** %s\n\nPositive cues: %d, negative cues: %d.", label, pos, neg)
}

func entities(body string) string {
	seen := map[string]bool{}
	var found []string
	for _, match := range entityToken.FindAllString(body, -1) {
		if seen[match] || isSentenceStart(body, match) {
			continue
		}
		seen[match] = true
		found = append(found, match)
	}
	if len(found) == 0 {
		return "No entities found."
	}
	sort.Strings(found)
	var b strings.Builder
	b.WriteString("**Entities:**\n")
	for _, entity := range found {
		b.WriteString("- " + entity + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// isSentenceStart drops single capitalized words that only open the text.
func isSentenceStart(body, match string) bool {
	return strings.HasPrefix(body, match) && !strings.ContainsFunc(match, unicode.IsSpace)
}

func generate(body string) string {
	return fmt.Sprintf("# Draft\n\n%s\n\nThis draft was generated from your prompt by the local mock backend.", body)
}

func codeAnswer(body string) string {
	return fmt.Sprintf("```go\n// %s\nfunc answer() string {\n\treturn %q\n}\n```", firstLine(body), body)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
