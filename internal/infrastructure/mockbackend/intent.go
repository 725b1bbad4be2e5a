package mockbackend

import "regexp"

// Intent is a task family the backend recognizes.
type Intent string

const (
	IntentSummarization    Intent = "summarization"
	IntentTranslation      Intent = "translation"
	IntentSentiment        Intent = "sentiment"
	IntentEntityExtraction Intent = "entity_extraction"
	IntentTextGeneration   Intent = "text_generation"
	IntentCustom           Intent = "custom"
)

type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// Evaluation order matters: ties keep the earlier intent.
var intentRules = []intentRule{
	{IntentSummarization, compileAll(
		`(?i)\b(summarize|summary|tldr|brief|condense|overview)\b`,
		`(?i)\bsum(marize)?\s+(this|the|following)\b`,
	)},
	{IntentTranslation, compileAll(
		`(?i)\b(translate|translation|convert)\b.*\b(to|into|in)\b.*\b(language|english|spanish|french|german|chinese|japanese)\b`,
		`(?i)\b(english|spanish|french|german|chinese|japanese)\s+to\s+(english|spanish|french|german|chinese|japanese)\b`,
	)},
	{IntentSentiment, compileAll(
		`(?i)\b(sentiment|emotion|feeling|tone|mood)\b`,
		`(?i)\b(positive|negative|neutral)\b.*\b(analysis|analyze)\b`,
		`(?i)\banalyze\b.*\b(sentiment|emotion|feeling)\b`,
	)},
	{IntentEntityExtraction, compileAll(
		`(?i)\b(extract|find|identify|list)\b.*\b(entities|names|people|organizations|locations|dates)\b`,
		`(?i)\b(named entity|ner|entity recognition)\b`,
	)},
	{IntentTextGeneration, compileAll(
		`(?i)\b(generate|create|write|compose|draft)\b`,
		`(?i)\b(story|article|essay|email|letter|content)\b`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// DetectIntent scores every rule by the share of its patterns that match and
// returns the best one. Unmatched text is custom with confidence 0.5.
func DetectIntent(text string) (Intent, float64) {
	best, bestScore := IntentCustom, 0.0
	for _, rule := range intentRules {
		hits := 0
		for _, pattern := range rule.patterns {
			if pattern.MatchString(text) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(rule.patterns))
		if score > bestScore {
			best, bestScore = rule.intent, score
		}
	}
	if bestScore == 0 {
		return IntentCustom, 0.5
	}
	return best, bestScore
}
