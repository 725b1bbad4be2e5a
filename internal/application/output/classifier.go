// Package output decides how a returned payload should be rendered.
package output

import "regexp"

// Classification is the verdict for one payload.
type Classification struct {
	Code bool
	// Rule names the first heuristic that matched; empty for prose.
	Rule string
}

type heuristic struct {
	name string
	re   *regexp.Regexp
}

// Order matters only for which Rule is reported; any match means code.
var heuristics = []heuristic{
	{name: "fenced-block", re: regexp.MustCompile("```")},
	{name: "function-declaration", re: regexp.MustCompile(`\b(?:function|def|fn)\s+\w+\s*\(|\bfunc\s+(?:\([^)]*\)\s*)?\w+\s*\(`)},
	{name: "class-declaration", re: regexp.MustCompile(`(?m)\bclass\s+\w+\s*(?:[:({<]|\bextends\b|\bimplements\b|$)`)},
	{name: "import-statement", re: regexp.MustCompile(`(?m)^\s*(?:import\s+[\w.{*"'(]|from\s+[\w.]+\s+import\s)|\bimport\s+.*\bfrom\b|^\s*#include\s*[<"]`)},
	{name: "brace-block", re: regexp.MustCompile(`(?s)\{.*\}`)},
	{name: "markup-tag", re: regexp.MustCompile(`<\w+.*>`)},
	{name: "assignment", re: regexp.MustCompile(`\b(?:const|let|var)\s+\w+\s*=|\b\w+\s*:=`)},
}

// Classify runs every heuristic over text. It never fails; misclassification
// only changes how the payload is drawn.
func Classify(text string) Classification {
	if text == "" {
		return Classification{}
	}
	for _, h := range heuristics {
		if h.re.MatchString(text) {
			return Classification{Code: true, Rule: h.name}
		}
	}
	return Classification{}
}

// IsCode is shorthand for Classify(text).Code.
func IsCode(text string) bool {
	return Classify(text).Code
}
