package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode bool
		wantRule string
	}{
		{name: "empty", text: "", wantCode: false},
		{name: "fenced js", text: "```js\nconst x=1\n```", wantCode: true, wantRule: "fenced-block"},
		{name: "plain sentence", text: "Paris is the capital of France.", wantCode: false},
		{name: "python import", text: "import os", wantCode: true, wantRule: "import-statement"},
		{name: "es import", text: "import React from 'react'", wantCode: true, wantRule: "import-statement"},
		{name: "from import", text: "from collections import deque", wantCode: true, wantRule: "import-statement"},
		{name: "js function", text: "function add(a, b) {\n  return a + b\n}", wantCode: true, wantRule: "function-declaration"},
		{name: "python def", text: "def greet(name):\n    print(name)", wantCode: true, wantRule: "function-declaration"},
		{name: "go func", text: "func (s *Server) Start() error", wantCode: true, wantRule: "function-declaration"},
		{name: "class", text: "class Animal:\n    pass", wantCode: true, wantRule: "class-declaration"},
		{name: "braces", text: "settings = {debug: true}", wantCode: true, wantRule: "brace-block"},
		{name: "markup", text: "<div class=\"x\">hi</div>", wantCode: true, wantRule: "markup-tag"},
		{name: "const assignment", text: "const total = 3", wantCode: true, wantRule: "assignment"},
		{name: "short assignment", text: "n := 3", wantCode: true, wantRule: "assignment"},
		{name: "important is not import", text: "It is important to rest.", wantCode: false},
		{name: "comparison prose", text: "Three is < four and five > two.", wantCode: false},
		{name: "summary prose", text: "The article argues that remote work improves focus.\nIt cites two studies.", wantCode: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantRule != "" {
				assert.Equal(t, tt.wantRule, got.Rule)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	inputs := []string{"import os", "Paris is the capital of France.", "<b>bold</b>", ""}
	for _, in := range inputs {
		first := Classify(in)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Classify(in))
		}
		assert.Equal(t, first.Code, IsCode(in))
	}
}
