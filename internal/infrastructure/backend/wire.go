package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/doeshing/unlp/internal/domain"
)

type processRequestBody struct {
	Text    string         `json:"text"`
	APIKey  string         `json:"api_key"`
	Model   string         `json:"model"`
	Options processOptions `json:"options"`
}

type processOptions struct {
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	TopP         *float64 `json:"top_p,omitempty"`
	EnableSearch bool     `json:"enable_search,omitempty"`
	EnableCode   bool     `json:"enable_code,omitempty"`
}

type processResponseBody struct {
	Intent         string                 `json:"intent"`
	Result         string                 `json:"result"`
	Model          string                 `json:"model"`
	TokensUsed     *int                   `json:"tokens_used"`
	ProcessingTime float64                `json:"processing_time"`
	Metadata       map[string]interface{} `json:"metadata"`
}

type errorResponseBody struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
	Code   string          `json:"code"`
}

type modelsResponseBody struct {
	Models []domain.ModelDescriptor `json:"models"`
}

func newProcessRequestBody(req domain.ProcessRequest) processRequestBody {
	return processRequestBody{
		Text:   req.Text,
		APIKey: req.Credential.Secret(),
		Model:  req.ModelID,
		Options: processOptions{
			Temperature:  req.Options.Temperature,
			MaxTokens:    req.Options.MaxTokens,
			TopP:         req.Options.TopP,
			EnableSearch: req.Options.EnableSearch,
			EnableCode:   req.Options.EnableCode,
		},
	}
}

func (b processResponseBody) toResult() domain.ProcessingResult {
	result := domain.ProcessingResult{
		Intent:                b.Intent,
		Payload:               b.Result,
		ProcessingTimeSeconds: b.ProcessingTime,
		ModelName:             b.Model,
	}
	if b.TokensUsed != nil && *b.TokensUsed > 0 {
		result.TokensUsed = *b.TokensUsed
	}
	if result.ProcessingTimeSeconds < 0 {
		result.ProcessingTimeSeconds = 0
	}
	if name, ok := b.Metadata["model_name"].(string); ok && name != "" {
		result.ModelName = name
	}
	return result
}

// message picks the most useful text out of an error body.
func (b errorResponseBody) message() string {
	if msg := rawText(b.Error); msg != "" {
		return msg
	}
	if msg := validationText(b.Detail); msg != "" {
		return msg
	}
	return rawText(b.Detail)
}

// validationText joins the msg fields of a FastAPI style validation list.
func validationText(raw json.RawMessage) string {
	var items []struct {
		Loc []interface{} `json:"loc"`
		Msg string        `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg == "" {
			continue
		}
		if len(item.Loc) == 0 {
			msgs = append(msgs, item.Msg)
			continue
		}
		parts := make([]string, len(item.Loc))
		for i, part := range item.Loc {
			parts[i] = fmt.Sprint(part)
		}
		msgs = append(msgs, strings.Join(parts, ".")+": "+item.Msg)
	}
	return strings.Join(msgs, "; ")
}

// rawText renders a JSON string as-is and any other JSON value compactly.
func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
