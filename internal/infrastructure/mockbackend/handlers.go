package mockbackend

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/unlp/internal/domain"
)

const (
	maxTextLength   = 100000
	minAPIKeyLength = 10
)

type processRequest struct {
	Text    *string        `json:"text"`
	APIKey  *string        `json:"api_key"`
	Model   string         `json:"model"`
	Options processOptions `json:"options"`
}

type processOptions struct {
	Temperature  *float64 `json:"temperature"`
	MaxTokens    *int     `json:"max_tokens"`
	TopP         *float64 `json:"top_p"`
	EnableSearch bool     `json:"enable_search"`
	EnableCode   bool     `json:"enable_code"`
}

type processResponse struct {
	Intent         string                 `json:"intent"`
	Result         string                 `json:"result"`
	Model          string                 `json:"model"`
	TokensUsed     int                    `json:"tokens_used"`
	ProcessingTime float64                `json:"processing_time"`
	Metadata       map[string]interface{} `json:"metadata"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

type validationIssue struct {
	Type  string      `json:"type"`
	Loc   []string    `json:"loc"`
	Msg   string      `json:"msg"`
	Input interface{} `json:"input,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"timestamp":   float64(now.Unix()) + float64(now.Nanosecond())/float64(time.Second),
		"environment": s.env,
	})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": Catalog})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := s.now()

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, []validationIssue{{
			Type: "json_invalid",
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
		}})
		return
	}
	text, issues := validate(req)
	if len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	modelID := req.Model
	if modelID == "" {
		modelID = DefaultModelID
	}
	model := lookupModel(modelID)
	modelID = model.ID
	intent, confidence := DetectIntent(text)
	result := respond(intent, text, domain.ProcessOptions{EnableCode: req.Options.EnableCode})

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
	}

	if s.logger != nil {
		s.logger.Debug("processed request", map[string]interface{}{
			"intent":     string(intent),
			"confidence": confidence,
			"model":      modelID,
		})
	}

	writeJSON(w, http.StatusOK, processResponse{
		Intent:         string(intent),
		Result:         result,
		Model:          modelID,
		TokensUsed:     countTokens(text, result),
		ProcessingTime: roundTo(s.now().Sub(start).Seconds(), 2),
		Metadata: map[string]interface{}{
			"confidence": confidence,
			"model_name": model.Name,
		},
	})
}

// validate mirrors the backend's request model and returns the trimmed text.
func validate(req processRequest) (string, []validationIssue) {
	var issues []validationIssue
	text := ""
	switch {
	case req.Text == nil:
		issues = append(issues, validationIssue{Type: "missing", Loc: []string{"body", "text"}, Msg: "Field required"})
	case strings.TrimSpace(*req.Text) == "":
		issues = append(issues, validationIssue{Type: "value_error", Loc: []string{"body", "text"}, Msg: "Value error, Text cannot be empty", Input: *req.Text})
	case len(*req.Text) > maxTextLength:
		issues = append(issues, validationIssue{Type: "string_too_long", Loc: []string{"body", "text"}, Msg: fmt.Sprintf("String should have at most %d characters", maxTextLength)})
	default:
		text = strings.TrimSpace(*req.Text)
	}

	switch {
	case req.APIKey == nil:
		issues = append(issues, validationIssue{Type: "missing", Loc: []string{"body", "api_key"}, Msg: "Field required"})
	case len(*req.APIKey) < minAPIKeyLength:
		issues = append(issues, validationIssue{Type: "string_too_short", Loc: []string{"body", "api_key"}, Msg: fmt.Sprintf("String should have at least %d characters", minAPIKeyLength)})
	case !strings.HasPrefix(*req.APIKey, domain.CredentialPrefix):
		issues = append(issues, validationIssue{Type: "value_error", Loc: []string{"body", "api_key"}, Msg: "Value error, Invalid Groq API key format"})
	}
	return text, issues
}

func rateLimitMessage(perMinute int) string {
	return fmt.Sprintf("Rate limit exceeded: %d per 1 minute", perMinute)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func writeValidation(w http.ResponseWriter, issues []validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"detail": issues})
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
