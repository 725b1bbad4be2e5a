package domain

// ProcessOptions are the optional generation knobs forwarded to the backend.
type ProcessOptions struct {
	Temperature  *float64
	MaxTokens    *int
	TopP         *float64
	EnableSearch bool
	EnableCode   bool
}

// ProcessRequest is everything the processing collaborator needs for one dispatch.
type ProcessRequest struct {
	Text       string
	Credential Credential
	ModelID    string
	Options    ProcessOptions
}

// ProcessingResult is the backend's answer. The core only inspects Payload.
type ProcessingResult struct {
	Intent                string  `json:"intent"`
	Payload               string  `json:"payload"`
	TokensUsed            int     `json:"tokens_used"`
	ProcessingTimeSeconds float64 `json:"processing_time"`
	ModelName             string  `json:"model_name"`
}
