package types

// GenerateRequest is the body of POST /generate and POST /conversation/{id}/message.
type GenerateRequest struct {
	// Required prompt text.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Optional model name. If empty, the configured default is used.
	// example: llama3
	Model string `json:"model,omitempty" example:"llama3"`
}

// GenerateResponse carries the generated text.
type GenerateResponse struct {
	// Text returned by the inference server.
	// example: Waves fold into foam
	GeneratedText string `json:"generated_text" example:"Waves fold into foam"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// Models known to the inference server.
	Models []ModelDescriptor `json:"models"`
}

// CapabilitiesResponse is returned by GET /models/capabilities.
type CapabilitiesResponse struct {
	// Model used when a request omits one.
	// example: llama3
	DefaultModel string `json:"default_model" example:"llama3"`
	// Models allowed to receive file uploads.
	// example: ["llava","bakllava"]
	MultimodalModels []string `json:"multimodal_models"`
	// Whether non-listed models are rejected before the upload is staged.
	// example: false
	StrictMultimodal bool `json:"strict_multimodal" example:"false"`
}

// DownloadRequest is the body of POST /models/download.
type DownloadRequest struct {
	// Name of the model to pull.
	// example: llama3
	ModelName string `json:"model_name" example:"llama3"`
}

// StartConversationRequest is the body of POST /conversation/start.
type StartConversationRequest struct {
	// Caller-chosen conversation id.
	// example: s1
	ConvID string `json:"conv_id" example:"s1"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	// example: Conversation 's1' started
	Message string `json:"message" example:"Conversation 's1' started"`
}

// ConversationResponse is returned by GET /conversation/{id}.
type ConversationResponse struct {
	// example: s1
	ID string `json:"id" example:"s1"`
	// Ordered turns, oldest first.
	Messages []Message `json:"messages"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Base URL of the inference server.
	// example: http://localhost:11434
	Backend string `json:"backend" example:"http://localhost:11434"`
	// Whether the last heartbeat reached the inference server.
	// example: true
	BackendReachable bool `json:"backend_reachable" example:"true"`
	// example: llama3
	DefaultModel string `json:"default_model" example:"llama3"`
	// Number of conversations held in memory.
	// example: 3
	Conversations int `json:"conversations" example:"3"`
	// Uploads currently staged on disk.
	// example: 0
	StagedFiles int64 `json:"staged_files" example:"0"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
