package main

// General API documentation for swaggo. Regenerate docs/ with `swag init -g cmd/llmgate/docs.go`.
//
// @title           llmgate API
// @version         1.0
// @description     HTTP gateway over a local Ollama inference server: generation, multimodal uploads, model management and conversations.
//
// @contact.name   llmgate maintainers
//
// @BasePath  /
//
// @schemes http
