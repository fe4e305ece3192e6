// Package docs holds the OpenAPI document served under /swagger/ in
// swagger-tagged builds. Regenerate with `swag init -g cmd/llmgate/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/generate": {
			"post": {
				"tags": [
					"generate"
				],
				"summary": "Generate text",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.GenerateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.GenerateResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"415": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"500": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"503": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/generate-debug": {
			"post": {
				"tags": [
					"generate"
				],
				"summary": "Generate text from a raw body",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.GenerateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.GenerateResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/generate/multimodal": {
			"post": {
				"tags": [
					"generate"
				],
				"summary": "Generate text from a prompt and a file",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "prompt",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"name": "model",
						"in": "formData"
					},
					{
						"type": "file",
						"name": "file",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.GenerateResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"500": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/models": {
			"get": {
				"tags": [
					"models"
				],
				"summary": "List models",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.ModelsResponse"
						}
					},
					"500": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"503": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/models/capabilities": {
			"get": {
				"tags": [
					"models"
				],
				"summary": "Model capabilities",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.CapabilitiesResponse"
						}
					}
				}
			}
		},
		"/models/download": {
			"post": {
				"tags": [
					"models"
				],
				"summary": "Download a model",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.DownloadRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.MessageResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"500": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/conversation/start": {
			"post": {
				"tags": [
					"conversation"
				],
				"summary": "Start a conversation",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.StartConversationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.MessageResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/conversation/{id}": {
			"get": {
				"tags": [
					"conversation"
				],
				"summary": "Conversation history",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.ConversationResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/conversation/{id}/message": {
			"post": {
				"tags": [
					"conversation"
				],
				"summary": "Send a message in a conversation",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.GenerateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.GenerateResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"500": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/status": {
			"get": {
				"tags": [
					"ops"
				],
				"summary": "Gateway status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StatusResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"types.GenerateRequest": {
			"type": "object",
			"properties": {
				"prompt": {
					"type": "string",
					"example": "Write a haiku about the ocean."
				},
				"model": {
					"type": "string",
					"example": "llama3"
				}
			}
		},
		"types.GenerateResponse": {
			"type": "object",
			"properties": {
				"generated_text": {
					"type": "string",
					"example": "Waves fold into foam"
				}
			}
		},
		"types.ModelsResponse": {
			"type": "object",
			"properties": {
				"models": {
					"type": "array",
					"items": {
						"type": "object",
						"additionalProperties": true
					}
				}
			}
		},
		"types.CapabilitiesResponse": {
			"type": "object",
			"properties": {
				"default_model": {
					"type": "string"
				},
				"multimodal_models": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"strict_multimodal": {
					"type": "boolean"
				}
			}
		},
		"types.DownloadRequest": {
			"type": "object",
			"properties": {
				"model_name": {
					"type": "string",
					"example": "llama3"
				}
			}
		},
		"types.StartConversationRequest": {
			"type": "object",
			"properties": {
				"conv_id": {
					"type": "string",
					"example": "s1"
				}
			}
		},
		"types.MessageResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string",
					"example": "Conversation 's1' started"
				}
			}
		},
		"types.Message": {
			"type": "object",
			"properties": {
				"role": {
					"type": "string",
					"example": "user"
				},
				"content": {
					"type": "string",
					"example": "Hello"
				}
			}
		},
		"types.ConversationResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"messages": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.Message"
					}
				}
			}
		},
		"types.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"code": {
					"type": "integer"
				}
			}
		},
		"types.StatusResponse": {
			"type": "object",
			"properties": {
				"backend": {
					"type": "string"
				},
				"backend_reachable": {
					"type": "boolean"
				},
				"default_model": {
					"type": "string"
				},
				"conversations": {
					"type": "integer"
				},
				"staged_files": {
					"type": "integer"
				},
				"uptime_seconds": {
					"type": "integer"
				},
				"server_time_unix": {
					"type": "integer"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "llmgate API",
	Description:      "HTTP gateway over a local Ollama inference server.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
