package types

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	// Author of the turn.
	// example: user
	Role Role `json:"role" example:"user"`
	// Text of the turn.
	// example: Hello
	Content string `json:"content" example:"Hello"`
}

// ModelDescriptor is a model reported by the inference server. Only Name is
// interpreted by the gateway; Metadata is the backend's own description and is
// passed through as-is.
type ModelDescriptor struct {
	Name     string
	Metadata map[string]any
}

// MarshalJSON flattens Metadata next to "name" so the payload keeps the
// backend's shape.
func (m ModelDescriptor) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Metadata)+1)
	for k, v := range m.Metadata {
		out[k] = v
	}
	out["name"] = m.Name
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (m *ModelDescriptor) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	name, _ := raw["name"].(string)
	delete(raw, "name")
	m.Name = name
	m.Metadata = raw
	return nil
}
