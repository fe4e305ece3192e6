// Package registry holds what the gateway knows about models without asking
// the inference server: the default model and which models accept file
// uploads.
package registry

import (
	"sort"
	"strings"
	"sync"
)

// Capabilities answers model-capability questions from configuration.
// It is safe for concurrent use; Register may be called at runtime.
type Capabilities struct {
	mu           sync.RWMutex
	defaultModel string
	multimodal   map[string]struct{}
	strict       bool
}

// New builds a registry from the configured default model and multimodal
// allow-list. Names are matched case-insensitively and without tag, so
// "llava" covers "llava:13b".
func New(defaultModel string, multimodal []string, strict bool) *Capabilities {
	c := &Capabilities{
		defaultModel: strings.TrimSpace(defaultModel),
		multimodal:   make(map[string]struct{}, len(multimodal)),
		strict:       strict,
	}
	for _, m := range multimodal {
		c.Register(m)
	}
	return c
}

// Register adds a model to the multimodal allow-list.
func (c *Capabilities) Register(model string) {
	key := baseName(model)
	if key == "" {
		return
	}
	c.mu.Lock()
	c.multimodal[key] = struct{}{}
	c.mu.Unlock()
}

// SupportsFiles reports whether model is on the multimodal allow-list.
func (c *Capabilities) SupportsFiles(model string) bool {
	key := baseName(c.Resolve(model))
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.multimodal[key]
	return ok
}

// Resolve returns model, or the default model when model is blank.
func (c *Capabilities) Resolve(model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return c.defaultModel
}

// DefaultModel returns the configured default model.
func (c *Capabilities) DefaultModel() string { return c.defaultModel }

// Strict reports whether uploads to non-listed models are refused up front.
func (c *Capabilities) Strict() bool { return c.strict }

// Multimodal returns the allow-list, sorted.
func (c *Capabilities) Multimodal() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.multimodal))
	for k := range c.multimodal {
		out = append(out, k)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

// baseName lower-cases and strips the ":tag" suffix.
func baseName(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndexByte(m, ':'); i > 0 {
		m = m[:i]
	}
	return m
}
