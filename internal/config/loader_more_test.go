package config

import (
	"reflect"
	"testing"
)

func TestMerge_OverlaysNonZeroOnly(t *testing.T) {
	off := false
	base := Defaults()
	got := base.Merge(Config{DefaultModel: "phi3", MaxUploadMB: 0, CORSEnabled: &off, MultimodalModels: []string{"llava"}})
	if got.DefaultModel != "phi3" {
		t.Fatalf("default model not overlaid: %q", got.DefaultModel)
	}
	if got.MaxUploadMB != base.MaxUploadMB {
		t.Fatalf("zero value overwrote max upload: %d", got.MaxUploadMB)
	}
	if got.CORS() {
		t.Fatalf("expected explicit cors_enabled=false to win")
	}
	if len(got.MultimodalModels) != 1 {
		t.Fatalf("multimodal list not replaced: %v", got.MultimodalModels)
	}
	if base.DefaultModel != "llama3" {
		t.Fatalf("merge mutated receiver")
	}
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"LLMGATE_ADDR":              ":1234",
		"OLLAMA_HOST":               "http://h:11434",
		"LLMGATE_MULTIMODAL_MODELS": " llava , bakllava ,",
		"LLMGATE_PULL_TIMEOUT_SEC":  "120",
		"LLMGATE_STRICT_MULTIMODAL": "true",
	}
	cfg, err := FromEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Addr != ":1234" || cfg.OllamaURL != "http://h:11434" || cfg.PullTimeoutSec != 120 || !cfg.StrictMultimodal {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.MultimodalModels) != 2 {
		t.Fatalf("unexpected multimodal list: %v", cfg.MultimodalModels)
	}
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	_, err := FromEnv(func(k string) string {
		if k == "LLMGATE_MAX_UPLOAD_MB" {
			return "lots"
		}
		return ""
	})
	if err == nil {
		t.Fatalf("expected error for malformed LLMGATE_MAX_UPLOAD_MB")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.DefaultModel = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for blank default model")
	}
	cfg = Defaults()
	cfg.MaxUploadMB = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero max upload")
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{" , ", nil},
		{"", nil},
	}
	for _, c := range cases {
		if got := SplitCSV(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%q -> %#v, want %#v", c.in, got, c.want)
		}
	}
}
