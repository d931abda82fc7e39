package prompts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreLoadBundled(t *testing.T) {
	store := NewStore("")
	content, err := store.Load(GeneratePrompt)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.Contains(content, "{{.Goal}}") {
		t.Errorf("bundled prompt missing Goal placeholder: %q", content)
	}
	if got := store.Source(GeneratePrompt); got != "bundled" {
		t.Errorf("Source() = %q, want bundled", got)
	}

	if _, err := store.Load(""); err == nil {
		t.Error("Load() with empty name expected error, got nil")
	}
	if _, err := store.Load("missing.txt"); err == nil {
		t.Error("Load() of unknown prompt expected error, got nil")
	}
}

func TestStoreLoadOverride(t *testing.T) {
	dir := t.TempDir()
	override := "Plan {{.Goal}} in {{.Count}} steps"
	path := filepath.Join(dir, GeneratePrompt)
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}

	store := NewStore(dir)
	content, err := store.Load(GeneratePrompt)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if content != override {
		t.Errorf("Load() = %q, want %q", content, override)
	}
	if got := store.Source(GeneratePrompt); got != path {
		t.Errorf("Source() = %q, want %q", got, path)
	}

	// Assets missing from the override dir fall back to bundled copies.
	if _, err := store.Load(TaskSchema); err != nil {
		t.Errorf("Load(%s) error = %v", TaskSchema, err)
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(NewStore(""))
	data := NewData("Build a personal portfolio website", 4, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

	out, err := r.Render(GeneratePrompt, data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "into 4 specific, actionable subtasks") {
		t.Errorf("rendered prompt missing count: %q", out)
	}
	if !strings.Contains(out, `"Build a personal portfolio website"`) {
		t.Errorf("rendered prompt missing goal: %q", out)
	}
	if data.Now != "2025-01-02T03:04:05Z" {
		t.Errorf("Now = %q", data.Now)
	}
}

func TestRenderRequiresVariables(t *testing.T) {
	r := NewRenderer(NewStore(""))
	tests := []struct {
		name string
		data Data
	}{
		{"missing goal", Data{Count: 3}},
		{"zero count", Data{Goal: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Render(GeneratePrompt, tt.data); err == nil {
				t.Error("Render() expected error, got nil")
			}
		})
	}

	if _, err := r.Render("other.txt", Data{Goal: "x", Count: 1}); err == nil {
		t.Error("Render() of unknown prompt expected error, got nil")
	}

	var nilRenderer *Renderer
	if _, err := nilRenderer.Render(GeneratePrompt, Data{Goal: "x", Count: 1}); err == nil {
		t.Error("nil Renderer expected error, got nil")
	}
}

func TestRenderMissingKeyFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, GeneratePrompt), []byte("{{.Unknown}}"), 0644); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(NewStore(dir))
	if _, err := r.Render(GeneratePrompt, Data{Goal: "x", Count: 1}); err == nil {
		t.Error("Render() with unknown field expected error, got nil")
	}
}

func TestBundledTaskSchemaIsJSON(t *testing.T) {
	var v map[string]any
	if err := json.Unmarshal(BundledTaskSchema(), &v); err != nil {
		t.Fatalf("bundled schema is not valid JSON: %v", err)
	}
	if v["type"] != "object" {
		t.Errorf("schema type = %v, want object", v["type"])
	}
}
