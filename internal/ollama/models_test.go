package ollama

import (
	"strings"
	"testing"
)

func TestResolveModel(t *testing.T) {
	installed := []Model{
		{Name: "llama3.2"},
		{Name: "llama2"},
		{Name: "codellama"},
	}

	if got, err := ResolveModel("llama2", installed); err != nil || got != "llama2" {
		t.Fatalf("ResolveModel(llama2) = %q, %v, want exact match", got, err)
	}
	if got, err := ResolveModel("code", installed); err != nil || got != "codellama" {
		t.Fatalf("ResolveModel(code) = %q, %v, want unique substring match", got, err)
	}
	if got, err := ResolveModel("3.2", installed); err != nil || got != "llama3.2" {
		t.Fatalf("ResolveModel(3.2) = %q, %v", got, err)
	}

	if _, err := ResolveModel("llama", installed); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("ResolveModel(llama) error = %v, want ambiguity with candidates", err)
	}
	if _, err := ResolveModel("mistral", installed); err == nil {
		t.Fatalf("ResolveModel(mistral) expected no-match error")
	}
	if _, err := ResolveModel("  ", installed); err == nil {
		t.Fatalf("ResolveModel(blank) expected error")
	}
}
