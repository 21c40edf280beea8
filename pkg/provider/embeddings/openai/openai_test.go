package openai

import (
	"testing"
)

func TestModelDimensions_TextEmbedding3Small(t *testing.T) {
	d := modelDimensions("text-embedding-3-small")
	if d != 1536 {
		t.Errorf("text-embedding-3-small: expected 1536 dimensions, got %d", d)
	}
}

func TestModelDimensions_TextEmbedding3Large(t *testing.T) {
	d := modelDimensions("text-embedding-3-large")
	if d != 3072 {
		t.Errorf("text-embedding-3-large: expected 3072 dimensions, got %d", d)
	}
}

func TestModelDimensions_UnknownModelDefaults(t *testing.T) {
	d := modelDimensions("future-embedding-model")
	if d != 1536 {
		t.Errorf("unknown model: expected 1536 dimensions, got %d", d)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New("", "text-embedding-3-small"); err == nil {
		t.Error("New with empty apiKey returned nil error, want non-nil")
	}
}
