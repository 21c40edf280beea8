package resilience

import (
	"context"

	"github.com/linecue/linecue/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] with automatic failover across multiple
// transcription backends, e.g. a native whisper.cpp model with a whisper-server
// instance as backup.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
func NewSTTFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFallback {
	cfg.Kind = "stt"
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional STT provider as a fallback.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// Transcribe runs the audio through the first healthy provider. If the primary
// fails, subsequent fallbacks are tried with the same buffer.
func (f *STTFallback) Transcribe(ctx context.Context, pcm []byte, cfg stt.AudioConfig) (stt.Transcript, error) {
	return Failover(f.group, func(p stt.Provider) (stt.Transcript, error) {
		return p.Transcribe(ctx, pcm, cfg)
	})
}
