// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription engine (a whisper.cpp server or the
// whisper.cpp CGO bindings) and exposes a uniform batch interface: a rehearsal
// attempt is a single short take, recorded in full before evaluation, so the
// provider receives the complete PCM buffer and returns one Transcript.
//
// Implementations must be safe for concurrent use. Multiple attempts may be
// transcribed simultaneously (e.g., several actors rehearsing against the same
// deployment).
package stt

import "context"

// AudioConfig describes the audio format and recognition hints for a
// transcription request. All fields must be compatible with what the
// underlying provider supports.
type AudioConfig struct {
	// SampleRate is the audio sample rate in Hz. 16000 is the STT-optimised
	// mono rate that whisper models are trained on.
	SampleRate int

	// Channels is the number of audio channels. 1 = mono (required by most
	// STT engines). Implementors may downmix stereo internally.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g., "en", "de").
	// An empty string uses the provider default.
	Language string
}

// Transcript represents a speech-to-text result.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall confidence score (0.0-1.0). May be zero if
	// the provider does not report confidence.
	Confidence float64

	// Alternatives holds lower-ranked transcription candidates when the
	// provider supplies them. May be nil.
	Alternatives []string
}

// Provider is the abstraction over any STT backend.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
type Provider interface {
	// Transcribe runs speech recognition over a complete buffer of raw
	// 16-bit signed little-endian PCM audio and returns the transcript.
	//
	// The buffer's sample rate and channel count must match cfg (or the
	// provider defaults when cfg fields are zero).
	Transcribe(ctx context.Context, pcm []byte, cfg AudioConfig) (Transcript, error)
}
