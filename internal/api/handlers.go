package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/linecue/linecue/internal/evaluate"
	"github.com/linecue/linecue/internal/match"
	"github.com/linecue/linecue/internal/observe"
	"github.com/linecue/linecue/internal/progress"
	"github.com/linecue/linecue/internal/script"
	"github.com/linecue/linecue/pkg/provider/stt"
)

// maxTranscribeBody bounds the PCM payload of /v1/transcribe (about five
// minutes of 16 kHz mono audio).
const maxTranscribeBody = 16 << 20

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var attempt evaluate.Attempt
	if err := decodeJSON(r, &attempt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.deps.Evaluator.Evaluate(r.Context(), attempt)
	if err != nil {
		observe.Logger(r.Context()).Error("evaluate failed", "err", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	s.recordIfIdentified(r, attempt, result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEvaluateLocal(w http.ResponseWriter, r *http.Request) {
	var attempt evaluate.Attempt
	if err := decodeJSON(r, &attempt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Local never errors.
	result, _ := s.deps.Local.Evaluate(r.Context(), attempt)
	s.recordIfIdentified(r, attempt, result)
	writeJSON(w, http.StatusOK, result)
}

// recordIfIdentified persists the evaluated attempt when the request names a
// script line. Storage failures are logged, not surfaced; the actor still
// gets their feedback.
func (s *Server) recordIfIdentified(r *http.Request, attempt evaluate.Attempt, result evaluate.Result) {
	if s.deps.Store == nil || attempt.ScriptID == "" || attempt.LineID == "" {
		return
	}
	rec := progress.AttemptRecord{
		ScriptID:   attempt.ScriptID,
		LineID:     attempt.LineID,
		Character:  attempt.Character,
		SpokenText: attempt.SpokenText,
		Score:      result.Score,
		Accurate:   result.Accurate,
		Source:     result.Source,
	}
	if err := s.deps.Store.RecordAttempt(r.Context(), rec); err != nil {
		observe.Logger(r.Context()).Warn("failed to record attempt",
			"script", attempt.ScriptID, "line", attempt.LineID, "err", err)
	}
}

type similarityRequest struct {
	Spoken       string   `json:"spoken"`
	Correct      string   `json:"correct"`
	Alternatives []string `json:"alternatives,omitempty"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
	Best       string  `json:"best"`
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	best := req.Spoken
	if len(req.Alternatives) > 0 {
		candidates := append([]string{req.Spoken}, req.Alternatives...)
		best = match.PickBestAlternative(candidates, req.Correct)
	}
	writeJSON(w, http.StatusOK, similarityResponse{
		Similarity: match.WordSimilarity(best, req.Correct),
		Best:       best,
	})
}

type analyzeLineRequest struct {
	Text string `json:"text"`

	// Spoken, when present, adds an inline diff against Text.
	Spoken string `json:"spoken,omitempty"`
}

type analyzeLineResponse struct {
	Chunks              []string `json:"chunks"`
	Chunkable           bool     `json:"chunkable"`
	NeedsPunctuationTip bool     `json:"needs_punctuation_tip"`
	Diff                string   `json:"diff,omitempty"`
}

func (s *Server) handleAnalyzeLine(w http.ResponseWriter, r *http.Request) {
	var req analyzeLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := analyzeLineResponse{
		Chunks:              match.SplitIntoChunks(req.Text),
		Chunkable:           match.IsChunkable(req.Text),
		NeedsPunctuationTip: match.NeedsPunctuationTip(req.Text),
	}
	if req.Spoken != "" {
		resp.Diff = match.InlineDiff(req.Spoken, req.Text)
	}
	writeJSON(w, http.StatusOK, resp)
}

type parseScriptRequest struct {
	// ID names the script in the progress store. Optional for ad-hoc parses.
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

func (s *Server) handleParseScript(w http.ResponseWriter, r *http.Request) {
	if s.deps.Parser == nil {
		writeError(w, http.StatusServiceUnavailable, "no LLM provider configured")
		return
	}

	var req parseScriptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	parsed, err := s.deps.Parser.Parse(r.Context(), req.Text)
	if err != nil {
		observe.Logger(r.Context()).Error("script parse failed", "err", err)
		writeError(w, http.StatusUnprocessableEntity, "could not parse script")
		return
	}
	parsed.ID = req.ID

	if req.ID != "" {
		s.indexScriptLines(r, parsed)
	}
	writeJSON(w, http.StatusOK, parsed)
}

// indexScriptLines embeds every parsed line and upserts it into the progress
// store for similar-line retrieval. Best effort: failures are logged and the
// parse response is returned regardless.
func (s *Server) indexScriptLines(r *http.Request, sc *script.Script) {
	if s.deps.Embedder == nil || s.deps.Store == nil {
		return
	}
	ctx := r.Context()

	var ids, texts []string
	for _, scene := range sc.Scenes {
		for _, line := range scene.Lines {
			ids = append(ids, line.ID)
			texts = append(texts, line.Text)
		}
	}
	if len(texts) == 0 {
		return
	}

	vectors, err := s.deps.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		observe.Logger(ctx).Warn("failed to embed script lines", "script", sc.ID, "err", err)
		return
	}
	for i := range ids {
		err := s.deps.Store.IndexLine(ctx, progress.IndexedLine{
			ScriptID:  sc.ID,
			LineID:    ids[i],
			Text:      texts[i],
			Embedding: vectors[i],
		})
		if err != nil {
			observe.Logger(ctx).Warn("failed to index line", "script", sc.ID, "line", ids[i], "err", err)
		}
	}
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	var rec progress.AttemptRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rec.ScriptID == "" || rec.LineID == "" {
		writeError(w, http.StatusBadRequest, "script_id and line_id are required")
		return
	}

	if err := s.deps.Store.RecordAttempt(r.Context(), rec); err != nil {
		observe.Logger(r.Context()).Error("failed to record attempt", "err", err)
		writeError(w, http.StatusInternalServerError, "could not record attempt")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleTroubleLines(w http.ResponseWriter, r *http.Request) {
	scriptID := r.PathValue("id")
	limit := queryInt(r, "limit", 10)

	lines, err := s.deps.Store.TroubleLines(r.Context(), scriptID, limit)
	if err != nil {
		observe.Logger(r.Context()).Error("trouble lines query failed", "script", scriptID, "err", err)
		writeError(w, http.StatusInternalServerError, "could not query trouble lines")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleLineStats(w http.ResponseWriter, r *http.Request) {
	scriptID := r.PathValue("id")
	lineID := r.PathValue("lineID")

	stats, err := s.deps.Store.LineStats(r.Context(), scriptID, lineID)
	if errors.Is(err, progress.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no attempts recorded for this line")
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Error("line stats query failed", "script", scriptID, "line", lineID, "err", err)
		writeError(w, http.StatusInternalServerError, "could not query line stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type similarLinesRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k,omitempty"`
}

func (s *Server) handleSimilarLines(w http.ResponseWriter, r *http.Request) {
	if s.deps.Embedder == nil {
		writeError(w, http.StatusServiceUnavailable, "no embeddings provider configured")
		return
	}

	var req similarLinesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	vec, err := s.deps.Embedder.Embed(r.Context(), req.Text)
	if err != nil {
		observe.Logger(r.Context()).Error("embedding failed", "err", err)
		writeError(w, http.StatusBadGateway, "embedding provider failed")
		return
	}

	lines, err := s.deps.Store.SimilarLines(r.Context(), r.PathValue("id"), vec, req.TopK)
	if err != nil {
		observe.Logger(r.Context()).Error("similar lines query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not query similar lines")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.deps.STT == nil {
		writeError(w, http.StatusServiceUnavailable, "no STT provider configured")
		return
	}

	pcm, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTranscribeBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "audio payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read audio payload")
		return
	}

	cfg := stt.AudioConfig{
		SampleRate: queryInt(r, "sample_rate", 16000),
		Channels:   queryInt(r, "channels", 1),
		Language:   r.URL.Query().Get("language"),
	}
	start := time.Now()
	transcript, err := s.deps.STT.Transcribe(r.Context(), pcm, cfg)
	s.metrics.TranscriptionDuration.Record(r.Context(), time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderRequest(r.Context(), "stt", "transcribe", "error")
		s.metrics.RecordProviderError(r.Context(), "stt", "transcribe")
		observe.Logger(r.Context()).Error("transcription failed", "err", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}
	s.metrics.RecordProviderRequest(r.Context(), "stt", "transcribe", "ok")
	writeJSON(w, http.StatusOK, transcript)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

type errorResponse struct {
	Error string `json:"error"`
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
