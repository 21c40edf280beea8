package progress

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory [Store] for tests and single-user desktop runs.
// It is safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	attempts []AttemptRecord
	lines    map[string]IndexedLine // keyed by scriptID + "\x00" + lineID
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{lines: map[string]IndexedLine{}}
}

func lineKey(scriptID, lineID string) string {
	return scriptID + "\x00" + lineID
}

// RecordAttempt implements Store.
func (m *MemStore) RecordAttempt(_ context.Context, rec AttemptRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, rec)
	return nil
}

// LineStats implements Store.
func (m *MemStore) LineStats(_ context.Context, scriptID, lineID string) (LineStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := LineStats{ScriptID: scriptID, LineID: lineID}
	var total int
	for _, a := range m.attempts {
		if a.ScriptID != scriptID || a.LineID != lineID {
			continue
		}
		stats.Attempts++
		total += a.Score
		if a.Accurate {
			stats.AccurateCount++
		}
		if a.Score > stats.BestScore {
			stats.BestScore = a.Score
		}
		if a.CreatedAt.After(stats.LastAttempt) {
			stats.LastAttempt = a.CreatedAt
		}
	}
	if stats.Attempts == 0 {
		return LineStats{}, ErrNotFound
	}
	stats.AverageScore = float64(total) / float64(stats.Attempts)
	return stats, nil
}

// TroubleLines implements Store.
func (m *MemStore) TroubleLines(_ context.Context, scriptID string, limit int) ([]LineStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byLine := map[string]*LineStats{}
	totals := map[string]int{}
	for _, a := range m.attempts {
		if a.ScriptID != scriptID {
			continue
		}
		stats, ok := byLine[a.LineID]
		if !ok {
			stats = &LineStats{ScriptID: scriptID, LineID: a.LineID}
			byLine[a.LineID] = stats
		}
		stats.Attempts++
		totals[a.LineID] += a.Score
		if a.Accurate {
			stats.AccurateCount++
		}
		if a.Score > stats.BestScore {
			stats.BestScore = a.Score
		}
		if a.CreatedAt.After(stats.LastAttempt) {
			stats.LastAttempt = a.CreatedAt
		}
	}

	var out []LineStats
	for lineID, stats := range byLine {
		stats.AverageScore = float64(totals[lineID]) / float64(stats.Attempts)
		if stats.AverageScore >= 100 {
			continue
		}
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageScore != out[j].AverageScore {
			return out[i].AverageScore < out[j].AverageScore
		}
		return out[i].LineID < out[j].LineID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []LineStats{}
	}
	return out, nil
}

// IndexLine implements Store.
func (m *MemStore) IndexLine(_ context.Context, line IndexedLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[lineKey(line.ScriptID, line.LineID)] = line
	return nil
}

// SimilarLines implements Store. Cosine distance is computed in process.
func (m *MemStore) SimilarLines(_ context.Context, scriptID string, embedding []float32, topK int) ([]SimilarLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SimilarLine
	for _, line := range m.lines {
		if line.ScriptID != scriptID || len(line.Embedding) == 0 {
			continue
		}
		out = append(out, SimilarLine{
			LineID:   line.LineID,
			Text:     line.Text,
			Distance: cosineDistance(embedding, line.Embedding),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	if out == nil {
		out = []SimilarLine{}
	}
	return out, nil
}

// cosineDistance returns 1 - cosine similarity. Mismatched or zero-magnitude
// vectors are maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
