// Package progress records rehearsal attempts and answers the questions an
// actor asks between run-throughs: how is this line trending, which lines
// keep going wrong, and which other lines in the script are worded so
// similarly that they deserve drilling together.
//
// Two implementations exist: [Postgres] persists attempts and pgvector line
// embeddings, and [MemStore] keeps everything in process for tests and
// single-user desktop use.
package progress

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no attempts exist for the requested line.
var ErrNotFound = errors.New("no attempts recorded")

// AttemptRecord is one evaluated rehearsal attempt as stored.
type AttemptRecord struct {
	ScriptID   string    `json:"script_id"`
	LineID     string    `json:"line_id"`
	Character  string    `json:"character,omitempty"`
	SpokenText string    `json:"spoken_text"`
	Score      int       `json:"score"`
	Accurate   bool      `json:"accurate"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// LineStats aggregates the attempt history of a single line.
type LineStats struct {
	ScriptID      string    `json:"script_id"`
	LineID        string    `json:"line_id"`
	Attempts      int       `json:"attempts"`
	AccurateCount int       `json:"accurate_count"`
	AverageScore  float64   `json:"average_score"`
	BestScore     int       `json:"best_score"`
	LastAttempt   time.Time `json:"last_attempt"`
}

// IndexedLine is a script line with its embedding, stored for
// similar-line retrieval.
type IndexedLine struct {
	ScriptID  string
	LineID    string
	Text      string
	Embedding []float32
}

// SimilarLine is a nearest-neighbour result from [Store.SimilarLines].
type SimilarLine struct {
	LineID string `json:"line_id"`
	Text   string `json:"text"`

	// Distance is the cosine distance to the query embedding; smaller is
	// more similar.
	Distance float64 `json:"distance"`
}

// Store persists rehearsal progress.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// RecordAttempt appends an evaluated attempt to the history.
	RecordAttempt(ctx context.Context, rec AttemptRecord) error

	// LineStats aggregates the history of one line. Returns [ErrNotFound]
	// when the line has no recorded attempts.
	LineStats(ctx context.Context, scriptID, lineID string) (LineStats, error)

	// TroubleLines returns the lines of a script with the lowest average
	// scores, worst first, at most limit entries. Lines with a perfect
	// record are excluded.
	TroubleLines(ctx context.Context, scriptID string, limit int) ([]LineStats, error)

	// IndexLine upserts a line and its embedding for similarity search.
	IndexLine(ctx context.Context, line IndexedLine) error

	// SimilarLines finds the topK indexed lines of a script closest to the
	// query embedding, most similar first.
	SimilarLines(ctx context.Context, scriptID string, embedding []float32, topK int) ([]SimilarLine, error)
}
