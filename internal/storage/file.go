package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/HotTag/internal/engine"
)

// JSONLFile is the archive file name used by JSONLSink.
const JSONLFile = "champion-runs.jsonl"

// --- JSON Sink ---

// JSONSink writes each report as an indented JSON file named after its run id.
type JSONSink struct {
	dir    string
	logger *slog.Logger
}

// NewJSONSink creates a JSON sink writing into dir.
func NewJSONSink(dir string, logger *slog.Logger) (*JSONSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONSink{
		dir:    dir,
		logger: logger.With("component", "json_sink"),
	}, nil
}

func (s *JSONSink) Name() string { return "json" }

// Path returns the file a report is written to.
func (s *JSONSink) Path(r *engine.Report) string {
	return filepath.Join(s.dir, fmt.Sprintf("champions-%s.json", r.RunID))
}

func (s *JSONSink) Write(_ context.Context, r *engine.Report) error {
	path := s.Path(r)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	s.logger.Info("report written", "path", path, "promotions", len(r.Promotions))
	return nil
}

func (s *JSONSink) Close() error { return nil }

// --- JSONL Sink ---

// JSONLSink appends each report as one line to a shared archive file.
type JSONLSink struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLSink opens dir/champion-runs.jsonl for appending.
func NewJSONLSink(dir string, logger *slog.Logger) (*JSONLSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, JSONLFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	return &JSONLSink{
		path:   path,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_sink"),
	}, nil
}

func (s *JSONLSink) Name() string { return "jsonl" }

func (s *JSONLSink) Write(_ context.Context, r *engine.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(r); err != nil {
		return fmt.Errorf("encode JSONL: %w", err)
	}
	s.count++
	return nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("JSONL written", "path", s.path, "reports", s.count)
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
