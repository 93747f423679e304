// Package storage archives run reports.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/engine"
)

// Sink is the interface for all report archive backends.
type Sink interface {
	// Write persists one run report.
	Write(ctx context.Context, r *engine.Report) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// New builds the sinks listed in cfg.Type. It returns nil when none are
// configured and a MultiSink when more than one is.
func New(ctx context.Context, cfg config.ReportConfig, logger *slog.Logger) (Sink, error) {
	var sinks []Sink
	for _, t := range cfg.Types() {
		sink, err := newSink(ctx, t, cfg, logger)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks, logger), nil
	}
}

func newSink(ctx context.Context, typ string, cfg config.ReportConfig, logger *slog.Logger) (Sink, error) {
	switch typ {
	case "json":
		return NewJSONSink(cfg.OutputPath, logger)
	case "jsonl":
		return NewJSONLSink(cfg.OutputPath, logger)
	case "mongodb":
		return NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown report type %q", typ)
	}
}

// --- Multi-Sink Fan-Out ---

// MultiSink writes reports to several backends.
type MultiSink struct {
	backends []Sink
	logger   *slog.Logger
}

// NewMultiSink creates a sink that fans out to every backend.
func NewMultiSink(backends []Sink, logger *slog.Logger) *MultiSink {
	return &MultiSink{
		backends: backends,
		logger:   logger.With("component", "multi_sink"),
	}
}

func (s *MultiSink) Name() string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (s *MultiSink) Write(ctx context.Context, r *engine.Report) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Write(ctx, r); err != nil {
			s.logger.Error("backend write failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiSink) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
