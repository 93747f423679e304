package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violation")
	ErrNoSourceID      = errors.New("promotion has no cagematch id")
	ErrEmptyResponse   = errors.New("empty response body")
	ErrRunStopped      = errors.New("run has been stopped")
)

// UniqueViolationCode is the SQLSTATE Postgres reports for duplicate keys.
const UniqueViolationCode = "23505"

// ConfigError reports missing or invalid configuration.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur during parsing.
type ParseError struct {
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error (strategy=%q): %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError wraps errors returned by a data store backend.
type StoreError struct {
	Backend string
	Table   string
	Op      string
	Code    string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store error (%s %s %s, code %s): %v", e.Backend, e.Op, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("store error (%s %s %s): %v", e.Backend, e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUniqueViolation) match on the reported code.
func (e *StoreError) Is(target error) bool {
	return target == ErrUniqueViolation && e.Code == UniqueViolationCode
}

// ResolveError wraps a failure to resolve a scraped champion to a wrestler.
type ResolveError struct {
	Champion string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve champion %q: %v", e.Champion, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// UpsertError wraps a failure to write a championship.
type UpsertError struct {
	Championship string
	Op           string
	Err          error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("%s championship %q: %v", e.Op, e.Championship, e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }
