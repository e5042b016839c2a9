package recommender

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Recipe struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

type Recommendation struct {
	Foods   []string `json:"foods"`
	Avoid   []string `json:"avoid,omitempty"`
	Recipes []Recipe `json:"recipes"`
}

// Table maps a symptom tag to its guidance. It is treated as read-only once
// loaded.
type Table map[string]Recommendation

// ParseTable decodes the JSON recommendation resource.
func ParseTable(data []byte) (Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("invalid recommendation table: %w", err)
	}
	if table == nil {
		return nil, errors.New("invalid recommendation table: empty document")
	}
	return table, nil
}

// Status of the asynchronous table load.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// LoadState is Uninitialized, Loaded(table) or Failed(err).
type LoadState struct {
	status Status
	table  Table
	err    error
}

func Uninitialized() LoadState { return LoadState{status: StatusUninitialized} }

func Loaded(table Table) LoadState { return LoadState{status: StatusLoaded, table: table} }

func Failed(err error) LoadState { return LoadState{status: StatusFailed, err: err} }

func (s LoadState) Status() Status { return s.status }

func (s LoadState) Table() Table { return s.table }

func (s LoadState) Err() error { return s.err }

// LoadError reports that the recommendation table could not be loaded. The
// service keeps running with recommendations disabled.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load recommendations from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
