// Package sink stores generated samples. Every sink accepts flattened Records and
// is safe to call from a single writer goroutine.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink: closed")

// Sink receives generated samples.
type Sink interface {
	Write(ctx context.Context, r Record) error
	Close() error
}

// Rule is one rule of a component's group.
type Rule struct {
	Component int    `json:"component" bigquery:"component"`
	Name      string `json:"name" bigquery:"name"`
	Attr      string `json:"attr" bigquery:"attr"`
	Value     int    `json:"value" bigquery:"value"`
}

// Modification is one attribute change that turns the answer into a candidate.
type Modification struct {
	Component int    `json:"component" bigquery:"component"`
	Attr      string `json:"attr" bigquery:"attr"`
	Value     int    `json:"value" bigquery:"value"`
	Slots     []int  `json:"slots,omitempty" bigquery:"slots"`
}

// Candidate lists the modifications of one answer choice; the answer has none.
type Candidate struct {
	Modifications []Modification `json:"modifications" bigquery:"modifications"`
}

// Entity is a placed entity of a panel.
type Entity struct {
	Slot  int `json:"slot" bigquery:"slot"`
	Type  int `json:"type" bigquery:"type"`
	Size  int `json:"size" bigquery:"size"`
	Color int `json:"color" bigquery:"color"`
	Angle int `json:"angle" bigquery:"angle"`
}

// Component is a component of a panel.
type Component struct {
	Name       string   `json:"name" bigquery:"name"`
	Uniformity int      `json:"uniformity" bigquery:"uniformity"`
	Entities   []Entity `json:"entities" bigquery:"entities"`
}

// Panel is one context panel of the matrix.
type Panel struct {
	Components []Component `json:"components" bigquery:"components"`
}

// Record is a flattened sample.
type Record struct {
	ID            string      `json:"id" bigquery:"id"`
	Configuration string      `json:"configuration" bigquery:"configuration"`
	Index         int         `json:"index" bigquery:"index"`
	Split         string      `json:"split" bigquery:"split"`
	Mesh          bool        `json:"mesh" bigquery:"mesh"`
	Rules         []Rule      `json:"rules" bigquery:"rules"`
	Context       []Panel     `json:"context" bigquery:"context"`
	Answer        []Component `json:"answer" bigquery:"answer"`
	Candidates    []Candidate `json:"candidates" bigquery:"candidates"`
	Target        int         `json:"target" bigquery:"target"`
	Attempts      int         `json:"attempts" bigquery:"attempts"`
	CreatedAt     time.Time   `json:"created_at" bigquery:"created_at"`
}

// JSONLines writes one JSON object per line.
type JSONLines struct {
	enc    *json.Encoder
	closer io.Closer
	closed bool
}

// NewJSONLines writes to w. If w is an io.Closer it is closed by Close.
func NewJSONLines(w io.Writer) *JSONLines {
	s := &JSONLines{enc: json.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Write encodes r as a single line.
func (s *JSONLines) Write(ctx context.Context, r Record) error {
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.enc.Encode(r); err != nil {
		return fmt.Errorf("encode sample %s: %w", r.ID, err)
	}
	return nil
}

// Close closes the underlying writer when it is closable.
func (s *JSONLines) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Memory keeps records in memory.
type Memory struct {
	Records []Record
}

// Write appends r.
func (m *Memory) Write(_ context.Context, r Record) error {
	m.Records = append(m.Records, r)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
