package models

import (
	"encoding/json"
	"strings"

	apperrors "consumer-portal/internal/common/errors"
)

// Source names a data origin in merged results.
type Source string

const (
	SourceCFPB     Source = "cfpb"
	SourceNHTSA    Source = "nhtsa"
	SourceCPSC     Source = "cpsc"
	SourceFTC      Source = "ftc"
	SourceFallback Source = "fallback"
)

// Label is the agency acronym used in messages and prompts.
func (s Source) Label() string {
	return strings.ToUpper(string(s))
}

// Outcome separates "the agency had nothing" from "the call failed".
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeFailed  Outcome = "failed"
)

// Record is one agency record. Field sets differ per agency and are passed
// through untouched.
type Record map[string]interface{}

// String returns the field as a string, "" when absent or not a string.
func (r Record) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}

// Result is the envelope every agency operation returns. Failures are
// reported here, never as a Go error.
type Result struct {
	Success     bool                  `json:"success"`
	Data        []Record              `json:"data"`
	Error       string                `json:"error,omitempty"`
	Kind        apperrors.FailureKind `json:"failureKind,omitempty"`
	RecordCount int                   `json:"recordCount"`
}

// Succeeded wraps records in a success envelope. Data is never nil.
func Succeeded(records []Record) *Result {
	if records == nil {
		records = []Record{}
	}
	return &Result{
		Success:     true,
		Data:        records,
		RecordCount: len(records),
	}
}

// Failed builds the empty failure envelope for err.
func Failed(err error) *Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Result{
		Success:     false,
		Data:        []Record{},
		Error:       msg,
		Kind:        apperrors.KindOf(err),
		RecordCount: 0,
	}
}

// Outcome classifies the envelope; a nil result counts as failed.
func (r *Result) Outcome() Outcome {
	switch {
	case r == nil || !r.Success:
		return OutcomeFailed
	case len(r.Data) == 0:
		return OutcomeNoMatch
	default:
		return OutcomeMatched
	}
}

// Filter keeps the records keep accepts and recounts.
func (r *Result) Filter(keep func(Record) bool) *Result {
	if r == nil || !r.Success {
		return r
	}
	out := make([]Record, 0, len(r.Data))
	for _, rec := range r.Data {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return Succeeded(out)
}

// ContainsFold reports whether the JSON encoding of rec contains needle,
// case-insensitively.
func ContainsFold(rec Record, needle string) bool {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), strings.ToLower(needle))
}
