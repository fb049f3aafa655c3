package dispatcher

import (
	"time"

	"consumer-portal/internal/dataset"
	"consumer-portal/internal/models"
)

// CombinedResult is the merged outcome of one search. CFPB and FTC are
// always set; Fallback only when the assistant answered instead.
type CombinedResult struct {
	ID            string               `json:"id"`
	Query         string               `json:"query"`
	CFPB          *models.Result       `json:"cfpb"`
	FTC           *models.Result       `json:"ftc"`
	Fallback      *models.IntentResult `json:"fallback,omitempty"`
	FallbackError string               `json:"fallbackError,omitempty"`
	CapturedAt    time.Time            `json:"capturedAt"`
}

// AnyMatched reports whether at least one agency returned records.
func (r *CombinedResult) AnyMatched() bool {
	return r.CFPB.Outcome() == models.OutcomeMatched || r.FTC.Outcome() == models.OutcomeMatched
}

// Entry is one source-tagged item of a combined result.
type Entry struct {
	Source models.Source  `json:"source"`
	Result *models.Result `json:"result,omitempty"`
	Answer string         `json:"answer,omitempty"`
}

// Entries lists agency entries that matched, then the fallback answer.
// A fallback entry is never tagged as an agency.
func (r *CombinedResult) Entries() []Entry {
	entries := []Entry{}
	if r.CFPB.Outcome() == models.OutcomeMatched {
		entries = append(entries, Entry{Source: models.SourceCFPB, Result: r.CFPB})
	}
	if r.FTC.Outcome() == models.OutcomeMatched {
		entries = append(entries, Entry{Source: models.SourceFTC, Result: r.FTC})
	}
	if r.Fallback != nil {
		entries = append(entries, Entry{Source: models.SourceFallback, Answer: r.Fallback.Answer})
	}
	return entries
}

// Outcomes maps each agency to its tri-state outcome.
func (r *CombinedResult) Outcomes() map[models.Source]models.Outcome {
	return map[models.Source]models.Outcome{
		models.SourceCFPB: r.CFPB.Outcome(),
		models.SourceFTC:  r.FTC.Outcome(),
	}
}

// Report bundles the live search, the interpreted intent and the local
// dataset hits for one query.
type Report struct {
	Live   *CombinedResult      `json:"live"`
	Intent models.IntentResult  `json:"intent"`
	Local  dataset.SearchResult `json:"local"`
}
