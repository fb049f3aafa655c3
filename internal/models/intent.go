package models

// Intent is the classification the assistant assigns to a search query.
type Intent string

const (
	IntentSearchCompany Intent = "search_company"
	IntentSearchSector  Intent = "search_sector"
	IntentSearchIssue   Intent = "search_issue"
	IntentGeneralQuery  Intent = "general_query"

	// IntentFallback tags an assistant answer produced because no agency matched.
	IntentFallback Intent = "fallback"
)

// Intents lists the values the structured-intent operation may return.
var Intents = []Intent{IntentSearchCompany, IntentSearchSector, IntentSearchIssue, IntentGeneralQuery}

type IntentFilters struct {
	Sector   string `json:"sector,omitempty"`
	Severity string `json:"severity,omitempty"`
	Source   string `json:"source,omitempty"`
}

// IsZero reports whether no filter hint is set.
func (f IntentFilters) IsZero() bool {
	return f.Sector == "" && f.Severity == "" && f.Source == ""
}

type IntentResult struct {
	Intent     Intent        `json:"intent"`
	SearchTerm string        `json:"searchTerm,omitempty"`
	Filters    IntentFilters `json:"filters"`
	Answer     string        `json:"answer"`
}

// DefaultIntent is the result used whenever structured interpretation is
// not possible.
func DefaultIntent(query string) IntentResult {
	return IntentResult{
		Intent:     IntentGeneralQuery,
		SearchTerm: query,
		Filters:    IntentFilters{},
		Answer:     "Searching for: " + query,
	}
}

// TrendAnalysis is the structured answer of the complaint-trend operation.
type TrendAnalysis struct {
	RecurringIssues []string `json:"recurringIssues"`
	Severity        string   `json:"severity"`
	Trend           string   `json:"trend"`
	Recommendations []string `json:"recommendations"`
}

// UnknownTrendAnalysis is returned when the model answer holds no JSON object.
func UnknownTrendAnalysis() *TrendAnalysis {
	return &TrendAnalysis{
		RecurringIssues: []string{"Unable to analyze"},
		Severity:        "Unknown",
		Trend:           "Unknown",
		Recommendations: []string{"Gemini AI analysis unavailable"},
	}
}
