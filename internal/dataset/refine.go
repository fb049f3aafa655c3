package dataset

import "consumer-portal/internal/models"

// hintMatches accepts either string containing the other, so a "Financial
// Services" hint still selects companies filed under "Financial".
func hintMatches(value, hint string) bool {
	return hint == "" || contains(value, hint) || (value != "" && contains(hint, value))
}

// Refine narrows a search result with the assistant's filter hints. Sector
// applies to companies and sectors; source and severity apply to the timeline.
func Refine(res SearchResult, f models.IntentFilters) SearchResult {
	if f.IsZero() {
		return res
	}

	out := SearchResult{
		Query:     res.Query,
		Companies: []models.CompanyRanking{},
		Timeline:  []models.TimelineEvent{},
		Sectors:   []models.SectorScore{},
	}
	for _, c := range res.Companies {
		if hintMatches(c.Sector, f.Sector) {
			out.Companies = append(out.Companies, c)
		}
	}
	for _, s := range res.Sectors {
		if hintMatches(s.Sector, f.Sector) {
			out.Sectors = append(out.Sectors, s)
		}
	}
	for _, e := range res.Timeline {
		if hintMatches(e.Source, f.Source) && hintMatches(e.Severity, f.Severity) {
			out.Timeline = append(out.Timeline, e)
		}
	}
	out.NoResults = out.empty()
	return out
}
