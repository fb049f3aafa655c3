// Package dataset serves the static demo rankings, sector scores and
// timeline shown alongside live agency data.
package dataset

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"consumer-portal/internal/models"
)

//go:embed demo.yaml
var demoYAML []byte

type Dataset struct {
	Stats     models.LiveStats        `json:"liveStats" yaml:"live_stats"`
	Sectors   []models.SectorScore    `json:"sectors" yaml:"sectors"`
	Companies []models.CompanyRanking `json:"companies" yaml:"companies"`
	Timeline  []models.TimelineEvent  `json:"timeline" yaml:"timeline"`
}

// Parse decodes a dataset document.
func Parse(raw []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &d, nil
}

// Demo returns the embedded demo dataset.
func Demo() *Dataset {
	d, err := Parse(demoYAML)
	if err != nil {
		panic(err)
	}
	return d
}

// SortKey orders company rankings.
type SortKey string

const (
	SortByComplaints SortKey = "complaints"
	SortByRecalls    SortKey = "recalls"
	SortByName       SortKey = "name"

	// AllSectors disables the sector filter.
	AllSectors = "all"
)

// ParseSortKey maps user input to a SortKey, defaulting to complaints.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortByRecalls:
		return SortByRecalls
	case SortByName:
		return SortByName
	default:
		return SortByComplaints
	}
}

type SearchResult struct {
	Query     string                  `json:"query"`
	Companies []models.CompanyRanking `json:"companies"`
	Timeline  []models.TimelineEvent  `json:"timeline"`
	Sectors   []models.SectorScore    `json:"sectors"`
	NoResults bool                    `json:"noResults"`
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Search matches query case-insensitively: companies on name or sector,
// timeline events on company, issue or source, sectors on name. Companies
// come back sorted by complaints.
func (d *Dataset) Search(query string) SearchResult {
	return d.SearchFiltered(query, AllSectors, SortByComplaints)
}

// SearchFiltered is Search with a sector filter and company ordering.
func (d *Dataset) SearchFiltered(query, sectorFilter string, sortBy SortKey) SearchResult {
	res := SearchResult{
		Query:     query,
		Companies: d.FilterCompanies(query, sectorFilter, sortBy),
		Timeline:  []models.TimelineEvent{},
		Sectors:   []models.SectorScore{},
	}
	for _, e := range d.Timeline {
		if contains(e.Company, query) || contains(e.Issue, query) || contains(e.Source, query) {
			res.Timeline = append(res.Timeline, e)
		}
	}
	for _, s := range d.Sectors {
		if contains(s.Sector, query) {
			res.Sectors = append(res.Sectors, s)
		}
	}
	res.NoResults = res.empty()
	return res
}

func (r SearchResult) empty() bool {
	return r.Query != "" && len(r.Companies) == 0 && len(r.Timeline) == 0 && len(r.Sectors) == 0
}

// FilterCompanies returns companies whose name or sector contains query and
// whose sector contains sectorFilter ("" or "all" keeps every sector).
func (d *Dataset) FilterCompanies(query, sectorFilter string, sortBy SortKey) []models.CompanyRanking {
	out := []models.CompanyRanking{}
	anySector := sectorFilter == "" || strings.EqualFold(sectorFilter, AllSectors)
	for _, c := range d.Companies {
		if !contains(c.Name, query) && !contains(c.Sector, query) {
			continue
		}
		if !anySector && !contains(c.Sector, sectorFilter) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch sortBy {
		case SortByRecalls:
			return out[i].Recalls > out[j].Recalls
		case SortByName:
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		default:
			return out[i].Complaints > out[j].Complaints
		}
	})
	return out
}

func (d *Dataset) CompanyNames() []string {
	names := make([]string, len(d.Companies))
	for i, c := range d.Companies {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) SectorNames() []string {
	names := make([]string, len(d.Sectors))
	for i, s := range d.Sectors {
		names[i] = s.Sector
	}
	return names
}
