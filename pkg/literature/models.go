package literature

import (
	"sort"
	"strings"
	"time"
)

// Study is one PubMed article together with its relevance assessment.
type Study struct {
	PMID    string `json:"pmid"`
	Title   string `json:"title"`
	Journal string `json:"journal"`

	PublicationDate *time.Time `json:"publication_date,omitempty"`

	Abstract         string   `json:"abstract"`
	PublicationTypes []string `json:"publication_types"`
	Affiliations     []string `json:"affiliations"`
	CountryHints     []string `json:"country_hints"`
	DOI              string   `json:"doi,omitempty"`

	Score          int            `json:"score"`
	ScoreBreakdown map[string]int `json:"score_breakdown,omitempty"`

	ClinicalRelevanceNotes []string `json:"clinical_relevance_notes,omitempty"`
	KeyStatistics          []string `json:"key_statistics,omitempty"`
	ContextStatement       string   `json:"context_statement,omitempty"`
}

// CountriesDisplay renders at most five distinct affiliation countries.
func (study *Study) CountriesDisplay() string {
	if len(study.CountryHints) == 0 {
		return "Unklar"
	}

	distinct := map[string]bool{}
	countries := []string{}
	for _, country := range study.CountryHints {
		if distinct[country] {
			continue
		}
		distinct[country] = true
		countries = append(countries, country)
	}

	sort.Strings(countries)
	if len(countries) > 5 {
		countries = countries[:5]
	}

	return strings.Join(countries, ", ")
}

// PipelineConfig drives one report generation run.
type PipelineConfig struct {
	Email string

	MaxCandidates int
	TopN          int

	OutputDir string
}

// DefaultDateRange is the previous full calendar month relative to the
// reference day.
func DefaultDateRange(referenceDay time.Time) (time.Time, time.Time) {
	firstOfCurrentMonth := time.Date(referenceDay.Year(), referenceDay.Month(), 1, 0, 0, 0, 0, referenceDay.Location())
	lastOfPreviousMonth := firstOfCurrentMonth.AddDate(0, 0, -1)
	firstOfPreviousMonth := time.Date(lastOfPreviousMonth.Year(), lastOfPreviousMonth.Month(), 1, 0, 0, 0, 0, referenceDay.Location())

	return firstOfPreviousMonth, lastOfPreviousMonth
}
