package literature

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
)

// Report is the persisted output of one digest run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	CandidateCount int     `json:"candidate_count"`
	FilteredCount  int     `json:"filtered_count"`
	Studies        []Study `json:"studies"`
}

// GenerateReport runs the search, filter and scoring pipeline and writes
// the JSON and PDF artefacts. It returns the file paths that were written.
func GenerateReport(client *PubMedClient, config PipelineConfig, startDate time.Time, endDate time.Time) ([]string, error) {
	pmids, err := client.SearchPMIDs(startDate, endDate, config.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	log.Info().Int("pmids", len(pmids)).Msg("PubMed search complete")

	candidates, err := client.FetchStudies(pmids)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	return writeReport(candidates, config, startDate, endDate)
}

// GenerateDemoReport renders the report from the built-in sample studies
// so the pipeline can be exercised without network access.
func GenerateDemoReport(config PipelineConfig, startDate time.Time, endDate time.Time) ([]string, error) {
	return writeReport(DemoStudies(), config, startDate, endDate)
}

func writeReport(candidates []Study, config PipelineConfig, startDate time.Time, endDate time.Time) ([]string, error) {
	filtered := FilterCandidates(candidates)
	ranked := RankStudies(filtered, config.TopN)

	log.Info().
		Int("candidates", len(candidates)).
		Int("filtered", len(filtered)).
		Int("selected", len(ranked)).
		Msg("Ranked studies")

	report := Report{
		GeneratedAt:    time.Now(),
		StartDate:      startDate.Format("2006-01-02"),
		EndDate:        endDate.Format("2006-01-02"),
		CandidateCount: len(candidates),
		FilteredCount:  len(filtered),
		Studies:        ranked,
	}

	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return nil, err
	}

	stamp := report.GeneratedAt.Format("20060102_150405")
	baseName := fmt.Sprintf("neuro_report_%s_%s_%s", report.StartDate, report.EndDate, stamp)

	jsonPath := filepath.Join(config.OutputDir, baseName+".json")
	if err := writeJSON(report, jsonPath); err != nil {
		return nil, err
	}

	pdfPath := filepath.Join(config.OutputDir, baseName+".pdf")
	if err := writePDF(report, pdfPath); err != nil {
		return nil, err
	}

	return []string{jsonPath, pdfPath}, nil
}

func writeJSON(report Report, path string) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, payload, 0o644)
}

func writePDF(report Report, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, translate("Neuro-Notfallmedizin Literaturdigest"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, translate(fmt.Sprintf("Zeitraum %s bis %s", report.StartDate, report.EndDate)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, translate(fmt.Sprintf("%d Kandidaten, %d nach Filter, %d ausgewählt",
		report.CandidateCount, report.FilteredCount, len(report.Studies))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for index, study := range report.Studies {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, translate(fmt.Sprintf("%d. %s", index+1, study.Title)), "", "L", false)

		pdf.SetFont("Helvetica", "I", 9)
		dateDisplay := "k.A."
		if study.PublicationDate != nil {
			dateDisplay = study.PublicationDate.Format("2006-01")
		}
		pdf.MultiCell(0, 5, translate(fmt.Sprintf("%s | %s | %s | Score %d",
			study.Journal, dateDisplay, study.CountriesDisplay(), study.Score)), "", "L", false)

		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, translate(Summarize(study.Abstract, 3)), "", "L", false)

		if len(study.KeyStatistics) > 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.MultiCell(0, 5, translate("Kennzahlen: "+joinStatistics(study.KeyStatistics)), "", "L", false)
		}

		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, translate("Einordnung: "+study.ContextStatement), "", "L", false)

		if study.DOI != "" {
			pdf.SetFont("Helvetica", "", 8)
			pdf.MultiCell(0, 4, translate(fmt.Sprintf("PMID %s | doi:%s", study.PMID, study.DOI)), "", "L", false)
		} else {
			pdf.SetFont("Helvetica", "", 8)
			pdf.MultiCell(0, 4, translate("PMID "+study.PMID), "", "L", false)
		}

		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4, translate("Automatisch erstellt am "+report.GeneratedAt.Format("2006-01-02 15:04")), "", "L", false)

	return pdf.OutputFileAndClose(path)
}

func joinStatistics(statistics []string) string {
	result := ""
	for index, statistic := range statistics {
		if index > 0 {
			result += "; "
		}
		result += statistic
	}

	return result
}
