package literature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDateRange(t *testing.T) {
	referenceDay := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	startDate, endDate := DefaultDateRange(referenceDay)

	assert.Equal(t, "2026-07-01", startDate.Format("2006-01-02"))
	assert.Equal(t, "2026-07-31", endDate.Format("2006-01-02"))

	// Across a year boundary
	startDate, endDate = DefaultDateRange(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-12-01", startDate.Format("2006-01-02"))
	assert.Equal(t, "2025-12-31", endDate.Format("2006-01-02"))
}

func TestPassesClinicalScope(t *testing.T) {
	valid := Study{
		Title:            "Tenecteplase in acute stroke",
		Abstract:         "A randomized trial of 500 patients.",
		PublicationTypes: []string{"Randomized Controlled Trial"},
	}
	assert.True(t, PassesClinicalScope(valid))

	animal := valid
	animal.Abstract = "A murine model of cerebral ischemia."
	assert.False(t, PassesClinicalScope(animal))

	caseReport := valid
	caseReport.Title = "Case report of basilar occlusion"
	assert.False(t, PassesClinicalScope(caseReport))

	pediatric := valid
	pediatric.Abstract = "Outcomes in children with arterial stroke."
	assert.False(t, PassesClinicalScope(pediatric))

	noAbstract := valid
	noAbstract.Abstract = "   "
	assert.False(t, PassesClinicalScope(noAbstract))

	wrongType := valid
	wrongType.PublicationTypes = []string{"Editorial"}
	assert.False(t, PassesClinicalScope(wrongType))
}

func TestFilterCandidatesDropsDemoAnimalStudy(t *testing.T) {
	kept := FilterCandidates(DemoStudies())

	require.Len(t, kept, 3)
	for _, study := range kept {
		assert.NotContains(t, study.Title, "murine")
	}
}

func TestExtractKeyStatistics(t *testing.T) {
	abstract := "The primary outcome occurred more often (OR 1.28, 95% CI 1.02-1.61, p=0.03). " +
		"Mortality was lower (HR 0.85). NNT 17 to prevent one poor outcome."

	statistics := ExtractKeyStatistics(abstract)

	assert.Contains(t, statistics, "OR 1.28")
	assert.Contains(t, statistics, "HR 0.85")
	assert.Contains(t, statistics, "95% KI 1.02-1.61")
	assert.Contains(t, statistics, "NNT 17")
}

func TestExtractKeyStatisticsEmptyAbstract(t *testing.T) {
	assert.Empty(t, ExtractKeyStatistics("No numbers in this text."))
}

func TestScoreStudyRandomizedTrialBeatsObservational(t *testing.T) {
	trial := Study{
		Title: "Thrombectomy outcomes",
		Abstract: "In this multicenter randomized controlled trial we enrolled 1200 patients. " +
			"Mortality was reduced (HR 0.80, 95% CI 0.68-0.94).",
		PublicationTypes: []string{"Randomized Controlled Trial"},
	}
	ScoreStudy(&trial)

	cohort := Study{
		Title:            "Thrombectomy outcomes",
		Abstract:         "This retrospective analysis included 80 patients.",
		PublicationTypes: []string{"Journal Article"},
	}
	ScoreStudy(&cohort)

	assert.Greater(t, trial.Score, cohort.Score)
	assert.Equal(t, 5, trial.ScoreBreakdown["design"])
	assert.Equal(t, 3, trial.ScoreBreakdown["sample_size"])
	assert.Equal(t, 3, trial.ScoreBreakdown["hard_endpoints"])
	assert.NotEmpty(t, trial.KeyStatistics)
	assert.NotEmpty(t, trial.ContextStatement)
}

func TestRankStudiesOrdersByScore(t *testing.T) {
	ranked := RankStudies(FilterCandidates(DemoStudies()), 2)

	require.Len(t, ranked, 2)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}

func TestSummarizeKeepsLeadAndResults(t *testing.T) {
	abstract := "We studied tenecteplase in stroke. The design was pragmatic. " +
		"The primary outcome occurred in 57% of patients. Funding came from public sources."

	summary := Summarize(abstract, 2)

	assert.Contains(t, summary, "We studied tenecteplase in stroke.")
	assert.Contains(t, summary, "primary outcome")
	assert.NotContains(t, summary, "Funding")
}

func TestSummarizeEmptyAbstract(t *testing.T) {
	assert.Equal(t, "", Summarize("", 3))
}

func TestSplitSentencesKeepsDecimalsAndAbbreviations(t *testing.T) {
	sentences := splitSentences("The OR was 1.28 vs. control. Second sentence here.")

	require.Len(t, sentences, 2)
	assert.Equal(t, "The OR was 1.28 vs. control.", sentences[0])
}

func TestCountriesDisplay(t *testing.T) {
	study := Study{}
	assert.Equal(t, "Unklar", study.CountriesDisplay())

	study.CountryHints = []string{"Deutschland", "Frankreich", "Deutschland"}
	assert.Equal(t, "Deutschland, Frankreich", study.CountriesDisplay())
}

func TestParseEFetchDocument(t *testing.T) {
	payload := []byte(`<PubmedArticleSet>
		<PubmedArticle>
			<MedlineCitation>
				<PMID>12345678</PMID>
				<Article>
					<Journal>
						<JournalIssue><PubDate><Year>2026</Year><Month>Jul</Month><Day>15</Day></PubDate></JournalIssue>
						<Title>Stroke</Title>
					</Journal>
					<ArticleTitle>Tenecteplase before thrombectomy</ArticleTitle>
					<Abstract>
						<AbstractText>Background text.</AbstractText>
						<AbstractText>Results text.</AbstractText>
					</Abstract>
					<AuthorList>
						<Author><AffiliationInfo><Affiliation>University Hospital, Freiburg, Germany.</Affiliation></AffiliationInfo></Author>
					</AuthorList>
					<PublicationTypeList>
						<PublicationType>Randomized Controlled Trial</PublicationType>
					</PublicationTypeList>
				</Article>
			</MedlineCitation>
			<PubmedData>
				<ArticleIdList>
					<ArticleId IdType="pubmed">12345678</ArticleId>
					<ArticleId IdType="doi">10.1000/test</ArticleId>
				</ArticleIdList>
			</PubmedData>
		</PubmedArticle>
	</PubmedArticleSet>`)

	studies, err := ParseEFetchDocument(payload)
	require.NoError(t, err)
	require.Len(t, studies, 1)

	study := studies[0]
	assert.Equal(t, "12345678", study.PMID)
	assert.Equal(t, "Tenecteplase before thrombectomy", study.Title)
	assert.Equal(t, "Stroke", study.Journal)
	assert.Equal(t, "Background text. Results text.", study.Abstract)
	assert.Equal(t, "10.1000/test", study.DOI)
	assert.Contains(t, study.CountryHints, "Deutschland")

	require.NotNil(t, study.PublicationDate)
	assert.Equal(t, "2026-07-15", study.PublicationDate.Format("2006-01-02"))
}

func TestParsePubDateFallbacks(t *testing.T) {
	date := parsePubDate("2026", "3", "")
	require.NotNil(t, date)
	assert.Equal(t, "2026-03-01", date.Format("2006-01-02"))

	assert.Nil(t, parsePubDate("", "Jul", "15"))

	// Overflowing day falls back to the first of the month
	date = parsePubDate("2026", "Feb", "31")
	require.NotNil(t, date)
	assert.Equal(t, "2026-02-01", date.Format("2006-01-02"))
}
