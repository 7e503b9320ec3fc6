package literature

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Scoring weighs study design, size, endpoints and practice impact. The
// weights favour work that can change what happens at the bedside over
// methodologically pretty but inconsequential papers.

var (
	sampleSizePattern = regexp.MustCompile(`(?i)(?:n\s*=\s*|enrolled\s+|included\s+|randomized\s+|randomised\s+)(\d{2,6})`)

	hazardRatioPattern = regexp.MustCompile(`(?i)\b(?:HR|hazard ratio)[\s:,=]*(\d+\.?\d*)`)
	oddsRatioPattern   = regexp.MustCompile(`(?i)\b(?:OR|odds ratio)[\s:,=]*(\d+\.?\d*)`)
	riskRatioPattern   = regexp.MustCompile(`(?i)\b(?:RR|risk ratio|relative risk)[\s:,=]*(\d+\.?\d*)`)
	pValuePattern      = regexp.MustCompile(`(?i)\bp\s*[<=]\s*(0?\.\d+)`)
	confIntPattern     = regexp.MustCompile(`(?i)95%\s*CI[\s:,]*(\d+\.?\d*)\s*(?:-|to|–)\s*(\d+\.?\d*)`)
	nntPattern         = regexp.MustCompile(`(?i)\bNNT[\s:,=]*(\d+)`)
)

var hardEndpointTerms = []string{
	"mortality", "death", "survival",
	"functional outcome", "modified rankin", "mrs 0-2", "mrs 0-1",
	"disability", "recurrent stroke", "symptomatic hemorrhage",
	"symptomatic intracranial",
}

var guidelineImpactTerms = []string{
	"guideline", "practice-changing", "should be considered standard",
	"first-line", "recommendation", "change clinical practice",
}

// ScoreStudy fills Score, ScoreBreakdown, ClinicalRelevanceNotes and
// KeyStatistics on the study.
func ScoreStudy(study *Study) {
	text := strings.ToLower(study.Title + " " + study.Abstract)
	breakdown := map[string]int{}
	notes := []string{}

	designScore, designNote := scoreDesign(study.PublicationTypes, text)
	breakdown["design"] = designScore
	if designNote != "" {
		notes = append(notes, designNote)
	}

	sampleScore, sampleSize := scoreSampleSize(study.Abstract)
	breakdown["sample_size"] = sampleScore
	if sampleSize > 0 {
		notes = append(notes, fmt.Sprintf("Stichprobe ca. %d Patienten", sampleSize))
	}

	endpointScore := 0
	for _, term := range hardEndpointTerms {
		if strings.Contains(text, term) {
			endpointScore = 3
			notes = append(notes, "Harte klinische Endpunkte")
			break
		}
	}
	breakdown["hard_endpoints"] = endpointScore

	statistics := ExtractKeyStatistics(study.Abstract)
	statsScore := 0
	if len(statistics) > 0 {
		statsScore = 2
	}
	breakdown["effect_statistics"] = statsScore

	topicScore := 0
	for _, topic := range highRelevanceTopics {
		if strings.Contains(text, topic) {
			topicScore = 2
			notes = append(notes, "Kernthema Akutneurologie: "+topic)
			break
		}
	}
	breakdown["topic"] = topicScore

	generalizabilityScore := 0
	if strings.Contains(text, "multicenter") || strings.Contains(text, "multicentre") ||
		strings.Contains(text, "international") || strings.Contains(text, "registry") {
		generalizabilityScore = 1
		notes = append(notes, "Multizentrisch oder registerbasiert")
	}
	breakdown["generalizability"] = generalizabilityScore

	impactScore := 0
	for _, term := range guidelineImpactTerms {
		if strings.Contains(text, term) {
			impactScore = 2
			notes = append(notes, "Potentiell leitlinienrelevant")
			break
		}
	}
	breakdown["guideline_impact"] = impactScore

	total := 0
	for _, value := range breakdown {
		total += value
	}

	study.Score = total
	study.ScoreBreakdown = breakdown
	study.ClinicalRelevanceNotes = notes
	study.KeyStatistics = statistics
	study.ContextStatement = buildContextStatement(*study)
}

func scoreDesign(publicationTypes []string, text string) (int, string) {
	joined := strings.ToLower(strings.Join(publicationTypes, " | "))

	switch {
	case strings.Contains(joined, "randomized controlled trial") || strings.Contains(text, "randomized controlled trial") || strings.Contains(text, "randomised controlled trial"):
		return 5, "Randomisierte kontrollierte Studie"
	case strings.Contains(joined, "meta-analysis") || strings.Contains(text, "meta-analysis"):
		return 5, "Metaanalyse"
	case strings.Contains(joined, "systematic review") || strings.Contains(text, "systematic review"):
		return 4, "Systematisches Review"
	case strings.Contains(joined, "practice guideline") || strings.Contains(joined, "guideline"):
		return 4, "Leitlinie"
	case strings.Contains(text, "prospective"):
		return 3, "Prospektive Studie"
	case strings.Contains(text, "retrospective") || strings.Contains(joined, "observational study"):
		return 2, "Beobachtungsstudie"
	}

	return 1, ""
}

func scoreSampleSize(abstract string) (int, int) {
	matches := sampleSizePattern.FindAllStringSubmatch(abstract, -1)

	largest := 0
	for _, match := range matches {
		if value, err := strconv.Atoi(match[1]); err == nil && value > largest {
			largest = value
		}
	}

	switch {
	case largest >= 1000:
		return 3, largest
	case largest >= 300:
		return 2, largest
	case largest >= 100:
		return 1, largest
	}

	return 0, largest
}

// ExtractKeyStatistics pulls effect sizes and significance figures out of
// an abstract, deduplicated and in a stable order.
func ExtractKeyStatistics(abstract string) []string {
	statistics := []string{}
	seen := map[string]bool{}

	add := func(statistic string) {
		if statistic == "" || seen[statistic] {
			return
		}
		seen[statistic] = true
		statistics = append(statistics, statistic)
	}

	for _, match := range hazardRatioPattern.FindAllStringSubmatch(abstract, 3) {
		add("HR " + match[1])
	}
	for _, match := range oddsRatioPattern.FindAllStringSubmatch(abstract, 3) {
		add("OR " + match[1])
	}
	for _, match := range riskRatioPattern.FindAllStringSubmatch(abstract, 3) {
		add("RR " + match[1])
	}
	for _, match := range confIntPattern.FindAllStringSubmatch(abstract, 2) {
		add(fmt.Sprintf("95%% KI %s-%s", match[1], match[2]))
	}
	for _, match := range pValuePattern.FindAllStringSubmatch(abstract, 2) {
		add("p<=" + match[1])
	}
	for _, match := range nntPattern.FindAllStringSubmatch(abstract, 1) {
		add("NNT " + match[1])
	}

	if len(statistics) > 6 {
		statistics = statistics[:6]
	}

	return statistics
}

func buildContextStatement(study Study) string {
	switch {
	case study.Score >= 12:
		return "Hohe klinische Relevanz, Ergebnis sollte zeitnah diskutiert werden."
	case study.Score >= 8:
		return "Relevante Evidenz fuer die Akutversorgung, Details pruefen."
	case study.Score >= 5:
		return "Moeglicherweise relevant, eher zur Kenntnisnahme."
	}

	return "Geringe unmittelbare Praxisrelevanz."
}

// RankStudies scores every study and returns the top n by score, ties
// broken by newer publication date then PMID.
func RankStudies(studies []Study, topN int) []Study {
	ranked := make([]Study, len(studies))
	copy(ranked, studies)

	for index := range ranked {
		ScoreStudy(&ranked[index])
	}

	sort.SliceStable(ranked, func(a int, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}

		dateA := ranked[a].PublicationDate
		dateB := ranked[b].PublicationDate
		if dateA != nil && dateB != nil && !dateA.Equal(*dateB) {
			return dateA.After(*dateB)
		}
		if (dateA != nil) != (dateB != nil) {
			return dateA != nil
		}

		return ranked[a].PMID < ranked[b].PMID
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return ranked
}
