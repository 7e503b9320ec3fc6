package literature

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
const fetchChunkSize = 100

// PubMedClient talks to the NCBI E-utilities. NCBI throttles aggressively,
// so transient failures are retried with exponential backoff instead of
// aborting the monthly run.
type PubMedClient struct {
	Email string

	httpClient *http.Client
}

func NewPubMedClient(email string) *PubMedClient {
	return &PubMedClient{
		Email: email,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// SearchPMIDs runs the stroke/neuro-emergency query over a publication date
// range and returns up to maxResults PMIDs.
func (client *PubMedClient) SearchPMIDs(startDate time.Time, endDate time.Time, maxResults int) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", buildQuery())
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("retmode", "json")
	params.Set("sort", "pub date")
	params.Set("mindate", startDate.Format("2006-01-02"))
	params.Set("maxdate", endDate.Format("2006-01-02"))
	params.Set("datetype", "pdat")
	params.Set("email", client.Email)

	body, err := client.get(fmt.Sprintf("%s/esearch.fcgi?%s", eutilsBase, params.Encode()))
	if err != nil {
		return nil, err
	}

	var searchResponse esearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return nil, err
	}

	return searchResponse.ESearchResult.IDList, nil
}

// FetchStudies loads the article metadata for the given PMIDs in batches.
func (client *PubMedClient) FetchStudies(pmids []string) ([]Study, error) {
	studies := []Study{}

	for start := 0; start < len(pmids); start += fetchChunkSize {
		end := start + fetchChunkSize
		if end > len(pmids) {
			end = len(pmids)
		}

		params := url.Values{}
		params.Set("db", "pubmed")
		params.Set("id", strings.Join(pmids[start:end], ","))
		params.Set("retmode", "xml")
		params.Set("email", client.Email)

		body, err := client.get(fmt.Sprintf("%s/efetch.fcgi?%s", eutilsBase, params.Encode()))
		if err != nil {
			return nil, err
		}

		batch, err := ParseEFetchDocument(body)
		if err != nil {
			return nil, err
		}

		studies = append(studies, batch...)
	}

	return studies, nil
}

func (client *PubMedClient) get(requestURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		resp, err := client.httpClient.Get(requestURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("transient status %d from e-utilities", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("unexpected status %d from e-utilities", resp.StatusCode))
		}

		return body, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxElapsedTime = 2 * time.Minute

	return backoff.RetryWithData(operation, policy)
}

func buildQuery() string {
	strokeTerms := "(stroke OR ischemic stroke OR intracerebral hemorrhage OR subarachnoid hemorrhage OR thrombectomy OR thrombolysis)"
	emergencyTerms := "(emergency OR acute OR critical care OR neurocritical care OR emergency department)"
	clinicalTerms := "(randomized OR trial OR cohort OR registry OR meta-analysis OR guideline)"
	excludeTerms := "NOT (animals[MeSH Terms] NOT humans[MeSH Terms]) NOT (mouse OR mice OR rat OR in vitro OR preclinical)"

	return fmt.Sprintf("%s AND %s AND %s %s", strokeTerms, emergencyTerms, clinicalTerms, excludeTerms)
}

// efetch document structures, reduced to the fields the report needs

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID string `xml:"MedlineCitation>PMID"`

	Title        string `xml:"MedlineCitation>Article>ArticleTitle"`
	JournalTitle string `xml:"MedlineCitation>Article>Journal>Title"`

	AbstractTexts    []string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	PublicationTypes []string `xml:"MedlineCitation>Article>PublicationTypeList>PublicationType"`
	Affiliations     []string `xml:"MedlineCitation>Article>AuthorList>Author>AffiliationInfo>Affiliation"`

	PubDate struct {
		Year  string `xml:"Year"`
		Month string `xml:"Month"`
		Day   string `xml:"Day"`
	} `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate"`

	ArticleIDs []struct {
		IDType string `xml:"IdType,attr"`
		Value  string `xml:",chardata"`
	} `xml:"PubmedData>ArticleIdList>ArticleId"`
}

// ParseEFetchDocument converts an efetch XML payload into studies.
func ParseEFetchDocument(payload []byte) ([]Study, error) {
	var articleSet pubmedArticleSet
	if err := xml.Unmarshal(payload, &articleSet); err != nil {
		return nil, err
	}

	studies := []Study{}

	for _, article := range articleSet.Articles {
		abstractParts := []string{}
		for _, part := range article.AbstractTexts {
			if strings.TrimSpace(part) != "" {
				abstractParts = append(abstractParts, strings.TrimSpace(part))
			}
		}

		doi := ""
		for _, articleID := range article.ArticleIDs {
			if articleID.IDType == "doi" && strings.TrimSpace(articleID.Value) != "" {
				doi = strings.TrimSpace(articleID.Value)
				break
			}
		}

		affiliations := []string{}
		for _, affiliation := range article.Affiliations {
			if strings.TrimSpace(affiliation) != "" {
				affiliations = append(affiliations, strings.TrimSpace(affiliation))
			}
		}

		studies = append(studies, Study{
			PMID:             strings.TrimSpace(article.PMID),
			Title:            strings.TrimSpace(article.Title),
			Journal:          strings.TrimSpace(article.JournalTitle),
			PublicationDate:  parsePubDate(article.PubDate.Year, article.PubDate.Month, article.PubDate.Day),
			Abstract:         strings.Join(abstractParts, " "),
			PublicationTypes: article.PublicationTypes,
			Affiliations:     affiliations,
			CountryHints:     extractCountries(affiliations),
			DOI:              doi,
		})
	}

	return studies, nil
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func parsePubDate(year string, month string, day string) *time.Time {
	yearNumber, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return nil
	}

	monthValue := time.January
	rawMonth := strings.TrimSpace(month)
	if monthNumber, err := strconv.Atoi(rawMonth); err == nil && monthNumber >= 1 && monthNumber <= 12 {
		monthValue = time.Month(monthNumber)
	} else if len(rawMonth) >= 3 {
		if named, exists := monthNames[strings.ToLower(rawMonth[:3])]; exists {
			monthValue = named
		}
	}

	dayNumber := 1
	if parsedDay, err := strconv.Atoi(strings.TrimSpace(day)); err == nil && parsedDay >= 1 && parsedDay <= 31 {
		dayNumber = parsedDay
	}

	parsed := time.Date(yearNumber, monthValue, dayNumber, 0, 0, 0, 0, time.UTC)
	if parsed.Month() != monthValue {
		// Day overflowed the month, fall back to the 1st
		parsed = time.Date(yearNumber, monthValue, 1, 0, 0, 0, 0, time.UTC)
	}

	return &parsed
}

var countryMarkers = map[string]string{
	"germany": "Deutschland", "deutschland": "Deutschland",
	"usa": "USA", "united states": "USA",
	"canada": "Kanada",
	"uk":     "Vereinigtes Königreich", "united kingdom": "Vereinigtes Königreich",
	"france": "Frankreich", "italy": "Italien", "spain": "Spanien",
	"netherlands": "Niederlande", "sweden": "Schweden", "norway": "Norwegen",
	"denmark": "Dänemark", "switzerland": "Schweiz", "austria": "Österreich",
	"japan": "Japan", "china": "China", "korea": "Südkorea",
	"australia": "Australien", "india": "Indien", "brazil": "Brasilien",
}

// countryTailPattern accepts a trailing "Portugal" style segment but
// rejects postcodes, mail addresses and similar noise.
var countryTailPattern = regexp.MustCompile(`^[A-Z][A-Za-zäöüÄÖÜß ]{3,30}$`)

func extractCountries(affiliations []string) []string {
	hits := map[string]bool{}

	for _, affiliation := range affiliations {
		lower := strings.ToLower(affiliation)

		matched := false
		for marker, normalised := range countryMarkers {
			if strings.Contains(lower, marker) {
				hits[normalised] = true
				matched = true
			}
		}

		if !matched {
			parts := strings.Split(affiliation, ",")
			tail := strings.TrimSuffix(strings.TrimSpace(parts[len(parts)-1]), ".")
			if countryTailPattern.MatchString(tail) {
				hits[tail] = true
			}
		}
	}

	countries := []string{}
	for country := range hits {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	return countries
}
