package literature

import (
	"regexp"
	"strings"
)

// Short animal terms need word boundaries, "rat" as a bare substring would
// hit "rates".
var animalModelPattern = regexp.MustCompile(`\b(mouse|mice|murine|rats?|rodents?|porcine|canine)\b`)

var excludedKeywords = []string{
	"in vitro", "cell culture", "cell line", "preclinical",
	"case report", "case series",
	"protocol for", "study protocol", "trial protocol",
	"pediatric", "paediatric", "children", "neonatal",
}

var highRelevanceTopics = []string{
	"thrombectomy", "thrombolysis", "tenecteplase", "alteplase",
	"intracerebral hemorrhage", "subarachnoid hemorrhage",
	"large vessel occlusion", "basilar artery",
	"blood pressure management", "anticoagulation reversal",
	"decompressive", "status epilepticus", "neurocritical",
	"door-to-needle", "prehospital stroke", "mobile stroke unit",
}

var allowedPublicationTypes = map[string]bool{
	"Randomized Controlled Trial": true,
	"Clinical Trial":              true,
	"Clinical Trial, Phase III":   true,
	"Multicenter Study":           true,
	"Meta-Analysis":               true,
	"Systematic Review":           true,
	"Comparative Study":           true,
	"Observational Study":         true,
	"Practice Guideline":          true,
	"Guideline":                   true,
	"Journal Article":             true,
}

// PassesClinicalScope drops studies that are out of scope for an adult
// acute-neurology digest before any scoring happens.
func PassesClinicalScope(study Study) bool {
	if strings.TrimSpace(study.Abstract) == "" {
		return false
	}

	text := strings.ToLower(study.Title + " " + study.Abstract)
	if animalModelPattern.MatchString(text) {
		return false
	}
	for _, keyword := range excludedKeywords {
		if strings.Contains(text, keyword) {
			return false
		}
	}

	if len(study.PublicationTypes) > 0 {
		allowed := false
		for _, publicationType := range study.PublicationTypes {
			if allowedPublicationTypes[publicationType] {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}

// FilterCandidates keeps the in-scope studies in their original order.
func FilterCandidates(studies []Study) []Study {
	kept := []Study{}
	for _, study := range studies {
		if PassesClinicalScope(study) {
			kept = append(kept, study)
		}
	}

	return kept
}
