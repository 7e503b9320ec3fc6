package literature

import (
	"strings"
)

// Summarize reduces an abstract to a short digest paragraph. It keeps the
// opening sentence plus the sentences carrying results language, capped at
// maxSentences.
func Summarize(abstract string, maxSentences int) string {
	sentences := splitSentences(abstract)
	if len(sentences) == 0 {
		return ""
	}
	if maxSentences <= 0 {
		maxSentences = 3
	}

	selected := []string{sentences[0]}
	for _, sentence := range sentences[1:] {
		if len(selected) >= maxSentences {
			break
		}
		if isResultSentence(sentence) {
			selected = append(selected, sentence)
		}
	}

	// Abstract without recognisable results language, take the lead-in.
	if len(selected) == 1 && len(sentences) > 1 {
		for _, sentence := range sentences[1:] {
			if len(selected) >= maxSentences {
				break
			}
			selected = append(selected, sentence)
		}
	}

	return strings.Join(selected, " ")
}

var resultMarkers = []string{
	"result", "we found", "showed", "demonstrated", "was associated",
	"significant", "reduced", "increased", "improved", "conclusion",
	"primary outcome", "occurred in",
}

func isResultSentence(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, marker := range resultMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// splitSentences is a heuristic splitter good enough for abstracts. It
// avoids breaking on decimal points and common abbreviations.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := []string{}
	var current strings.Builder

	runes := []rune(text)
	for index, character := range runes {
		current.WriteRune(character)

		if character != '.' && character != '!' && character != '?' {
			continue
		}

		// Decimal point or versioned token, keep going.
		if character == '.' && index+1 < len(runes) && runes[index+1] != ' ' {
			continue
		}

		candidate := strings.TrimSpace(current.String())
		if endsWithAbbreviation(candidate) {
			continue
		}

		if candidate != "" {
			sentences = append(sentences, candidate)
		}
		current.Reset()
	}

	if remainder := strings.TrimSpace(current.String()); remainder != "" {
		sentences = append(sentences, remainder)
	}

	return sentences
}

var abbreviations = []string{"vs.", "e.g.", "i.e.", "et al.", "ca.", "approx.", "no.", "dr.", "prof."}

func endsWithAbbreviation(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, abbreviation := range abbreviations {
		if strings.HasSuffix(lower, abbreviation) {
			return true
		}
	}

	return false
}
