package parser

import (
	"regexp"
)

// canonical section markers, matched case-insensitively
const (
	MarkerNextPhrase  = "## 1. NEXT_PHRASE"
	MarkerAIResponse  = "## 2. AI_RESPONSE"
	MarkerCorrections = "## 3. CORRECTIONS"
)

type section int

const (
	sectionNextPhrase section = iota
	sectionAIResponse
	sectionCorrections
	sectionCount
)

var markerPatterns = [sectionCount]*regexp.Regexp{
	sectionNextPhrase:  markerPattern(MarkerNextPhrase),
	sectionAIResponse:  markerPattern(MarkerAIResponse),
	sectionCorrections: markerPattern(MarkerCorrections),
}

// any later markdown heading closes the corrections section
var trailingHeading = regexp.MustCompile(`\n[ \t]*##`)

func markerPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(marker))
}

// Markers returns the section markers in the order the model must emit them.
func Markers() []string {
	return []string{MarkerNextPhrase, MarkerAIResponse, MarkerCorrections}
}

// sectionSet records where each marker was found in text; a nil location
// means the marker is absent.
type sectionSet struct {
	text      string
	locations [sectionCount][]int
}

func locateSections(text string) sectionSet {
	s := sectionSet{text: text}
	for i, pattern := range markerPatterns {
		s.locations[i] = pattern.FindStringIndex(text)
	}
	return s
}

func (s sectionSet) complete() bool {
	for _, loc := range s.locations {
		if loc == nil {
			return false
		}
	}
	return true
}

// content returns the text between the marker of sec and the nearest
// following marker, or the end of text.
func (s sectionSet) content(sec section) (string, bool) {
	loc := s.locations[sec]
	if loc == nil {
		return "", false
	}

	start, end := loc[1], len(s.text)
	for other, otherLoc := range s.locations {
		if section(other) == sec || otherLoc == nil {
			continue
		}
		if otherLoc[0] >= start && otherLoc[0] < end {
			end = otherLoc[0]
		}
	}

	body := s.text[start:end]
	if sec == sectionCorrections {
		if cut := trailingHeading.FindStringIndex(body); cut != nil {
			body = body[:cut[0]]
		}
	}
	return body, true
}
