// Package analysis implements the per-file pipeline: the gatekeeper that
// decides whether a file is analyzable, the line classifier that folds a
// token stream into per-line categories, and the builder that assembles one
// immutable SourceAnalysis record per file.
package analysis

import (
	"strings"
	"unicode"

	"github.com/linetally/linetally/internal/lexing"
)

// whiteCharacters are bracket and separator runes with no semantic weight.
// A code line whose stripped text consists solely of these is reclassified
// as empty.
const whiteCharacters = "()[]{},:;"

// LineCounts is the classifier's result for one file.
type LineCounts struct {
	LineCount     int
	Code          int
	Documentation int
	Empty         int
	String        int
	// NoOpSuppressed reports whether at least one line consisting of a
	// no-operation marker was reclassified as empty.
	NoOpSuppressed bool
}

// MarkerSet holds the no-operation markers of one language. Matching is
// case-sensitive.
type MarkerSet map[string]struct{}

// NewMarkerSet builds a MarkerSet from literal marker strings.
func NewMarkerSet(markers ...string) MarkerSet {
	markerSet := make(MarkerSet, len(markers))
	for _, marker := range markers {
		markerSet[marker] = struct{}{}
	}
	return markerSet
}

// lineState accumulates category votes and text for the current physical line.
type lineState struct {
	hasCode          bool
	hasDocumentation bool
	hasString        bool
	text             strings.Builder
}

// ClassifyLines folds an ordered token stream into per-line categories and
// tallies them. The result is a pure function of the token stream and the
// marker set: classification does not depend on how the lexer merged
// adjacent same-kind runs, only on the kind at each character.
func ClassifyLines(tokens []lexing.Token, noOpMarkers MarkerSet) LineCounts {
	var counts LineCounts
	var current lineState

	for _, currentToken := range tokens {
		remainingText := currentToken.Text
		for remainingText != "" {
			fragment := remainingText
			endsLine := false
			if newlineIndex := strings.IndexByte(remainingText, '\n'); newlineIndex != -1 {
				fragment = remainingText[:newlineIndex+1]
				remainingText = remainingText[newlineIndex+1:]
				endsLine = true
			} else {
				remainingText = ""
			}

			current.text.WriteString(fragment)
			if currentToken.Kind != lexing.KindWhitespace && strings.TrimSpace(fragment) != "" {
				switch currentToken.Kind {
				case lexing.KindComment:
					current.hasDocumentation = true
				case lexing.KindString:
					current.hasString = true
				default:
					current.hasCode = true
				}
			}

			if endsLine {
				counts.tally(&current, noOpMarkers)
				current = lineState{}
			}
		}
	}

	// A trailing fragment without a final newline counts as a line only when
	// it contributed non-whitespace content.
	if current.hasCode || current.hasDocumentation || current.hasString {
		counts.tally(&current, noOpMarkers)
	}

	return counts
}

// tally assigns the single category of the finished line and increments the
// matching counter. Code beats documentation beats string; a line with no
// non-whitespace content is empty.
func (counts *LineCounts) tally(current *lineState, noOpMarkers MarkerSet) {
	counts.LineCount++
	switch {
	case current.hasCode:
		counts.tallyCodeLine(current.text.String(), noOpMarkers)
	case current.hasDocumentation:
		counts.Documentation++
	case current.hasString:
		counts.String++
	default:
		counts.Empty++
	}
}

// tallyCodeLine applies the white-character and no-operation suppressions to
// a line that would otherwise count as code.
func (counts *LineCounts) tallyCodeLine(lineText string, noOpMarkers MarkerSet) {
	remainingText := stripWhiteCharacters(lineText)
	if remainingText == "" {
		counts.Empty++
		return
	}
	if _, isNoOp := noOpMarkers[remainingText]; isNoOp {
		counts.Empty++
		counts.NoOpSuppressed = true
		return
	}
	counts.Code++
}

// stripWhiteCharacters removes whitespace and white-character punctuation.
func stripWhiteCharacters(lineText string) string {
	return strings.Map(func(currentRune rune) rune {
		if unicode.IsSpace(currentRune) || strings.ContainsRune(whiteCharacters, currentRune) {
			return -1
		}
		return currentRune
	}, lineText)
}
