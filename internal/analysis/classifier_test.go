package analysis_test

import (
	"testing"

	"github.com/linetally/linetally/internal/analysis"
	"github.com/linetally/linetally/internal/lexing"
)

func codeToken(text string) lexing.Token {
	return lexing.Token{Kind: lexing.KindCode, Text: text}
}

func commentToken(text string) lexing.Token {
	return lexing.Token{Kind: lexing.KindComment, Text: text}
}

func stringToken(text string) lexing.Token {
	return lexing.Token{Kind: lexing.KindString, Text: text}
}

func whitespaceToken(text string) lexing.Token {
	return lexing.Token{Kind: lexing.KindWhitespace, Text: text}
}

// TestClassifyLines verifies the single-category-per-line rule across the
// main line shapes.
func TestClassifyLines(testingHandle *testing.T) {
	pythonMarkers := analysis.NewMarkerSet("pass")

	testCases := []struct {
		name     string
		tokens   []lexing.Token
		markers  analysis.MarkerSet
		expected analysis.LineCounts
	}{
		{
			name:     "no_tokens",
			tokens:   nil,
			expected: analysis.LineCounts{},
		},
		{
			name:     "single_code_line",
			tokens:   []lexing.Token{codeToken("x = 1\n")},
			expected: analysis.LineCounts{LineCount: 1, Code: 1},
		},
		{
			name:     "blank_line",
			tokens:   []lexing.Token{whitespaceToken("\n")},
			expected: analysis.LineCounts{LineCount: 1, Empty: 1},
		},
		{
			name:     "comment_line",
			tokens:   []lexing.Token{commentToken("# heading\n")},
			expected: analysis.LineCounts{LineCount: 1, Documentation: 1},
		},
		{
			name:     "string_only_line",
			tokens:   []lexing.Token{stringToken("\"banner\"\n")},
			expected: analysis.LineCounts{LineCount: 1, String: 1},
		},
		{
			name: "code_beats_comment",
			tokens: []lexing.Token{
				codeToken("x = 1"),
				whitespaceToken("  "),
				commentToken("# trailing\n"),
			},
			expected: analysis.LineCounts{LineCount: 1, Code: 1},
		},
		{
			name: "comment_beats_string",
			tokens: []lexing.Token{
				stringToken("\"text\""),
				whitespaceToken(" "),
				commentToken("# note\n"),
			},
			expected: analysis.LineCounts{LineCount: 1, Documentation: 1},
		},
		{
			name:     "white_characters_only_is_empty",
			tokens:   []lexing.Token{codeToken(");\n")},
			expected: analysis.LineCounts{LineCount: 1, Empty: 1},
		},
		{
			name:    "no_op_marker_is_empty",
			tokens:  []lexing.Token{whitespaceToken("    "), codeToken("pass\n")},
			markers: pythonMarkers,
			expected: analysis.LineCounts{
				LineCount:      1,
				Empty:          1,
				NoOpSuppressed: true,
			},
		},
		{
			name:     "marker_without_marker_set_stays_code",
			tokens:   []lexing.Token{codeToken("pass\n")},
			expected: analysis.LineCounts{LineCount: 1, Code: 1},
		},
		{
			name: "multiline_string_counts_every_line",
			tokens: []lexing.Token{
				stringToken("\"\"\"first\nsecond\nthird\"\"\"\n"),
			},
			expected: analysis.LineCounts{LineCount: 3, String: 3},
		},
		{
			name:     "trailing_fragment_with_marks_counts",
			tokens:   []lexing.Token{codeToken("return 1")},
			expected: analysis.LineCounts{LineCount: 1, Code: 1},
		},
		{
			name:     "trailing_whitespace_fragment_is_not_a_line",
			tokens:   []lexing.Token{codeToken("x = 1\n"), whitespaceToken("   ")},
			expected: analysis.LineCounts{LineCount: 1, Code: 1},
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			counts := analysis.ClassifyLines(testCase.tokens, testCase.markers)
			if counts != testCase.expected {
				t.Fatalf("expected %+v, got %+v", testCase.expected, counts)
			}
			categorySum := counts.Code + counts.Documentation + counts.Empty + counts.String
			if categorySum != counts.LineCount {
				t.Fatalf("category sum %d does not match line count %d", categorySum, counts.LineCount)
			}
		})
	}
}

// TestClassifyLinesIsInvariantToRunMerging verifies that splitting one token
// into adjacent same-kind tokens never changes the counts.
func TestClassifyLinesIsInvariantToRunMerging(testingHandle *testing.T) {
	merged := []lexing.Token{
		codeToken("func main() {\n\tprintln(1)\n}\n"),
	}
	split := []lexing.Token{
		codeToken("func main() {"),
		codeToken("\n\tprintln"),
		codeToken("(1)\n"),
		codeToken("}"),
		codeToken("\n"),
	}

	mergedCounts := analysis.ClassifyLines(merged, nil)
	splitCounts := analysis.ClassifyLines(split, nil)
	if mergedCounts != splitCounts {
		testingHandle.Fatalf("merged counts %+v differ from split counts %+v", mergedCounts, splitCounts)
	}
}

// TestClassifyLinesIsDeterministic verifies that classifying the same stream
// twice yields identical counts.
func TestClassifyLinesIsDeterministic(testingHandle *testing.T) {
	tokens := []lexing.Token{
		commentToken("# header\n"),
		codeToken("value = compute()\n"),
		whitespaceToken("\n"),
		stringToken("\"tail\"\n"),
	}
	first := analysis.ClassifyLines(tokens, nil)
	second := analysis.ClassifyLines(tokens, nil)
	if first != second {
		testingHandle.Fatalf("first run %+v differs from second run %+v", first, second)
	}
}
