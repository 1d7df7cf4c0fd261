package lexing_test

import (
	"strings"
	"testing"

	"github.com/linetally/linetally/internal/lexing"
)

// TestIdentifyLanguage verifies file-name matching and the not-found case.
func TestIdentifyLanguage(testingHandle *testing.T) {
	testCases := []struct {
		name           string
		fileName       string
		contentSample  string
		expectedName   string
		expectResolved bool
	}{
		{
			name:           "go_by_extension",
			fileName:       "main.go",
			contentSample:  "package main\n",
			expectedName:   "Go",
			expectResolved: true,
		},
		{
			name:           "python_by_extension",
			fileName:       "tool.py",
			contentSample:  "print('x')\n",
			expectedName:   "Python",
			expectResolved: true,
		},
		{
			name:           "text_by_extension",
			fileName:       "notes.txt",
			contentSample:  "remember the milk\n",
			expectedName:   "plaintext",
			expectResolved: true,
		},
		{
			name:           "directory_prefix_is_ignored",
			fileName:       "src/nested/main.go",
			contentSample:  "",
			expectedName:   "Go",
			expectResolved: true,
		},
		{
			name:           "unresolvable_file",
			fileName:       "blob.qqzz",
			contentSample:  "\x7fELF",
			expectResolved: false,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			languageName, resolved := lexing.IdentifyLanguage(testCase.fileName, testCase.contentSample)
			if resolved != testCase.expectResolved {
				t.Fatalf("expected resolved=%v, got %v (language %q)", testCase.expectResolved, resolved, languageName)
			}
			if resolved && languageName != testCase.expectedName {
				t.Fatalf("expected language %q, got %q", testCase.expectedName, languageName)
			}
		})
	}
}

// TestTokenizeGoSource verifies the kind reduction on a Go snippet.
func TestTokenizeGoSource(testingHandle *testing.T) {
	source := "package main\n\n// greet prints.\nfunc greet() {\n\tprintln(\"hello\")\n}\n"
	tokens, tokenizeErr := lexing.Tokenize(source, "Go")
	if tokenizeErr != nil {
		testingHandle.Fatalf("Tokenize error: %v", tokenizeErr)
	}

	var reassembled strings.Builder
	foundComment := false
	foundString := false
	foundCode := false
	for _, currentToken := range tokens {
		reassembled.WriteString(currentToken.Text)
		switch currentToken.Kind {
		case lexing.KindComment:
			if strings.Contains(currentToken.Text, "greet prints") {
				foundComment = true
			}
		case lexing.KindString:
			if strings.Contains(currentToken.Text, "hello") {
				foundString = true
			}
		case lexing.KindCode:
			if strings.Contains(currentToken.Text, "func") || currentToken.Text == "func" {
				foundCode = true
			}
		}
	}

	if reassembled.String() != source {
		testingHandle.Fatalf("token stream does not reassemble the source")
	}
	if !foundComment {
		testingHandle.Fatalf("expected a comment-kind token for the line comment")
	}
	if !foundString {
		testingHandle.Fatalf("expected a string-kind token for the literal")
	}
	if !foundCode {
		testingHandle.Fatalf("expected a code-kind token for the func keyword")
	}
}

// TestTokenizePythonDocstringBecomesComment verifies the docstring re-kinding
// for strings in statement position.
func TestTokenizePythonDocstringBecomesComment(testingHandle *testing.T) {
	source := "def greet():\n    \"\"\"Say hello.\"\"\"\n    return \"hi\"\n"
	tokens, tokenizeErr := lexing.Tokenize(source, "Python")
	if tokenizeErr != nil {
		testingHandle.Fatalf("Tokenize error: %v", tokenizeErr)
	}

	docstringKind := lexing.KindCode
	literalKind := lexing.KindCode
	for _, currentToken := range tokens {
		if strings.Contains(currentToken.Text, "Say hello.") {
			docstringKind = currentToken.Kind
		}
		if strings.Contains(currentToken.Text, "hi") {
			literalKind = currentToken.Kind
		}
	}

	if docstringKind != lexing.KindComment {
		testingHandle.Fatalf("expected docstring kind %v, got %v", lexing.KindComment, docstringKind)
	}
	if literalKind != lexing.KindString {
		testingHandle.Fatalf("expected literal kind %v, got %v", lexing.KindString, literalKind)
	}
}

// TestTokenizeModuleDocstringBecomesComment verifies that a string opening a
// file counts as documentation.
func TestTokenizeModuleDocstringBecomesComment(testingHandle *testing.T) {
	source := "\"\"\"Module docs.\"\"\"\nvalue = 1\n"
	tokens, tokenizeErr := lexing.Tokenize(source, "Python")
	if tokenizeErr != nil {
		testingHandle.Fatalf("Tokenize error: %v", tokenizeErr)
	}
	for _, currentToken := range tokens {
		if strings.Contains(currentToken.Text, "Module docs.") {
			if currentToken.Kind != lexing.KindComment {
				testingHandle.Fatalf("expected module docstring to be comment-kind, got %v", currentToken.Kind)
			}
			return
		}
	}
	testingHandle.Fatalf("docstring token not found")
}

// TestTokenizePlainTextCountsAsDocumentation verifies the plain-text override.
func TestTokenizePlainTextCountsAsDocumentation(testingHandle *testing.T) {
	tokens, tokenizeErr := lexing.Tokenize("just some words\n", "plaintext")
	if tokenizeErr != nil {
		testingHandle.Fatalf("Tokenize error: %v", tokenizeErr)
	}
	foundDocumentation := false
	for _, currentToken := range tokens {
		if strings.Contains(currentToken.Text, "just some words") && currentToken.Kind == lexing.KindComment {
			foundDocumentation = true
		}
	}
	if !foundDocumentation {
		testingHandle.Fatalf("expected plain text content to be comment-kind")
	}
}

// TestTokenizeUnknownLanguageFails verifies the error path for unregistered
// language names.
func TestTokenizeUnknownLanguageFails(testingHandle *testing.T) {
	if _, tokenizeErr := lexing.Tokenize("x", "NoSuchLanguage"); tokenizeErr == nil {
		testingHandle.Fatalf("expected an error for an unregistered language")
	}
}
