// Package lexing adapts the chroma lexical analyzer to the token stream the
// line classifier consumes.
//
// Chroma owns all language-specific grammar knowledge. This package reduces
// its open-ended token taxonomy to four kinds via a fixed mapping: comments
// map to comment-like, string literals to string-like, whitespace to
// whitespace-like, and everything else, including kinds introduced by future
// lexers, to code-like. Files handled by the plain-text fallback lexer are the
// one named override: their non-blank content maps to comment-like so text
// files count as documentation.
package lexing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Kind is the classifier-facing reduction of chroma's token taxonomy.
type Kind int

const (
	// KindCode marks tokens that carry semantic weight on a line.
	KindCode Kind = iota
	// KindComment marks comment and documentation tokens.
	KindComment
	// KindString marks string-literal tokens.
	KindString
	// KindWhitespace marks tokens that never upgrade a line's category.
	KindWhitespace
)

// Token is one (kind, text) pair of a file's token stream. A token may span
// multiple physical lines.
type Token struct {
	Kind Kind
	Text string
}

// pythonLanguageName identifies streams that receive the docstring transform.
const pythonLanguageName = "Python"

// plainTextLanguageNames lists lexer names whose content counts as documentation.
var plainTextLanguageNames = map[string]struct{}{
	"plaintext": {},
	"fallback":  {},
}

// IdentifyLanguage resolves the language for a file, first by file name and
// then by content sample. It returns false when no lexer applies.
func IdentifyLanguage(fileName string, contentSample string) (string, bool) {
	lexer := lexers.Match(filepath.Base(fileName))
	if lexer == nil && contentSample != "" {
		lexer = lexers.Analyse(contentSample)
	}
	if lexer == nil {
		return "", false
	}
	return lexer.Config().Name, true
}

// Tokenize produces the ordered token stream for text in the named language.
func Tokenize(text string, languageName string) ([]Token, error) {
	lexer := lexers.Get(languageName)
	if lexer == nil {
		return nil, fmt.Errorf("no lexer registered for language %q", languageName)
	}
	// Coalescing merges adjacent same-kind runs; classification is invariant
	// to run merging, so this only reduces token count.
	lexer = chroma.Coalesce(lexer)

	iterator, tokeniseErr := lexer.Tokenise(nil, text)
	if tokeniseErr != nil {
		return nil, fmt.Errorf("tokenize as %s: %w", languageName, tokeniseErr)
	}

	asDocumentation := isPlainTextLanguage(lexer.Config().Name)
	var tokens []Token
	for chromaToken := iterator(); chromaToken != chroma.EOF; chromaToken = iterator() {
		if chromaToken.Value == "" {
			continue
		}
		tokens = append(tokens, Token{
			Kind: kindFor(chromaToken.Type, asDocumentation),
			Text: chromaToken.Value,
		})
	}

	if lexer.Config().Name == pythonLanguageName {
		pythonizeDocstrings(tokens)
	}
	return tokens, nil
}

// isPlainTextLanguage reports whether the named lexer is the plain fallback.
func isPlainTextLanguage(languageName string) bool {
	_, isPlain := plainTextLanguageNames[strings.ToLower(languageName)]
	return isPlain
}

// kindFor reduces a chroma token type to a classifier kind. Unmapped types
// are code-like so that new lexer kinds fail soft. Whitespace matches
// exactly: the generic Text type shares its sub-category and must stay
// code-like (or documentation-like under the plain-text override), since
// the classifier already ignores blank fragments of any kind.
func kindFor(tokenType chroma.TokenType, asDocumentation bool) Kind {
	switch {
	case tokenType.InCategory(chroma.Comment):
		return KindComment
	case tokenType.InSubCategory(chroma.LiteralString):
		return KindString
	case tokenType == chroma.TextWhitespace:
		return KindWhitespace
	case asDocumentation:
		return KindComment
	default:
		return KindCode
	}
}

// pythonizeDocstrings re-kinds string tokens in statement position after a
// colon-terminated header as comments, so docstrings count as documentation.
func pythonizeDocstrings(tokens []Token) {
	isAfterColon := true
	for index, currentToken := range tokens {
		if isAfterColon && currentToken.Kind == KindString {
			tokens[index].Kind = KindComment
			continue
		}
		trimmedText := strings.TrimRight(currentToken.Text, " \f\n\r\t")
		switch {
		case currentToken.Kind == KindCode && strings.HasSuffix(trimmedText, ":"):
			isAfterColon = true
		case currentToken.Kind == KindComment || trimmedText == "":
			// Comments and whitespace never change statement position.
		default:
			isAfterColon = false
		}
	}
}
