package analysis

import (
	"os"

	"go.uber.org/zap"

	"github.com/linetally/linetally/internal/encoding"
	"github.com/linetally/linetally/internal/lexing"
	"github.com/linetally/linetally/internal/tokenizer"
	"github.com/linetally/linetally/internal/types"
)

// SourceAnalysis is the immutable result of analyzing one file. For the
// analyzed state the four category counts sum to LineCount; for every
// terminal pseudo-state the category counts are zero and LineCount holds the
// raw physical line count of the file, or zero when it was unreadable.
type SourceAnalysis struct {
	Path          string
	Language      string
	Group         string
	State         string
	StateDetail   string
	LineCount     int
	Code          int
	Documentation int
	Empty         int
	String        int
	// Tokens is an optional LLM token estimate of the decoded text,
	// populated only when the builder carries a counter.
	Tokens int
	// NoOpSuppressed reports whether any no-operation marker line was
	// reclassified as empty.
	NoOpSuppressed bool
}

// IsCountable reports whether the record's line counts enter summary totals.
func (analysis SourceAnalysis) IsCountable() bool {
	return analysis.State == types.StateAnalyzed
}

// SummaryLanguage is the language name the record aggregates under:
// the detected language for analyzed files, a pseudo-language otherwise.
func (analysis SourceAnalysis) SummaryLanguage() string {
	if analysis.State == types.StateAnalyzed {
		return analysis.Language
	}
	return types.PseudoLanguages[analysis.State]
}

// Builder orchestrates gatekeeper, decoding, lexing, and classification
// into exactly one SourceAnalysis per file. It never propagates I/O or
// lexer failures; they become records in the error state.
type Builder struct {
	gatekeeper *Gatekeeper
	markers    MarkerTable
	counter    tokenizer.Counter
	logger     *zap.Logger
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Registry enables duplicate detection when non-nil.
	Registry *DuplicateRegistry
	// IsGenerated enables generated-file detection when non-nil.
	IsGenerated GeneratedPredicate
	// Markers overrides the built-in no-operation marker table when non-nil.
	Markers MarkerTable
	// Counter enables LLM token estimates when non-nil.
	Counter tokenizer.Counter
	// Logger receives per-file analyze and skip events.
	Logger *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(options BuilderOptions) *Builder {
	markers := options.Markers
	if markers == nil {
		markers = DefaultMarkerTable()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		gatekeeper: NewGatekeeper(options.Registry, options.IsGenerated),
		markers:    markers,
		counter:    options.Counter,
		logger:     logger,
	}
}

// BuildAnalysis analyzes the file at path and returns its record. The group
// label is carried through unchanged.
func (builder *Builder) BuildAnalysis(path string, group string) SourceAnalysis {
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		builder.logger.Warn("cannot read file", zap.String("path", path), zap.Error(readErr))
		return SourceAnalysis{
			Path:        path,
			Language:    types.PseudoLanguages[types.StateError],
			Group:       group,
			State:       types.StateError,
			StateDetail: readErr.Error(),
		}
	}
	return builder.buildFromContent(path, group, content)
}

// BuildAnalysisFromContent analyzes already-read content, used when the
// caller owns file access.
func (builder *Builder) BuildAnalysisFromContent(path string, group string, content []byte) SourceAnalysis {
	return builder.buildFromContent(path, group, content)
}

func (builder *Builder) buildFromContent(path string, group string, content []byte) SourceAnalysis {
	verdict := builder.gatekeeper.Inspect(path, content)
	if verdict.State != types.StateAnalyzed {
		builder.logger.Debug("skip file",
			zap.String("path", path),
			zap.String("state", verdict.State),
			zap.String("detail", verdict.Detail))
		return SourceAnalysis{
			Path:        path,
			Language:    types.PseudoLanguages[verdict.State],
			Group:       group,
			State:       verdict.State,
			StateDetail: verdict.Detail,
			LineCount:   rawLineCount(content),
		}
	}

	decoded, decodeErr := encoding.Decode(content, path)
	if decodeErr != nil {
		builder.logger.Warn("cannot decode file", zap.String("path", path), zap.Error(decodeErr))
		return builder.errorAnalysis(path, group, content, decodeErr.Error())
	}

	tokens, tokenizeErr := lexing.Tokenize(decoded.Text, verdict.Language)
	if tokenizeErr != nil {
		builder.logger.Warn("cannot tokenize file", zap.String("path", path), zap.Error(tokenizeErr))
		return builder.errorAnalysis(path, group, content, tokenizeErr.Error())
	}

	builder.logger.Debug("analyze file",
		zap.String("path", path),
		zap.String("language", verdict.Language),
		zap.String("encoding", decoded.Encoding))

	counts := ClassifyLines(tokens, builder.markers.MarkersFor(verdict.Language))
	tokenEstimate := builder.countTokens(path, decoded.Text)

	return SourceAnalysis{
		Path:           path,
		Language:       verdict.Language,
		Group:          group,
		State:          types.StateAnalyzed,
		LineCount:      counts.LineCount,
		Code:           counts.Code,
		Documentation:  counts.Documentation,
		Empty:          counts.Empty,
		String:         counts.String,
		Tokens:         tokenEstimate,
		NoOpSuppressed: counts.NoOpSuppressed,
	}
}

func (builder *Builder) errorAnalysis(path string, group string, content []byte, detail string) SourceAnalysis {
	return SourceAnalysis{
		Path:        path,
		Language:    types.PseudoLanguages[types.StateError],
		Group:       group,
		State:       types.StateError,
		StateDetail: detail,
		LineCount:   rawLineCount(content),
	}
}

func (builder *Builder) countTokens(path string, text string) int {
	if builder.counter == nil {
		return 0
	}
	tokenCount, countErr := builder.counter.CountString(text)
	if countErr != nil {
		builder.logger.Warn("cannot count tokens", zap.String("path", path), zap.Error(countErr))
		return 0
	}
	return tokenCount
}
