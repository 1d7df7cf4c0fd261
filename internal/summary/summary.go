// Package summary folds per-file analysis records into per-language and
// project-wide totals.
package summary

import (
	"strings"

	"github.com/linetally/linetally/internal/analysis"
	"github.com/linetally/linetally/internal/types"
)

// LanguageSummary accumulates counts for one language. Percentages are not
// stored; they are derived against the project totals at read time.
type LanguageSummary struct {
	Language      string
	FileCount     int
	Code          int
	Documentation int
	Empty         int
	String        int
	Tokens        int
}

// IsPseudo reports whether the summary tracks a pseudo-language such as
// "__binary__" rather than a real language.
func (languageSummary *LanguageSummary) IsPseudo() bool {
	return strings.HasPrefix(languageSummary.Language, "__") && strings.HasSuffix(languageSummary.Language, "__")
}

// LineCount is the sum of all four category counts.
func (languageSummary *LanguageSummary) LineCount() int {
	return languageSummary.Code + languageSummary.Documentation + languageSummary.Empty + languageSummary.String
}

// ProjectSummary accumulates language summaries in insertion order plus
// project totals. Absorb is not safe for concurrent use; callers serialize
// record delivery.
type ProjectSummary struct {
	languageOrder []string
	languageIndex map[string]*LanguageSummary

	TotalFileCount          int
	TotalLineCount          int
	TotalCodeCount          int
	TotalDocumentationCount int
	TotalEmptyCount         int
	TotalStringCount        int
	TotalTokenCount         int
}

// NewProjectSummary creates an empty project summary for one run.
func NewProjectSummary() *ProjectSummary {
	return &ProjectSummary{languageIndex: make(map[string]*LanguageSummary)}
}

// Absorb adds one analysis record to the language and project totals. Each
// record must be absorbed exactly once; absorbing it twice double-counts.
// Pseudo-state records are tracked under their pseudo-language name.
func (projectSummary *ProjectSummary) Absorb(record analysis.SourceAnalysis) {
	languageName := record.SummaryLanguage()
	languageSummary, exists := projectSummary.languageIndex[languageName]
	if !exists {
		languageSummary = &LanguageSummary{Language: languageName}
		projectSummary.languageIndex[languageName] = languageSummary
		projectSummary.languageOrder = append(projectSummary.languageOrder, languageName)
	}

	languageSummary.FileCount++
	projectSummary.TotalFileCount++
	if !record.IsCountable() {
		return
	}

	languageSummary.Code += record.Code
	languageSummary.Documentation += record.Documentation
	languageSummary.Empty += record.Empty
	languageSummary.String += record.String
	languageSummary.Tokens += record.Tokens

	projectSummary.TotalCodeCount += record.Code
	projectSummary.TotalDocumentationCount += record.Documentation
	projectSummary.TotalEmptyCount += record.Empty
	projectSummary.TotalStringCount += record.String
	projectSummary.TotalLineCount += record.Code + record.Documentation + record.Empty + record.String
	projectSummary.TotalTokenCount += record.Tokens
}

// Languages returns the language summaries in insertion order.
func (projectSummary *ProjectSummary) Languages() []*LanguageSummary {
	result := make([]*LanguageSummary, 0, len(projectSummary.languageOrder))
	for _, languageName := range projectSummary.languageOrder {
		result = append(result, projectSummary.languageIndex[languageName])
	}
	return result
}

// LanguageFor returns the summary tracked for a language name, if any.
func (projectSummary *ProjectSummary) LanguageFor(languageName string) (*LanguageSummary, bool) {
	languageSummary, exists := projectSummary.languageIndex[languageName]
	return languageSummary, exists
}

// PercentageOf computes 100*count/total, yielding 0.0 for a zero total.
func PercentageOf(count int, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return 100.0 * float64(count) / float64(total)
}

// Rows converts the summary into presentation rows with derived percentages.
func (projectSummary *ProjectSummary) Rows() ([]types.LanguageRow, types.TotalsRow) {
	languageRows := make([]types.LanguageRow, 0, len(projectSummary.languageOrder))
	for _, languageSummary := range projectSummary.Languages() {
		languageRows = append(languageRows, types.LanguageRow{
			Language:                languageSummary.Language,
			FileCount:               languageSummary.FileCount,
			Code:                    languageSummary.Code,
			Documentation:           languageSummary.Documentation,
			Empty:                   languageSummary.Empty,
			String:                  languageSummary.String,
			CodePercentage:          PercentageOf(languageSummary.Code, projectSummary.TotalCodeCount),
			DocumentationPercentage: PercentageOf(languageSummary.Documentation, projectSummary.TotalDocumentationCount),
			EmptyPercentage:         PercentageOf(languageSummary.Empty, projectSummary.TotalEmptyCount),
			StringPercentage:        PercentageOf(languageSummary.String, projectSummary.TotalStringCount),
			Tokens:                  languageSummary.Tokens,
			IsPseudo:                languageSummary.IsPseudo(),
		})
	}
	totals := types.TotalsRow{
		FileCount:     projectSummary.TotalFileCount,
		LineCount:     projectSummary.TotalLineCount,
		Code:          projectSummary.TotalCodeCount,
		Documentation: projectSummary.TotalDocumentationCount,
		Empty:         projectSummary.TotalEmptyCount,
		String:        projectSummary.TotalStringCount,
		Tokens:        projectSummary.TotalTokenCount,
	}
	return languageRows, totals
}
