// Package output renders analysis reports as a text table, JSON, or
// cloc-compatible XML. Writers consume plain report rows; no counting policy
// lives here beyond choosing which columns to show.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linetally/linetally/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	summaryHeaderFormat   = "%-24s %7s %9s %6s %9s %6s %9s %9s\n"
	summaryRowFormat      = "%-24s %7d %9d %5.1f%% %9d %5.1f%% %9d %9d\n"
	summarySeparatorWidth = 88

	filesHeaderFormat = "%-10s %-18s %-12s %7s %7s %7s %7s %7s\n"
	filesRowFormat    = "%-10s %-18s %-12s %7d %7d %7d %7d %7d\n"

	totalsLabel = "Sum"
)

// RenderSummaryText returns the per-language summary table. Pseudo-language
// rows keep their file counts; their line columns are zero by construction.
func RenderSummaryText(report types.Report) string {
	var buffer bytes.Buffer

	buffer.WriteString(fmt.Sprintf(summaryHeaderFormat,
		"Language", "Files", "Code", "%", "Comment", "%", "Empty", "String"))
	buffer.WriteString(separatorLine + "\n")
	for _, languageRow := range report.Languages {
		buffer.WriteString(fmt.Sprintf(summaryRowFormat,
			languageRow.Language,
			languageRow.FileCount,
			languageRow.Code,
			languageRow.CodePercentage,
			languageRow.Documentation,
			languageRow.DocumentationPercentage,
			languageRow.Empty,
			languageRow.String))
	}
	buffer.WriteString(separatorLine + "\n")
	buffer.WriteString(fmt.Sprintf(summaryRowFormat,
		totalsLabel,
		report.Totals.FileCount,
		report.Totals.Code,
		percentageOrZero(report.Totals.Code, report.Totals.LineCount),
		report.Totals.Documentation,
		percentageOrZero(report.Totals.Documentation, report.Totals.LineCount),
		report.Totals.Empty,
		report.Totals.String))
	return buffer.String()
}

// RenderFilesText returns the per-file listing: state, language, group, the
// four line counts, and the path of every scanned file.
func RenderFilesText(report types.Report) string {
	var buffer bytes.Buffer
	buffer.WriteString(fmt.Sprintf(filesHeaderFormat,
		"State", "Language", "Group", "Lines", "Code", "Comment", "Empty", "String"))
	buffer.WriteString(separatorLine + "\n")
	for _, fileRow := range report.Files {
		buffer.WriteString(fmt.Sprintf(filesRowFormat,
			fileRow.State,
			fileRow.Language,
			fileRow.Group,
			fileRow.LineCount,
			fileRow.Code,
			fileRow.Documentation,
			fileRow.Empty,
			fileRow.String))
		buffer.WriteString(indentSpacer + fileRow.Path)
		if fileRow.StateDetail != "" {
			buffer.WriteString(" (" + fileRow.StateDetail + ")")
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

// RenderJSON returns the full report as an indented JSON document.
func RenderJSON(report types.Report) (string, error) {
	encoded, encodeErr := json.MarshalIndent(report, indentPrefix, indentSpacer)
	if encodeErr != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", encodeErr)
	}
	return string(encoded) + "\n", nil
}

var separatorLine = strings.Repeat("-", summarySeparatorWidth)

func percentageOrZero(count int, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return 100.0 * float64(count) / float64(total)
}
