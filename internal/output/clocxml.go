package output

import (
	"encoding/xml"
	"fmt"

	"github.com/linetally/linetally/internal/types"
)

// The cloc XML dialect groups blank lines and string lines under "blank" so
// existing cloc consumers keep working; the native JSON report exposes all
// four raw counts.

type clocFileElement struct {
	XMLName  xml.Name `xml:"file"`
	Name     string   `xml:"name,attr"`
	Language string   `xml:"language,attr"`
	Blank    int      `xml:"blank,attr"`
	Comment  int      `xml:"comment,attr"`
	Code     int      `xml:"code,attr"`
}

type clocTotalElement struct {
	XMLName xml.Name `xml:"total"`
	Blank   int      `xml:"blank,attr"`
	Comment int      `xml:"comment,attr"`
	Code    int      `xml:"code,attr"`
}

type clocFilesElement struct {
	XMLName xml.Name          `xml:"files"`
	Files   []clocFileElement `xml:"file"`
	Total   clocTotalElement  `xml:"total"`
}

type clocLanguageElement struct {
	XMLName    xml.Name `xml:"language"`
	Name       string   `xml:"name,attr"`
	FilesCount int      `xml:"files_count,attr"`
	Blank      int      `xml:"blank,attr"`
	Comment    int      `xml:"comment,attr"`
	Code       int      `xml:"code,attr"`
}

type clocLanguagesElement struct {
	XMLName   xml.Name              `xml:"languages"`
	Languages []clocLanguageElement `xml:"language"`
}

type clocHeaderElement struct {
	XMLName       xml.Name `xml:"header"`
	GeneratorName string   `xml:"cloc_url"`
	Version       string   `xml:"cloc_version"`
	FilesCounted  int      `xml:"n_files"`
	LinesCounted  int      `xml:"n_lines"`
}

type clocResultsElement struct {
	XMLName   xml.Name `xml:"results"`
	Header    clocHeaderElement
	Files     clocFilesElement
	Languages clocLanguagesElement
}

// RenderClocXML returns the report in the cloc-compatible XML dialect.
func RenderClocXML(report types.Report, generatorName string, generatorVersion string) (string, error) {
	results := clocResultsElement{
		Header: clocHeaderElement{
			GeneratorName: generatorName,
			Version:       generatorVersion,
			FilesCounted:  report.Totals.FileCount,
			LinesCounted:  report.Totals.LineCount,
		},
	}

	for _, fileRow := range report.Files {
		if fileRow.State != types.StateAnalyzed {
			continue
		}
		results.Files.Files = append(results.Files.Files, clocFileElement{
			Name:     fileRow.Path,
			Language: fileRow.Language,
			Blank:    fileRow.Empty + fileRow.String,
			Comment:  fileRow.Documentation,
			Code:     fileRow.Code,
		})
	}
	results.Files.Total = clocTotalElement{
		Blank:   report.Totals.Empty + report.Totals.String,
		Comment: report.Totals.Documentation,
		Code:    report.Totals.Code,
	}

	for _, languageRow := range report.Languages {
		if languageRow.IsPseudo {
			continue
		}
		results.Languages.Languages = append(results.Languages.Languages, clocLanguageElement{
			Name:       languageRow.Language,
			FilesCount: languageRow.FileCount,
			Blank:      languageRow.Empty + languageRow.String,
			Comment:    languageRow.Documentation,
			Code:       languageRow.Code,
		})
	}

	encoded, encodeErr := xml.MarshalIndent(results, indentPrefix, indentSpacer)
	if encodeErr != nil {
		return "", fmt.Errorf("failed to marshal report to XML: %w", encodeErr)
	}
	return xml.Header + string(encoded) + "\n", nil
}
