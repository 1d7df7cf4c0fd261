// Package types defines every cross-package data structure used by the linetally CLI.
package types

const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatClocXML = "cloc-xml"

	// StateAnalyzed marks a file that passed the gatekeeper and was classified.
	StateAnalyzed = "analyzed"
	// StateBinary marks a file whose content looks binary.
	StateBinary = "binary"
	// StateDuplicate marks a file whose size and content hash were seen before.
	StateDuplicate = "duplicate"
	// StateEmpty marks a zero-byte file.
	StateEmpty = "empty"
	// StateError marks a file that could not be read or decoded.
	StateError = "error"
	// StateGenerated marks a file matched by a generated-file pattern.
	StateGenerated = "generated"
	// StateUnknown marks a file for which no lexer could be resolved.
	StateUnknown = "unknown"
)

// PseudoLanguages maps every terminal state to the language name its
// records are aggregated under.
var PseudoLanguages = map[string]string{
	StateBinary:    "__binary__",
	StateDuplicate: "__duplicate__",
	StateEmpty:     "__empty__",
	StateError:     "__error__",
	StateGenerated: "__generated__",
	StateUnknown:   "__unknown__",
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// FileRow is the per-file entry emitted by the JSON and XML writers.
type FileRow struct {
	Path          string `json:"path" xml:"path,attr"`
	Language      string `json:"language" xml:"language,attr"`
	Group         string `json:"group,omitempty" xml:"group,attr,omitempty"`
	State         string `json:"state" xml:"state,attr"`
	StateDetail   string `json:"stateDetail,omitempty" xml:"stateDetail,attr,omitempty"`
	LineCount     int    `json:"lineCount" xml:"lineCount,attr"`
	Code          int    `json:"code" xml:"code,attr"`
	Documentation int    `json:"documentation" xml:"documentation,attr"`
	Empty         int    `json:"empty" xml:"empty,attr"`
	String        int    `json:"string" xml:"string,attr"`
	Tokens        int    `json:"tokens,omitempty" xml:"tokens,attr,omitempty"`
}

// LanguageRow is the per-language summary entry exposed to writers.
// Percentages are computed against the project totals at render time.
type LanguageRow struct {
	Language                string  `json:"language" xml:"language,attr"`
	FileCount               int     `json:"fileCount" xml:"fileCount,attr"`
	Code                    int     `json:"code" xml:"code,attr"`
	Documentation           int     `json:"documentation" xml:"documentation,attr"`
	Empty                   int     `json:"empty" xml:"empty,attr"`
	String                  int     `json:"string" xml:"string,attr"`
	CodePercentage          float64 `json:"codePercentage" xml:"codePercentage,attr"`
	DocumentationPercentage float64 `json:"documentationPercentage" xml:"documentationPercentage,attr"`
	EmptyPercentage         float64 `json:"emptyPercentage" xml:"emptyPercentage,attr"`
	StringPercentage        float64 `json:"stringPercentage" xml:"stringPercentage,attr"`
	Tokens                  int     `json:"tokens,omitempty" xml:"tokens,attr,omitempty"`
	IsPseudo                bool    `json:"isPseudo,omitempty" xml:"-"`
}

// TotalsRow aggregates every language row of one run.
type TotalsRow struct {
	FileCount     int `json:"fileCount" xml:"fileCount,attr"`
	LineCount     int `json:"lineCount" xml:"lineCount,attr"`
	Code          int `json:"code" xml:"code,attr"`
	Documentation int `json:"documentation" xml:"documentation,attr"`
	Empty         int `json:"empty" xml:"empty,attr"`
	String        int `json:"string" xml:"string,attr"`
	Tokens        int `json:"tokens,omitempty" xml:"tokens,attr,omitempty"`
}

// Report is the complete document handed to writers.
type Report struct {
	Files     []FileRow     `json:"files,omitempty"`
	Languages []LanguageRow `json:"languages"`
	Totals    TotalsRow     `json:"totals"`
}
