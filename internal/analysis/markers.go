package analysis

import "strings"

// MarkerTable maps a lower-case language name to its no-operation markers.
type MarkerTable map[string]MarkerSet

// defaultMarkerTable lists the built-in no-operation markers. These are
// statement placeholders that carry no semantic weight when alone on a line.
// Markers are compared against line text stripped of whitespace and white
// characters, so multi-word markers must be written without spaces.
var defaultMarkerTable = MarkerTable{
	"python": NewMarkerSet("pass"),
}

// DefaultMarkerTable returns a copy of the built-in marker table.
func DefaultMarkerTable() MarkerTable {
	table := make(MarkerTable, len(defaultMarkerTable))
	for languageName, markerSet := range defaultMarkerTable {
		copied := make(MarkerSet, len(markerSet))
		for marker := range markerSet {
			copied[marker] = struct{}{}
		}
		table[languageName] = copied
	}
	return table
}

// MarkersFor returns the marker set for a language name, or an empty set.
func (table MarkerTable) MarkersFor(languageName string) MarkerSet {
	if markerSet, exists := table[strings.ToLower(languageName)]; exists {
		return markerSet
	}
	return nil
}

// Merge overlays user-supplied markers onto the table, replacing the marker
// set of any language that appears in overrides.
func (table MarkerTable) Merge(overrides map[string][]string) {
	for languageName, markers := range overrides {
		table[strings.ToLower(languageName)] = NewMarkerSet(markers...)
	}
}
