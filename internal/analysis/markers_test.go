package analysis_test

import (
	"testing"

	"github.com/linetally/linetally/internal/analysis"
)

// TestDefaultMarkerTableIsACopy verifies that mutating a returned table does
// not leak into later calls.
func TestDefaultMarkerTableIsACopy(testingHandle *testing.T) {
	first := analysis.DefaultMarkerTable()
	first.Merge(map[string][]string{"python": {"..."}})

	second := analysis.DefaultMarkerTable()
	markers := second.MarkersFor("Python")
	if _, hasEllipsis := markers["..."]; hasEllipsis {
		testingHandle.Fatalf("default table leaked a merged marker")
	}
	if _, hasPass := markers["pass"]; !hasPass {
		testingHandle.Fatalf("default python markers are missing pass")
	}
}

// TestMarkersForIsCaseInsensitiveOnLanguage verifies lookup normalization.
func TestMarkersForIsCaseInsensitiveOnLanguage(testingHandle *testing.T) {
	table := analysis.DefaultMarkerTable()
	if table.MarkersFor("PYTHON") == nil {
		testingHandle.Fatalf("expected markers for upper-case language name")
	}
	if table.MarkersFor("Fortran") != nil {
		testingHandle.Fatalf("expected no markers for an unconfigured language")
	}
}

// TestMergeReplacesLanguageMarkers verifies that overrides replace, not
// extend, the marker set of a language.
func TestMergeReplacesLanguageMarkers(testingHandle *testing.T) {
	table := analysis.DefaultMarkerTable()
	table.Merge(map[string][]string{"Python": {"..."}, "vba": {"EndFunction"}})

	pythonMarkers := table.MarkersFor("python")
	if _, hasPass := pythonMarkers["pass"]; hasPass {
		testingHandle.Fatalf("override should have replaced the pass marker")
	}
	if _, hasEllipsis := pythonMarkers["..."]; !hasEllipsis {
		testingHandle.Fatalf("override marker missing")
	}
	if table.MarkersFor("VBA") == nil {
		testingHandle.Fatalf("expected markers for newly merged language")
	}
}
