package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanLibrary Phase = iota
	ValidateTab
	CatalogSong
)

func (p Phase) String() string {
	switch p {
	case ScanLibrary:
		return "scan_library"
	case ValidateTab:
		return "validate_tab"
	case CatalogSong:
		return "catalog_song"
	default:
		return ""
	}
}

func scanningUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanning %s for tab files...", dir),
	}
}

func validatingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateTab,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Validating: %s...", step, total, name),
	}
}

func importedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CatalogSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
	}
}

func skippedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CatalogSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ~ %s (already in catalog)", step, total, title),
	}
}

func importFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CatalogSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
