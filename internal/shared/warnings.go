package shared

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// WarningType represents different types of warnings
type WarningType int

const (
	RecordingLookupWarning WarningType = iota
	ReleaseLookupWarning
	CoverFetchWarning
	CoverEmbedWarning
	TagWriteWarning
	AttributeMirrorWarning
	FileSkippedWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // File/release context
	Details string // Additional details like error message
}

// WarningCollector collects warnings during reconciliation and write
// operations. It is safe for concurrent use; the engine's write pool adds
// warnings from several goroutines.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
	enabled  bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if !wc.enabled {
		return
	}

	warning := Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	}
	wc.mu.Lock()
	wc.warnings = append(wc.warnings, warning)
	wc.mu.Unlock()
}

// AddRecordingLookupWarning adds a catalog recording lookup warning
func (wc *WarningCollector) AddRecordingLookupWarning(artist, title, details string) {
	context := fmt.Sprintf("%s - %s", artist, title)
	wc.AddWarning(RecordingLookupWarning, context, "Failed to find recording in catalog", details)
}

// AddReleaseLookupWarning adds a catalog release lookup warning
func (wc *WarningCollector) AddReleaseLookupWarning(releaseID, details string) {
	wc.AddWarning(ReleaseLookupWarning, releaseID, "Failed to fetch release details", details)
}

// AddCoverFetchWarning adds a cover download warning
func (wc *WarningCollector) AddCoverFetchWarning(context, details string) {
	wc.AddWarning(CoverFetchWarning, context, "Could not download cover art", details)
}

// RemoveCoverFetchWarning removes a cover download warning once a later
// attempt for the same release succeeds
func (wc *WarningCollector) RemoveCoverFetchWarning(context string) {
	wc.RemoveWarningsByTypeAndContext(CoverFetchWarning, context)
}

// AddCoverEmbedWarning adds a cover embedding warning
func (wc *WarningCollector) AddCoverEmbedWarning(path, details string) {
	wc.AddWarning(CoverEmbedWarning, path, "Failed to embed cover art", details)
}

// AddTagWriteWarning adds a tag write warning
func (wc *WarningCollector) AddTagWriteWarning(path, details string) {
	wc.AddWarning(TagWriteWarning, path, "Failed to write tags", details)
}

// AddAttributeMirrorWarning adds a filesystem-attribute mirror warning
func (wc *WarningCollector) AddAttributeMirrorWarning(path, details string) {
	wc.AddWarning(AttributeMirrorWarning, path, "Failed to mirror tags to file attributes", details)
}

// AddFileSkippedWarning adds a skipped file warning
func (wc *WarningCollector) AddFileSkippedWarning(path, details string) {
	wc.AddWarning(FileSkippedWarning, path, "File skipped", details)
}

// RemoveWarningsByTypeAndContext removes warnings of a specific type and context
func (wc *WarningCollector) RemoveWarningsByTypeAndContext(warningType WarningType, context string) {
	if !wc.enabled {
		return
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()
	var filteredWarnings []Warning
	for _, warning := range wc.warnings {
		// Keep warnings that don't match the type and context
		if warning.Type != warningType || warning.Context != context {
			filteredWarnings = append(filteredWarnings, warning)
		}
	}
	wc.warnings = filteredWarnings
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings) > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", wc.GetWarningCount())
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	// Sort warning types for consistent output
	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		warnings := grouped[warningType]
		wc.printWarningTypeSection(warningType, warnings)
	}
}

// printWarningTypeSection prints warnings for a specific type
func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	// Print section header
	sectionTitle := wc.getWarningTypeTitle(warningType)
	ColorWarning.Printf("\n%s (%d):\n", sectionTitle, len(warnings))

	// Group similar warnings to avoid repetition
	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	// Sort contexts for consistent output
	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	// Print warnings, showing count if multiple
	for _, context := range contexts {
		count := contextCounts[context]
		if count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

// getWarningTypeTitle returns a human-readable title for a warning type
func (wc *WarningCollector) getWarningTypeTitle(warningType WarningType) string {
	switch warningType {
	case RecordingLookupWarning:
		return "Catalog Recording Lookup Failures"
	case ReleaseLookupWarning:
		return "Catalog Release Lookup Failures"
	case CoverFetchWarning:
		return "Cover Art Download Failures"
	case CoverEmbedWarning:
		return "Cover Art Embedding Failures"
	case TagWriteWarning:
		return "Tag Write Failures"
	case AttributeMirrorWarning:
		return "File Attribute Mirror Failures"
	case FileSkippedWarning:
		return "Files Skipped"
	default:
		return "Other Warnings"
	}
}
