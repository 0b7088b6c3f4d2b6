package interfaces

import (
	"context"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/tags"
	"tagsync/internal/shared"
)

// TagReader defines the read side of the tag store
type TagReader interface {
	// ReadTags reads the canonical tag record from an audio file
	ReadTags(path string) (tags.TagRecord, error)
}

// TagWriter defines the write side of the tag store
type TagWriter interface {
	// WriteTags writes the canonical tag record to an audio file
	WriteTags(path string, rec tags.TagRecord) error
}

// ArtworkReader defines the read side of the artwork store
type ArtworkReader interface {
	// ExtractCover returns the embedded front cover of an audio file
	ExtractCover(path string) (*tags.Artwork, error)
}

// ArtworkWriter defines the write side of the artwork store
type ArtworkWriter interface {
	// WriteCover replaces the embedded front cover of an audio file;
	// a nil artwork removes it
	WriteCover(path string, art *tags.Artwork) error
}

// CatalogClient defines the interface for remote catalog interactions
type CatalogClient interface {
	// SearchRecording looks up recordings by artist, title and optional album
	SearchRecording(ctx context.Context, artist, title, album string, cancelled func() bool) []musicbrainz.Hit

	// GetReleaseDetails fetches the full track list for a release
	GetReleaseDetails(ctx context.Context, releaseID string, cancelled func() bool) musicbrainz.Release

	// BestReleaseForRecording returns the first release id of a recording
	BestReleaseForRecording(ctx context.Context, recordingID string, cancelled func() bool) string

	// FetchCover downloads the front cover for a release or release group
	FetchCover(ctx context.Context, entityID string, sizeHint uint, isReleaseGroup bool, cancelled func() bool) (*tags.Artwork, error)
}

// ChangeNotifier defines the interface for metadata change consumers,
// typically a cache or library index that must re-scan changed files
type ChangeNotifier interface {
	// NotifyChanged reports that a file's metadata was rewritten
	NotifyChanged(path string)
}

// MatchSession is the hand-off payload for manual matching. The engine
// builds one when automatic reconciliation is not confident enough to
// write, and accepts it back through ApplyConfirmed once a human has
// settled the mapping.
type MatchSession struct {
	// ID uniquely identifies the session
	ID string

	// Files are the audio file paths under reconciliation, sorted
	Files []string

	// Release is the catalog release the files are being matched against
	Release musicbrainz.Release

	// Cover is the downloaded release artwork, retained so a confirmed
	// apply does not fetch it again; may be nil
	Cover *tags.Artwork

	// Proposed maps file paths to indices into Release.Tracks; files the
	// automatic passes could not place are absent
	Proposed map[string]int
}

// ManualMatcher defines the interface for manual match resolution
type ManualMatcher interface {
	// HandleUnresolved receives a session the engine could not settle
	// automatically
	HandleUnresolved(ctx context.Context, session *MatchSession)
}

// LoggerService defines the interface for logging operations
type LoggerService interface {
	// Info logs an informational message
	Info(message string, args ...interface{})

	// Warning logs a warning message
	Warning(message string, args ...interface{})

	// Error logs an error message
	Error(message string, args ...interface{})

	// Debug logs a debug message
	Debug(message string, args ...interface{})

	// Success logs a success message
	Success(message string, args ...interface{})

	// SetDebugMode enables or disables debug logging
	SetDebugMode(enabled bool)
}

// WarningCollectorService defines the interface for warning collection
type WarningCollectorService interface {
	// AddWarning adds a warning to the collection
	AddWarning(warningType shared.WarningType, context, message, details string)

	// AddRecordingLookupWarning adds a catalog recording lookup warning
	AddRecordingLookupWarning(artist, title, details string)

	// AddReleaseLookupWarning adds a catalog release lookup warning
	AddReleaseLookupWarning(releaseID, details string)

	// AddCoverFetchWarning adds a cover download warning
	AddCoverFetchWarning(context, details string)

	// RemoveCoverFetchWarning drops a cover download warning once a later
	// attempt for the same release succeeds
	RemoveCoverFetchWarning(context string)

	// AddCoverEmbedWarning adds a cover embedding warning
	AddCoverEmbedWarning(path, details string)

	// AddTagWriteWarning adds a tag write warning
	AddTagWriteWarning(path, details string)

	// AddAttributeMirrorWarning adds a filesystem-attribute mirror warning
	AddAttributeMirrorWarning(path, details string)

	// AddFileSkippedWarning adds a skipped file warning
	AddFileSkippedWarning(path, details string)

	// HasWarnings returns true if there are any warnings
	HasWarnings() bool

	// GetWarningCount returns the total number of warnings
	GetWarningCount() int

	// PrintSummary prints a formatted summary of all warnings
	PrintSummary()
}
