// Package reconcile matches local audio files against remote catalog
// releases and applies the matched metadata through the tag and artwork
// stores.
package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/tags"
	"tagsync/internal/interfaces"
	"tagsync/internal/shared"
)

// 1. Constants and types

const (
	defaultCoverSize         = 500
	defaultDurationTolerance = 15
	defaultParallelism       = 4
)

// TagStore is the combined read/write contract the engine needs from the
// tag store.
type TagStore interface {
	interfaces.TagReader
	interfaces.TagWriter
}

// Config holds the engine's tunables.
type Config struct {
	PreferredCoverSize uint `json:"preferred_cover_size"`
	DurationTolerance  uint `json:"duration_tolerance"`
	Parallelism        int  `json:"parallelism"`
	ShowProgress       bool `json:"show_progress"`
	Debug              bool `json:"debug"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PreferredCoverSize: defaultCoverSize,
		DurationTolerance:  defaultDurationTolerance,
		Parallelism:        defaultParallelism,
		ShowProgress:       true,
	}
}

// Request names the inputs of one reconciliation: the target files plus a
// release id, a recording id, or both. When only a recording id is given
// the release is resolved through the catalog.
type Request struct {
	Paths       []string
	ReleaseID   string
	RecordingID string
}

// Outcome classifies how a reconciliation ended.
type Outcome int

const (
	// OutcomeApplied means metadata was written directly.
	OutcomeApplied Outcome = iota
	// OutcomeHandedOff means the match was not confident and a session
	// went to the manual matcher; nothing was written.
	OutcomeHandedOff
	// OutcomeFailed means the release could not be resolved or no target
	// file was usable.
	OutcomeFailed
	// OutcomeCancelled means the operation was superseded before it
	// finished; partial writes may have happened.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeHandedOff:
		return "handed off"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result reports one reconciliation run.
type Result struct {
	Outcome   Outcome
	Applied   int
	SessionID string
}

// Engine drives the reconciliation pipeline. It owns no persistent state;
// every run works from its request and the supplied cancellation token.
type Engine struct {
	store    TagStore
	artwork  interfaces.ArtworkWriter
	catalog  interfaces.CatalogClient
	notifier interfaces.ChangeNotifier
	matcher  interfaces.ManualMatcher
	warnings interfaces.WarningCollectorService
	config   Config
}

// 2. Constructor

// NewEngine creates an engine. The notifier, matcher and warning collector
// may be nil; the engine then skips notifications, keeps unresolved
// sessions to itself, and drops warnings.
func NewEngine(store TagStore, artwork interfaces.ArtworkWriter, catalog interfaces.CatalogClient, notifier interfaces.ChangeNotifier, matcher interfaces.ManualMatcher, warnings interfaces.WarningCollectorService, config Config) *Engine {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Engine{
		store:    store,
		artwork:  artwork,
		catalog:  catalog,
		notifier: notifier,
		matcher:  matcher,
		warnings: warnings,
		config:   config,
	}
}

// 3. Album mode

// ReconcileAlbum matches a set of files against one release and writes the
// matched metadata when the match is confident. A single path expands to
// all supported audio files in its directory. When the match is not
// confident the files, candidate tracks and tentative mapping are handed to
// the manual matcher instead and nothing is written.
func (e *Engine) ReconcileAlbum(ctx context.Context, req Request, token *shared.Token) Result {
	paths := ExpandPaths(req.Paths)
	if len(paths) == 0 {
		return Result{Outcome: OutcomeFailed}
	}
	sort.Strings(paths)

	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled}
	}
	release := e.resolveRelease(ctx, req, token)
	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled}
	}
	if len(release.Tracks) == 0 {
		e.warnReleaseLookup(releaseContext(req, release), "release has no usable track list")
		return Result{Outcome: OutcomeFailed}
	}

	cover := e.resolveCover(ctx, release, token)
	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled}
	}

	locals := e.readLocalFiles(paths)
	if len(locals) == 0 {
		return Result{Outcome: OutcomeFailed}
	}

	assignment := matchTracks(locals, release.Tracks, e.config.DurationTolerance)
	if !assignment.Confident {
		session := buildSession(locals, release, cover, assignment)
		if e.matcher != nil {
			e.matcher.HandleUnresolved(ctx, session)
		}
		return Result{Outcome: OutcomeHandedOff, SessionID: session.ID}
	}

	applied := e.applyAssigned(ctx, locals, release, cover, assignment.TrackFor, token)
	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled, Applied: applied}
	}
	return Result{Outcome: OutcomeApplied, Applied: applied}
}

// ApplyConfirmed re-enters the write path with a mapping settled by the
// manual matcher. The mapping may cover only part of the session's files;
// unmapped files are left untouched. Files are re-read before writing so
// changes made while the session was pending are not clobbered, and a cover
// that was unavailable at hand-off time gets one more fetch attempt.
func (e *Engine) ApplyConfirmed(ctx context.Context, session *interfaces.MatchSession, mapping map[string]int, token *shared.Token) Result {
	if session == nil || len(mapping) == 0 || len(session.Release.Tracks) == 0 {
		return Result{Outcome: OutcomeFailed}
	}

	locals := e.readLocalFiles(session.Files)
	if len(locals) == 0 {
		return Result{Outcome: OutcomeFailed}
	}
	trackFor := make([]int, len(locals))
	for i, local := range locals {
		trackFor[i] = -1
		if j, ok := mapping[local.path]; ok && j >= 0 && j < len(session.Release.Tracks) {
			trackFor[i] = j
		}
	}

	cover := session.Cover
	if cover == nil {
		if cover = e.resolveCover(ctx, session.Release, token); cover != nil && e.warnings != nil {
			e.warnings.RemoveCoverFetchWarning(session.Release.Title)
		}
	}

	applied := e.applyAssigned(ctx, locals, session.Release, cover, trackFor, token)
	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled, Applied: applied}
	}
	return Result{Outcome: OutcomeApplied, Applied: applied, SessionID: session.ID}
}

// 4. Track mode

// ReconcileTrack applies one resolved recording to the target files. Every
// file receives the release-level fields and the cover; the recording's own
// title, track and disc go only to the file being matched, which is the
// single target, or, with several targets, the files already carrying the
// recording's id.
func (e *Engine) ReconcileTrack(ctx context.Context, req Request, token *shared.Token) Result {
	if len(req.Paths) == 0 || req.RecordingID == "" {
		return Result{Outcome: OutcomeFailed}
	}
	paths := append([]string(nil), req.Paths...)
	sort.Strings(paths)

	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled}
	}
	release := e.resolveRelease(ctx, req, token)
	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled}
	}
	if release.ID == "" {
		e.warnReleaseLookup(req.RecordingID, "no release found for recording")
		return Result{Outcome: OutcomeFailed}
	}

	cover := e.resolveCover(ctx, release, token)
	if token.Cancelled() {
		return Result{Outcome: OutcomeCancelled}
	}

	matched, found := release.ContainsRecording(req.RecordingID)
	single := len(paths) == 1

	applied := 0
	for _, path := range paths {
		if token.Cancelled() {
			return Result{Outcome: OutcomeCancelled, Applied: applied}
		}
		rec, err := e.store.ReadTags(path)
		if err != nil {
			e.warnFileSkipped(path, err.Error())
			continue
		}

		if release.Title != "" {
			rec.Album = release.Title
		}
		if release.Artist != "" {
			rec.AlbumArtist = release.Artist
		}
		if release.Year > 0 {
			rec.Year = release.Year
		}
		rec.MBAlbumID = release.ID

		if single || rec.MBTrackID == req.RecordingID {
			rec.MBTrackID = req.RecordingID
			if found {
				if matched.Title != "" {
					rec.Title = matched.Title
				}
				if release.Artist != "" {
					rec.Artist = release.Artist
				}
				if matched.Position > 0 {
					rec.Track = matched.Position
				}
				if matched.Disc > 0 {
					rec.Disc = matched.Disc
				}
			}
		}

		if e.writeFile(path, rec, cover) {
			applied++
		}
	}
	if applied == 0 {
		return Result{Outcome: OutcomeFailed}
	}
	return Result{Outcome: OutcomeApplied, Applied: applied}
}

// 5. Pipeline stages

// resolveRelease obtains the release detail for the request, going through
// the recording when no release id is given.
func (e *Engine) resolveRelease(ctx context.Context, req Request, token *shared.Token) musicbrainz.Release {
	releaseID := req.ReleaseID
	if releaseID == "" && req.RecordingID != "" {
		releaseID = e.catalog.BestReleaseForRecording(ctx, req.RecordingID, token.Cancelled)
	}
	if releaseID == "" {
		return musicbrainz.Release{}
	}
	return e.catalog.GetReleaseDetails(ctx, releaseID, token.Cancelled)
}

// resolveCover tries the release group's artwork first, then the release's
// own. Cover failures are never fatal to the reconciliation.
func (e *Engine) resolveCover(ctx context.Context, release musicbrainz.Release, token *shared.Token) *tags.Artwork {
	if release.ReleaseGroupID != "" {
		art, err := e.catalog.FetchCover(ctx, release.ReleaseGroupID, e.config.PreferredCoverSize, true, token.Cancelled)
		if err == nil && art != nil {
			return art
		}
	}
	if token.Cancelled() {
		return nil
	}
	art, err := e.catalog.FetchCover(ctx, release.ID, e.config.PreferredCoverSize, false, token.Cancelled)
	if err != nil {
		e.warnCoverFetch(release.Title, err.Error())
		return nil
	}
	return art
}

// readLocalFiles reads the tag record of every path, dropping files that
// cannot be read at all. Per-field read degradation happens inside the
// store; only a file-level failure excludes a file here.
func (e *Engine) readLocalFiles(paths []string) []localFile {
	locals := make([]localFile, 0, len(paths))
	for _, path := range paths {
		rec, err := e.store.ReadTags(path)
		if err != nil {
			e.warnFileSkipped(path, err.Error())
			continue
		}
		locals = append(locals, localFile{path: path, record: rec})
	}
	return locals
}

// ExpandPaths turns a single file or directory into the set of supported
// audio files of its directory. Multiple explicit paths pass through
// unchanged.
func ExpandPaths(paths []string) []string {
	if len(paths) != 1 {
		return append([]string(nil), paths...)
	}
	target := paths[0]
	dir := target
	if info, err := os.Stat(target); err != nil {
		return []string{target}
	} else if !info.IsDir() {
		dir = filepath.Dir(target)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{target}
	}
	var expanded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if tags.IsSupportedPath(path) {
			expanded = append(expanded, path)
		}
	}
	if len(expanded) == 0 {
		return []string{target}
	}
	return expanded
}

// buildSession packages an unresolved match for the manual matcher.
func buildSession(locals []localFile, release musicbrainz.Release, cover *tags.Artwork, assignment Assignment) *interfaces.MatchSession {
	files := make([]string, len(locals))
	proposed := make(map[string]int)
	for i, local := range locals {
		files[i] = local.path
		if assignment.TrackFor[i] >= 0 {
			proposed[local.path] = assignment.TrackFor[i]
		}
	}
	return &interfaces.MatchSession{
		ID:       uuid.New().String(),
		Files:    files,
		Release:  release,
		Cover:    cover,
		Proposed: proposed,
	}
}

// 6. Write path

// applyAssigned writes the matched metadata file by file through a bounded
// worker pool. Files without an assignment are skipped. The returned count
// is the number of files where every requested write succeeded.
func (e *Engine) applyAssigned(ctx context.Context, locals []localFile, release musicbrainz.Release, cover *tags.Artwork, trackFor []int, token *shared.Token) int {
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(int64(e.config.Parallelism))
	var applied atomic.Int32

	var bar *pb.ProgressBar
	if e.config.ShowProgress && shared.IsTTY() {
		bar = pb.StartNew(len(locals))
	}

	for i := range locals {
		if token.Cancelled() {
			break
		}
		if trackFor[i] < 0 {
			if bar != nil {
				bar.Increment()
			}
			continue
		}
		wg.Add(1)
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Done()
			break
		}
		go func(local localFile, track musicbrainz.ReleaseTrack) {
			defer wg.Done()
			defer sem.Release(1)
			if bar != nil {
				defer bar.Increment()
			}
			if token.Cancelled() {
				return
			}
			rec := overlayAlbumFields(local.record, release, track)
			if e.writeFile(local.path, rec, cover) {
				applied.Add(1)
			}
		}(locals[i], release.Tracks[trackFor[i]])
	}

	wg.Wait()
	if bar != nil {
		bar.Finish()
	}
	return int(applied.Load())
}

// overlayAlbumFields lays the release's fields over a local record. Fields
// the catalog does not know keep their local values, and the per-file
// artist is deliberately left alone so compilations survive an album apply.
func overlayAlbumFields(rec tags.TagRecord, release musicbrainz.Release, track musicbrainz.ReleaseTrack) tags.TagRecord {
	if track.Title != "" {
		rec.Title = track.Title
	}
	if release.Title != "" {
		rec.Album = release.Title
	}
	if release.Artist != "" {
		rec.AlbumArtist = release.Artist
	}
	if release.Year > 0 {
		rec.Year = release.Year
	}
	if track.Position > 0 {
		rec.Track = track.Position
	}
	rec.TrackTotal = uint(len(release.Tracks))
	if track.Disc > 0 {
		rec.Disc = track.Disc
	}
	if release.ID != "" {
		rec.MBAlbumID = release.ID
	}
	if track.RecordingID != "" {
		rec.MBTrackID = track.RecordingID
	}
	return rec
}

// writeFile writes tags and cover to one file and notifies the change
// consumer when anything was mutated. It reports whether every requested
// write succeeded; failures are collected as warnings, never propagated.
func (e *Engine) writeFile(path string, rec tags.TagRecord, cover *tags.Artwork) bool {
	wroteTags := true
	if err := e.store.WriteTags(path, rec); err != nil {
		e.warnTagWrite(path, err.Error())
		wroteTags = false
	}

	wroteCover := false
	if cover != nil {
		if err := e.artwork.WriteCover(path, cover); err != nil {
			e.warnCoverEmbed(path, err.Error())
		} else {
			wroteCover = true
		}
	}

	if (wroteTags || wroteCover) && e.notifier != nil {
		e.notifier.NotifyChanged(path)
	}
	return wroteTags && (cover == nil || wroteCover)
}

// 7. Warning helpers

func (e *Engine) warnReleaseLookup(context, details string) {
	if e.warnings != nil {
		e.warnings.AddReleaseLookupWarning(context, details)
	}
}

func (e *Engine) warnCoverFetch(context, details string) {
	if e.warnings != nil {
		e.warnings.AddCoverFetchWarning(context, details)
	}
}

func (e *Engine) warnCoverEmbed(path, details string) {
	if e.warnings != nil {
		e.warnings.AddCoverEmbedWarning(path, details)
	}
}

func (e *Engine) warnTagWrite(path, details string) {
	if e.warnings != nil {
		e.warnings.AddTagWriteWarning(path, details)
	}
}

func (e *Engine) warnFileSkipped(path, details string) {
	if e.warnings != nil {
		e.warnings.AddFileSkippedWarning(path, details)
	}
}

func releaseContext(req Request, release musicbrainz.Release) string {
	if release.ID != "" {
		return release.ID
	}
	if req.ReleaseID != "" {
		return req.ReleaseID
	}
	return req.RecordingID
}
