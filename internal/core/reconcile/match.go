package reconcile

import (
	"path/filepath"
	"sort"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/tags"
)

// localFile pairs a path with the tag record read from it.
type localFile struct {
	path   string
	record tags.TagRecord
}

// Assignment maps local files onto a release's track slots. TrackFor[i] is
// an index into the release track list, -1 when unassigned. The verdict is
// deterministic for a given file order and release.
type Assignment struct {
	TrackFor         []int
	Confident        bool
	DurationMismatch bool
	MatchedByNumber  int
}

// ExtractTrackNumber pulls a track number from the leading digit run of a
// file's base name, covering the common "01 - Title" and "01_Title"
// patterns. Runs longer than three digits are rejected as more likely to be
// years than track numbers. Returns 0 when no number is found.
func ExtractTrackNumber(filename string) uint {
	base := filepath.Base(filename)
	end := 0
	for end < len(base) && base[end] >= '0' && base[end] <= '9' {
		end++
	}
	if end == 0 || end > 3 {
		return 0
	}
	var number uint
	for i := 0; i < end; i++ {
		number = number*10 + uint(base[i]-'0')
	}
	return number
}

// matchTracks assigns local files to release tracks in three passes: tagged
// track numbers with a duration check, filename-derived track numbers with
// the same check, then blind positional fill. The verdict is confident only
// when every file found a slot, no tagged number contradicted its track's
// duration, and at least half the files were placed by number rather than
// position.
func matchTracks(locals []localFile, releaseTracks []musicbrainz.ReleaseTrack, tolerance uint) Assignment {
	assignment := Assignment{TrackFor: make([]int, len(locals))}
	for i := range assignment.TrackFor {
		assignment.TrackFor[i] = -1
	}
	if len(locals) == 0 {
		return assignment
	}
	used := make([]bool, len(releaseTracks))

	// Multi-disc releases repeat positions, so all unused tracks sharing
	// the number are candidates; the duration check picks the right disc.
	assignByNumber := func(i int, number uint, flagMismatch bool) {
		sawNumber := false
		for j, track := range releaseTracks {
			if used[j] || track.Position != number {
				continue
			}
			sawNumber = true
			if withinTolerance(locals[i].record.LengthSeconds, track.LengthSeconds, tolerance) {
				assignment.TrackFor[i] = j
				used[j] = true
				assignment.MatchedByNumber++
				return
			}
		}
		if sawNumber && flagMismatch {
			assignment.DurationMismatch = true
		}
	}

	for i := range locals {
		if number := locals[i].record.Track; number > 0 {
			assignByNumber(i, number, true)
		}
	}
	for i := range locals {
		if assignment.TrackFor[i] >= 0 {
			continue
		}
		if number := ExtractTrackNumber(locals[i].path); number > 0 {
			assignByNumber(i, number, false)
		}
	}

	next := 0
	for i := range locals {
		if assignment.TrackFor[i] >= 0 {
			continue
		}
		for next < len(releaseTracks) && used[next] {
			next++
		}
		if next == len(releaseTracks) {
			break
		}
		assignment.TrackFor[i] = next
		used[next] = true
	}

	allAssigned := true
	for _, j := range assignment.TrackFor {
		if j < 0 {
			allAssigned = false
			break
		}
	}
	assignment.Confident = allAssigned &&
		!assignment.DurationMismatch &&
		assignment.MatchedByNumber >= len(locals)/2
	return assignment
}

// withinTolerance reports whether two durations agree to within the given
// number of seconds. An unknown duration on either side is tolerated rather
// than treated as a mismatch.
func withinTolerance(a, b, tolerance uint) bool {
	if a == 0 || b == 0 {
		return true
	}
	diff := a - b
	if b > a {
		diff = b - a
	}
	return diff <= tolerance
}

// RankHits orders search hits for presentation against a known local file
// count: smallest track-count difference first, newer release year breaking
// ties. The sort is stable, so hits the criteria cannot separate keep their
// search order. A zero target count skips the count criterion.
func RankHits(hits []musicbrainz.Hit, targetCount int) []musicbrainz.Hit {
	ranked := make([]musicbrainz.Hit, len(hits))
	copy(ranked, hits)
	sort.SliceStable(ranked, func(i, j int) bool {
		if targetCount > 0 {
			di := countDiff(ranked[i].TrackCount, targetCount)
			dj := countDiff(ranked[j].TrackCount, targetCount)
			if di != dj {
				return di < dj
			}
		}
		return ranked[i].Year > ranked[j].Year
	})
	return ranked
}

func countDiff(count, target int) int {
	diff := count - target
	if diff < 0 {
		return -diff
	}
	return diff
}

// DedupeByRelease keeps the first hit for each distinct release, preserving
// order. Recording searches fan out into one hit per release, so a release
// candidate list needs this collapse. Hits without a release id are dropped.
func DedupeByRelease(hits []musicbrainz.Hit) []musicbrainz.Hit {
	seen := make(map[string]bool, len(hits))
	var deduped []musicbrainz.Hit
	for _, hit := range hits {
		if hit.ReleaseID == "" || seen[hit.ReleaseID] {
			continue
		}
		seen[hit.ReleaseID] = true
		deduped = append(deduped, hit)
	}
	return deduped
}
