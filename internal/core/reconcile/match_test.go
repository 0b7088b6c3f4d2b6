package reconcile

import (
	"fmt"
	"reflect"
	"testing"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/tags"
)

func TestExtractTrackNumber(t *testing.T) {
	tests := []struct {
		filename string
		expected uint
	}{
		{"01 - Title.mp3", 1},
		{"007 Theme.flac", 7},
		{"/library/album/12_song.m4a", 12},
		{"3.flac", 3},
		{"05.mp3", 5},
		{"Track.mp3", 0},
		{"1999 - Song.mp3", 0},
		{"", 0},
		{"a01.mp3", 0},
	}
	for _, test := range tests {
		if got := ExtractTrackNumber(test.filename); got != test.expected {
			t.Errorf("ExtractTrackNumber(%q): expected %d, got %d", test.filename, test.expected, got)
		}
	}
}

// albumTracks builds a single-disc track list with positions 1..n and
// well-spread durations.
func albumTracks(n int) []musicbrainz.ReleaseTrack {
	tracks := make([]musicbrainz.ReleaseTrack, n)
	for i := range tracks {
		tracks[i] = musicbrainz.ReleaseTrack{
			Disc:          1,
			Position:      uint(i + 1),
			LengthSeconds: uint(100 + 100*i),
			Title:         fmt.Sprintf("Track %d", i+1),
			RecordingID:   fmt.Sprintf("rec-%d", i+1),
		}
	}
	return tracks
}

func TestMatchTracksCorrectTags(t *testing.T) {
	releaseTracks := albumTracks(10)
	locals := make([]localFile, 10)
	for i := range locals {
		locals[i] = localFile{
			path: fmt.Sprintf("/lib/%02d - song.flac", i+1),
			record: tags.TagRecord{
				Track:         uint(i + 1),
				LengthSeconds: releaseTracks[i].LengthSeconds + 5,
			},
		}
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if !assignment.Confident {
		t.Fatal("Expected a confident match for correctly tagged files")
	}
	if assignment.DurationMismatch {
		t.Error("Expected no duration mismatch")
	}
	if assignment.MatchedByNumber != 10 {
		t.Errorf("Expected all 10 files matched by number, got %d", assignment.MatchedByNumber)
	}
	for i, j := range assignment.TrackFor {
		if j != i {
			t.Errorf("File %d: expected track %d, got %d", i, i, j)
		}
	}
}

func TestMatchTracksDeterminism(t *testing.T) {
	releaseTracks := albumTracks(8)
	locals := make([]localFile, 8)
	for i := range locals {
		record := tags.TagRecord{LengthSeconds: releaseTracks[i].LengthSeconds}
		if i%2 == 0 {
			record.Track = uint(i + 1)
		}
		locals[i] = localFile{path: fmt.Sprintf("/lib/file-%c.flac", 'a'+i), record: record}
	}

	first := matchTracks(locals, releaseTracks, 15)
	second := matchTracks(locals, releaseTracks, 15)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical assignments on repeated runs, got %+v then %+v", first, second)
	}
}

func TestMatchTracksDurationMismatchBlocksConfidence(t *testing.T) {
	releaseTracks := albumTracks(10)
	locals := make([]localFile, 10)
	for i := range locals {
		if i < 3 {
			// Wrongly tagged files whose durations fit no candidate.
			locals[i] = localFile{
				path: fmt.Sprintf("/lib/mystery-%c.flac", 'a'+i),
				record: tags.TagRecord{
					Track:         uint(10 - i),
					LengthSeconds: uint(5000 + i),
				},
			}
			continue
		}
		locals[i] = localFile{
			path: fmt.Sprintf("/lib/good-%02d.flac", i+1),
			record: tags.TagRecord{
				Track:         uint(i + 1),
				LengthSeconds: releaseTracks[i].LengthSeconds,
			},
		}
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if assignment.Confident {
		t.Fatal("Expected mismatched durations to block confidence")
	}
	if !assignment.DurationMismatch {
		t.Error("Expected the duration mismatch flag to be recorded")
	}
}

func TestMatchTracksPositionalFallbackNotConfident(t *testing.T) {
	releaseTracks := albumTracks(4)
	locals := make([]localFile, 4)
	for i := range locals {
		locals[i] = localFile{path: fmt.Sprintf("/lib/song-%c.flac", 'a'+i)}
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if assignment.Confident {
		t.Fatal("Expected a purely positional assignment to not be confident")
	}
	for i, j := range assignment.TrackFor {
		if j != i {
			t.Errorf("File %d: expected positional slot %d, got %d", i, i, j)
		}
	}
	if assignment.MatchedByNumber != 0 {
		t.Errorf("Expected no number matches, got %d", assignment.MatchedByNumber)
	}
}

func TestMatchTracksFilenameNumbersCount(t *testing.T) {
	releaseTracks := albumTracks(4)
	locals := make([]localFile, 4)
	for i := range locals {
		locals[i] = localFile{
			path:   fmt.Sprintf("/lib/%02d - song.flac", i+1),
			record: tags.TagRecord{LengthSeconds: releaseTracks[i].LengthSeconds},
		}
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if !assignment.Confident {
		t.Fatal("Expected filename-derived numbers to produce a confident match")
	}
	if assignment.MatchedByNumber != 4 {
		t.Errorf("Expected 4 number matches, got %d", assignment.MatchedByNumber)
	}
}

func TestMatchTracksMultiDiscByDuration(t *testing.T) {
	releaseTracks := []musicbrainz.ReleaseTrack{
		{Disc: 1, Position: 1, LengthSeconds: 120, RecordingID: "d1t1"},
		{Disc: 1, Position: 2, LengthSeconds: 200, RecordingID: "d1t2"},
		{Disc: 2, Position: 1, LengthSeconds: 300, RecordingID: "d2t1"},
		{Disc: 2, Position: 2, LengthSeconds: 400, RecordingID: "d2t2"},
	}
	locals := []localFile{
		{path: "/lib/a.flac", record: tags.TagRecord{Track: 1, LengthSeconds: 121}},
		{path: "/lib/b.flac", record: tags.TagRecord{Track: 2, LengthSeconds: 199}},
		{path: "/lib/c.flac", record: tags.TagRecord{Track: 1, LengthSeconds: 305}},
		{path: "/lib/d.flac", record: tags.TagRecord{Track: 2, LengthSeconds: 395}},
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if !assignment.Confident {
		t.Fatal("Expected a confident multi-disc match")
	}
	expected := []int{0, 1, 2, 3}
	for i, j := range assignment.TrackFor {
		if j != expected[i] {
			t.Errorf("File %d: expected track index %d, got %d", i, expected[i], j)
		}
	}
}

func TestMatchTracksUnknownDurationTolerated(t *testing.T) {
	releaseTracks := albumTracks(3)
	locals := []localFile{
		{path: "/lib/a.flac", record: tags.TagRecord{Track: 1}},
		{path: "/lib/b.flac", record: tags.TagRecord{Track: 2}},
		{path: "/lib/c.flac", record: tags.TagRecord{Track: 3}},
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if !assignment.Confident {
		t.Fatal("Expected unknown local durations to still match by number")
	}
	if assignment.DurationMismatch {
		t.Error("Expected no mismatch flag for unknown durations")
	}
}

func TestMatchTracksMoreFilesThanTracks(t *testing.T) {
	releaseTracks := albumTracks(2)
	locals := make([]localFile, 4)
	for i := range locals {
		locals[i] = localFile{path: fmt.Sprintf("/lib/%02d.flac", i+1), record: tags.TagRecord{LengthSeconds: 100}}
	}

	assignment := matchTracks(locals, releaseTracks, 15)
	if assignment.Confident {
		t.Fatal("Expected leftover files to block confidence")
	}
	unassigned := 0
	for _, j := range assignment.TrackFor {
		if j < 0 {
			unassigned++
		}
	}
	if unassigned != 2 {
		t.Errorf("Expected 2 unassigned files, got %d", unassigned)
	}
}

func TestRankHits(t *testing.T) {
	hits := []musicbrainz.Hit{
		{ReleaseID: "far", TrackCount: 30, Year: 2020},
		{ReleaseID: "close-old", TrackCount: 11, Year: 1990},
		{ReleaseID: "exact", TrackCount: 10, Year: 2000},
		{ReleaseID: "close-new", TrackCount: 11, Year: 2010},
	}

	ranked := RankHits(hits, 10)
	order := []string{"exact", "close-new", "close-old", "far"}
	for i, want := range order {
		if ranked[i].ReleaseID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, ranked[i].ReleaseID)
		}
	}

	// Input order must be untouched.
	if hits[0].ReleaseID != "far" {
		t.Error("Expected RankHits to leave its input unmodified")
	}
}

func TestRankHitsWithoutTargetPrefersNewer(t *testing.T) {
	hits := []musicbrainz.Hit{
		{ReleaseID: "old", TrackCount: 10, Year: 1980},
		{ReleaseID: "new", TrackCount: 25, Year: 2015},
		{ReleaseID: "mid", TrackCount: 8, Year: 2001},
	}

	ranked := RankHits(hits, 0)
	order := []string{"new", "mid", "old"}
	for i, want := range order {
		if ranked[i].ReleaseID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, ranked[i].ReleaseID)
		}
	}
}

func TestDedupeByRelease(t *testing.T) {
	hits := []musicbrainz.Hit{
		{RecordingID: "rec-1", ReleaseID: "rel-a"},
		{RecordingID: "rec-1", ReleaseID: "rel-b"},
		{RecordingID: "rec-2", ReleaseID: "rel-a"},
		{RecordingID: "rec-3", ReleaseID: ""},
		{RecordingID: "rec-4", ReleaseID: "rel-c"},
	}

	deduped := DedupeByRelease(hits)
	if len(deduped) != 3 {
		t.Fatalf("Expected 3 distinct releases, got %d", len(deduped))
	}
	order := []string{"rel-a", "rel-b", "rel-c"}
	for i, want := range order {
		if deduped[i].ReleaseID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, deduped[i].ReleaseID)
		}
	}
	// The first hit wins for a repeated release.
	if deduped[0].RecordingID != "rec-1" {
		t.Errorf("Expected the first hit to be kept, got %s", deduped[0].RecordingID)
	}
}
