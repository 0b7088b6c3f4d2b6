package commands

import (
	"context"
	"strings"
	"testing"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/tags"
	"tagsync/internal/interfaces"
)

// The CLI hooks must satisfy the engine's outward interfaces.
var (
	_ interfaces.ChangeNotifier = (*changeLog)(nil)
	_ interfaces.ManualMatcher  = (*sessionCapture)(nil)
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"#", "Title"},
		[][]string{{"1", "First Track"}, {"2", "Second Track"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	if !strings.Contains(out, "First Track") || !strings.Contains(out, "Second Track") {
		t.Errorf("Expected rendered rows in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("Expected header in output, got:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B", "C"},
		[][]string{{"only"}},
		nil,
	)
	if !strings.Contains(out, "only") {
		t.Errorf("Expected short row to render, got:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}, nil); out != "" {
		t.Errorf("Expected empty output for empty headers, got %q", out)
	}
}

func TestNumberCell(t *testing.T) {
	if got := numberCell(0); got != "" {
		t.Errorf("Expected empty cell for 0, got %q", got)
	}
	if got := numberCell(1997); got != "1997" {
		t.Errorf("Expected '1997', got %q", got)
	}
}

func TestPairCell(t *testing.T) {
	cases := []struct {
		number, total uint
		want          string
	}{
		{3, 12, "3/12"},
		{3, 0, "3"},
		{0, 12, ""},
		{0, 0, ""},
	}
	for _, c := range cases {
		if got := pairCell(c.number, c.total); got != c.want {
			t.Errorf("pairCell(%d, %d) = %q, expected %q", c.number, c.total, got, c.want)
		}
	}
}

func TestDurationCell(t *testing.T) {
	cases := []struct {
		seconds uint
		want    string
	}{
		{0, ""},
		{59, "0:59"},
		{60, "1:00"},
		{245, "4:05"},
		{3671, "61:11"},
	}
	for _, c := range cases {
		if got := durationCell(c.seconds); got != c.want {
			t.Errorf("durationCell(%d) = %q, expected %q", c.seconds, got, c.want)
		}
	}
}

func TestCountCell(t *testing.T) {
	if got := countCell(0); got != "" {
		t.Errorf("Expected empty cell for 0, got %q", got)
	}
	if got := countCell(-3); got != "" {
		t.Errorf("Expected empty cell for negative count, got %q", got)
	}
	if got := countCell(12); got != "12" {
		t.Errorf("Expected '12', got %q", got)
	}
}

func TestBitrateAndSampleRateCells(t *testing.T) {
	if got := bitrateCell(320); got != "320 kbps" {
		t.Errorf("Expected '320 kbps', got %q", got)
	}
	if got := bitrateCell(0); got != "" {
		t.Errorf("Expected empty bitrate cell, got %q", got)
	}
	if got := sampleRateCell(44100); got != "44100 Hz" {
		t.Errorf("Expected '44100 Hz', got %q", got)
	}
	if got := sampleRateCell(0); got != "" {
		t.Errorf("Expected empty sample rate cell, got %q", got)
	}
}

func TestRecordRowsSparse(t *testing.T) {
	rec := tags.TagRecord{Title: "Song", Artist: "Artist", Album: "Album"}
	rows := recordRows(rec)
	if len(rows) != 3 {
		t.Fatalf("Expected exactly 3 rows for a sparse record, got %d", len(rows))
	}
	if rows[0][1] != "Song" || rows[1][1] != "Artist" || rows[2][1] != "Album" {
		t.Errorf("Unexpected row values: %v", rows)
	}
}

func TestRecordRowsFull(t *testing.T) {
	rec := tags.TagRecord{
		Title:         "Song",
		Artist:        "Artist",
		Album:         "Album",
		AlbumArtist:   "Various",
		Genre:         "Rock",
		Year:          1997,
		Track:         3,
		TrackTotal:    12,
		Disc:          1,
		LengthSeconds: 245,
		Bitrate:       320,
		MBAlbumID:     "rel-1",
	}
	rows := recordRows(rec)

	byName := make(map[string]string, len(rows))
	for _, row := range rows {
		byName[row[0]] = row[1]
	}
	expected := map[string]string{
		"Album Artist":      "Various",
		"Genre":             "Rock",
		"Year":              "1997",
		"Track":             "3/12",
		"Disc":              "1",
		"Length":            "4:05",
		"Bitrate":           "320 kbps",
		"MusicBrainz Album": "rel-1",
	}
	for name, want := range expected {
		if got, ok := byName[name]; !ok || got != want {
			t.Errorf("Expected row %q = %q, got %q (present: %v)", name, want, got, ok)
		}
	}
	if _, ok := byName["Composer"]; ok {
		t.Error("Expected empty composer to be skipped")
	}
	if _, ok := byName["Sample Rate"]; ok {
		t.Error("Expected zero sample rate to be skipped")
	}
}

func TestExtensionForMIME(t *testing.T) {
	if got := extensionForMIME(tags.MIMEPNG); got != ".png" {
		t.Errorf("Expected '.png', got %q", got)
	}
	if got := extensionForMIME(tags.MIMEJPEG); got != ".jpg" {
		t.Errorf("Expected '.jpg', got %q", got)
	}
	if got := extensionForMIME(""); got != ".jpg" {
		t.Errorf("Expected '.jpg' fallback for unknown MIME, got %q", got)
	}
}

func TestTrackSlotCell(t *testing.T) {
	cases := []struct {
		track musicbrainz.ReleaseTrack
		want  string
	}{
		{musicbrainz.ReleaseTrack{Disc: 1, Position: 3}, "3"},
		{musicbrainz.ReleaseTrack{Disc: 2, Position: 4}, "2.4"},
		{musicbrainz.ReleaseTrack{Disc: 0, Position: 5}, "5"},
	}
	for _, c := range cases {
		if got := trackSlotCell(c.track); got != c.want {
			t.Errorf("trackSlotCell(disc %d, pos %d) = %q, expected %q", c.track.Disc, c.track.Position, got, c.want)
		}
	}
}

func TestSearchLabel(t *testing.T) {
	got := searchLabel("The Band", "Track One", "Album One")
	want := `"Track One" by The Band on Album One`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if got := searchLabel("The Band", "", ""); got != "by The Band" {
		t.Errorf("Expected 'by The Band', got %q", got)
	}
	if got := searchLabel("", "", ""); got != "" {
		t.Errorf("Expected empty label, got %q", got)
	}
}

func TestChangeLogCountsNotifications(t *testing.T) {
	cl := &changeLog{}
	if cl.Count() != 0 {
		t.Errorf("Expected empty change log, got %d", cl.Count())
	}
	cl.NotifyChanged("/music/a.mp3")
	cl.NotifyChanged("/music/b.flac")
	if cl.Count() != 2 {
		t.Errorf("Expected 2 changes, got %d", cl.Count())
	}
}

func TestSessionCaptureTakeClears(t *testing.T) {
	sc := &sessionCapture{}
	if sc.take() != nil {
		t.Error("Expected nil before any session was handed off")
	}

	session := &interfaces.MatchSession{ID: "session-1"}
	sc.HandleUnresolved(context.Background(), session)

	got := sc.take()
	if got == nil || got.ID != "session-1" {
		t.Fatalf("Expected captured session, got %v", got)
	}
	if sc.take() != nil {
		t.Error("Expected slot to be cleared after take")
	}
}
