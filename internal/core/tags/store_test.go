package tags

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tagsync/internal/shared"
)

func TestDialectFor(t *testing.T) {
	cases := []struct {
		path string
		want Dialect
	}{
		{"song.mp3", DialectFrame},
		{"song.MP3", DialectFrame},
		{"song.m4a", DialectAtom},
		{"song.mp4", DialectAtom},
		{"song.aac", DialectAtom},
		{"song.flac", DialectProperty},
		{"song.FLAC", DialectProperty},
		{"song.ogg", DialectUnknown},
		{"song", DialectUnknown},
	}
	for _, c := range cases {
		if got := DialectFor(c.path); got != c.want {
			t.Errorf("DialectFor(%q) = %v, expected %v", c.path, got, c.want)
		}
	}
}

func TestIsSupportedPath(t *testing.T) {
	if !IsSupportedPath("a.flac") {
		t.Error("Expected .flac to be supported")
	}
	if IsSupportedPath("a.wav") {
		t.Error("Expected .wav to be unsupported")
	}
}

func TestReadTagsMissingFile(t *testing.T) {
	store := NewStore(false, false)
	_, err := store.ReadTags(filepath.Join(t.TempDir(), "absent.mp3"))
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing file, got %v", err)
	}
}

func TestReadTagsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.ogg")
	if err := os.WriteFile(path, []byte("OggS"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	store := NewStore(false, false)
	_, err := store.ReadTags(path)
	if !errors.Is(err, shared.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for an unknown extension, got %v", err)
	}
}

func TestWriteCoverRejectsUnstorableMIMEForAtomDialect(t *testing.T) {
	// The atom container can only hold PNG or JPEG covers. A GIF payload
	// sniffs to no known type and must be rejected before the file is
	// touched.
	path := filepath.Join(t.TempDir(), "song.m4a")
	if err := os.WriteFile(path, []byte("not a real container"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	store := NewStore(false, false)
	err := store.WriteCover(path, &Artwork{Data: []byte("GIF89a\x01\x00")})
	if !errors.Is(err, shared.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for a GIF cover on an atom path, got %v", err)
	}
}

func TestWriteCoverMissingFile(t *testing.T) {
	store := NewStore(false, false)
	err := store.WriteCover(filepath.Join(t.TempDir(), "absent.flac"), nil)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing file, got %v", err)
	}
}
