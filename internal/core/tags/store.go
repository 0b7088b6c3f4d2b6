package tags

import (
	"fmt"
	"path/filepath"
	"strings"

	"tagsync/internal/shared"
)

// Dialect identifies one of the three on-disk tag encodings.
type Dialect int

const (
	DialectUnknown  Dialect = iota
	DialectFrame            // ID3v2 frames (.mp3)
	DialectAtom             // MP4 atoms (.m4a, .mp4, .aac)
	DialectProperty         // Vorbis comment property map (.flac)
)

// DialectFor returns the dialect a path dispatches to, by extension.
func DialectFor(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return DialectFrame
	case ".m4a", ".mp4", ".aac":
		return DialectAtom
	case ".flac":
		return DialectProperty
	default:
		return DialectUnknown
	}
}

// IsSupportedPath reports whether the path maps to a known dialect.
func IsSupportedPath(path string) bool {
	return DialectFor(path) != DialectUnknown
}

// codec is the per-dialect strategy. Each dialect implements the same
// read/write contract for tags and embedded artwork; the fallback-key
// tables live inside the codec that owns them.
type codec interface {
	readTags(path string) (TagRecord, error)
	writeTags(path string, rec TagRecord) error
	extractCover(path string) (*Artwork, error)
	writeCover(path string, art *Artwork) error
}

// AttributeWarningSink receives attribute mirror failures. A mirror failure
// never fails the write that triggered it, so the sink is the only place it
// surfaces.
type AttributeWarningSink interface {
	AddAttributeMirrorWarning(path, details string)
}

// Store reads and writes canonical tag records and embedded artwork across
// the three dialects. The zero value is usable; NewStore configures the
// attribute mirror and debug output.
type Store struct {
	mirrorAttrs bool
	debug       bool
	warnSink    AttributeWarningSink
}

// NewStore creates a tag store. When mirrorAttrs is set, every successful
// tag write is followed by a best-effort sync of the same values to
// extended file attributes.
func NewStore(mirrorAttrs, debug bool) *Store {
	return &Store{mirrorAttrs: mirrorAttrs, debug: debug}
}

// SetWarningSink routes attribute mirror failures to a collector. A nil
// sink drops them.
func (s *Store) SetWarningSink(sink AttributeWarningSink) {
	s.warnSink = sink
}

func codecFor(path string) (codec, error) {
	switch DialectFor(path) {
	case DialectFrame:
		return id3Codec{}, nil
	case DialectAtom:
		return mp4Codec{}, nil
	case DialectProperty:
		return flacCodec{}, nil
	default:
		return nil, fmt.Errorf("%s: no tag dialect for extension: %w", path, shared.ErrUnsupported)
	}
}

// ReadTags opens the file, dispatches by container type, and merges fields
// from the general tag layer and the format-specific layers. Fields already
// populated by a higher-priority source are never overwritten (fill blanks
// only). Per-field read failures degrade to absent values.
func (s *Store) ReadTags(path string) (TagRecord, error) {
	if !shared.FileExists(path) {
		return TagRecord{}, fmt.Errorf("%s: %w", path, shared.ErrNotFound)
	}
	c, err := codecFor(path)
	if err != nil {
		return TagRecord{}, err
	}
	rec, err := c.readTags(path)
	if err != nil {
		return TagRecord{}, err
	}
	shared.DebugPrint(s.debug, "read tags from %s: %q by %q", path, rec.Title, rec.Artist)
	return rec, nil
}

// WriteTags dispatches by container type and writes the record. Empty
// string fields and zero numeric fields remove the corresponding stored
// entries. When the attribute mirror is enabled, a best-effort sync to
// extended file attributes runs after the write; its failure never fails
// the write itself.
func (s *Store) WriteTags(path string, rec TagRecord) error {
	if !shared.FileExists(path) {
		return fmt.Errorf("%s: %w", path, shared.ErrNotFound)
	}
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	if err := c.writeTags(path, rec); err != nil {
		return err
	}
	if s.mirrorAttrs {
		if err := mirrorAttributes(path, rec); err != nil {
			if s.warnSink != nil {
				s.warnSink.AddAttributeMirrorWarning(path, err.Error())
			}
			shared.DebugPrint(s.debug, "attribute mirror failed for %s: %v", path, err)
		}
	}
	return nil
}

// ExtractCover returns the first embedded image, or ErrNotFound when the
// file has none. Zero-length payloads count as absent.
func (s *Store) ExtractCover(path string) (*Artwork, error) {
	if !shared.FileExists(path) {
		return nil, fmt.Errorf("%s: %w", path, shared.ErrNotFound)
	}
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	return c.extractCover(path)
}

// WriteCover removes all embedded images and, unless art is nil, inserts
// exactly one new image. The MIME type is taken from the artwork when set,
// otherwise sniffed from the leading bytes. The atom dialect accepts only
// PNG or JPEG; the others default an unresolved type to JPEG.
func (s *Store) WriteCover(path string, art *Artwork) error {
	if !shared.FileExists(path) {
		return fmt.Errorf("%s: %w", path, shared.ErrNotFound)
	}
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	if art != nil {
		resolved := *art
		if resolved.MIME == "" {
			resolved.MIME = SniffMIME(resolved.Data)
		}
		return c.writeCover(path, &resolved)
	}
	return c.writeCover(path, nil)
}
