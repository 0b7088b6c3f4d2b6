package tags

import (
	"fmt"
	"strconv"
	"strings"
)

// TagRecord is the canonical metadata for one audio file. It is a value type,
// constructed fresh per read and passed by copy; a numeric field of 0 means
// "not present" and, on write, removes the underlying stored entry instead of
// storing a literal zero.
type TagRecord struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Composer    string
	Genre       string
	Comment     string

	Year       uint
	Track      uint
	TrackTotal uint
	Disc       uint
	DiscTotal  uint

	// Stream properties, filled on read only. WriteTags ignores them.
	LengthSeconds uint
	Bitrate       uint
	SampleRate    uint
	Channels      uint

	// Opaque catalog identifiers.
	MBAlbumID         string
	MBArtistID        string
	MBTrackID         string
	AcoustFingerprint string
	AcoustID          string
}

// Artwork is one embedded cover image: raw bytes plus a MIME type. Writing
// artwork always replaces the file's whole embedded-image set with zero or
// one entries.
type Artwork struct {
	Data []byte
	MIME string
}

// parseUint parses a non-negative integer from the leading digits of s.
// Surrounding whitespace is ignored and trailing text is cut off, so
// "2006-05-01" parses as 2006. Negative, empty, or unparsable input yields
// 0, indistinguishable from "absent".
func parseUint(s string) uint {
	s = strings.TrimSpace(s)
	start := 0
	if start < len(s) && (s[start] == '+' || s[start] == '-') {
		if s[start] == '-' {
			return 0
		}
		start++
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseUint(s[start:end], 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// parsePair decodes a combined "N" or "N/M" value. Only the first slash is
// significant: "3/12/99" decodes as (3, 12).
func parsePair(s string) (num, total uint) {
	head, tail, found := strings.Cut(s, "/")
	num = parseUint(head)
	if found {
		total = parseUint(tail)
	}
	return num, total
}

// formatPair encodes a (position, total) pair as "N" when the total is
// unknown and "N/M" when both are known. Both zero encodes as "", which
// removes the stored entry.
func formatPair(num, total uint) string {
	if num == 0 && total == 0 {
		return ""
	}
	if total == 0 {
		return strconv.FormatUint(uint64(num), 10)
	}
	return fmt.Sprintf("%d/%d", num, total)
}

// firstNonEmpty returns the first non-empty value in order. It is the merge
// primitive behind every fallback-key table: a field populated by a
// higher-priority source is never overwritten by a lower-priority one.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
