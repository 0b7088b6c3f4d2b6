//go:build linux

package tags

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// mirrorAttributes copies the record into extended attributes so file
// managers and indexers can show metadata without parsing the container.
// Empty fields remove their attribute, and removing an attribute that was
// never set is fine. Attribute names, including the double colon on the
// AcoustID one, are the legacy spellings existing tooling already reads.
// The fingerprint is deliberately not mirrored; it is far too large for an
// attribute value.
func mirrorAttributes(path string, rec TagRecord) error {
	num := func(v uint) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatUint(uint64(v), 10)
	}
	attrs := []struct {
		name  string
		value string
	}{
		{"user.Media:Title", rec.Title},
		{"user.Audio:Artist", rec.Artist},
		{"user.Audio:Album", rec.Album},
		{"user.Media:Genre", rec.Genre},
		{"user.Media:Comment", rec.Comment},
		{"user.Media:Year", num(rec.Year)},
		{"user.Audio:Track", num(rec.Track)},
		{"user.Media:TrackTotal", num(rec.TrackTotal)},
		{"user.Media:Disc", num(rec.Disc)},
		{"user.Media:DiscTotal", num(rec.DiscTotal)},
		{"user.Media:AlbumArtist", rec.AlbumArtist},
		{"user.Media:Composer", rec.Composer},
		{"user.Media:Length", num(rec.LengthSeconds)},
		{"user.Audio:Bitrate", num(rec.Bitrate)},
		{"user.Audio:Rate", num(rec.SampleRate)},
		{"user.Audio:Channels", num(rec.Channels)},
		{"user.Media:MBAlbumID", rec.MBAlbumID},
		{"user.Media:MBArtistID", rec.MBArtistID},
		{"user.Media:MBTrackID", rec.MBTrackID},
		{"user.Media::AAID", rec.AcoustID},
	}

	var firstErr error
	for _, attr := range attrs {
		var err error
		if attr.value == "" {
			err = unix.Removexattr(path, attr.name)
			if errors.Is(err, unix.ENODATA) || errors.Is(err, unix.ENOTSUP) {
				err = nil
			}
		} else {
			err = unix.Setxattr(path, attr.name, []byte(attr.value), 0)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("attribute %s on %s: %w", attr.name, path, err)
		}
	}
	return firstErr
}
