package tags

import (
	"fmt"
	"strconv"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"

	"tagsync/internal/shared"
)

// userTextFields enumerates the user-defined text frames (TXXX) this store
// manages, in write order. Descriptions are matched case-insensitively on
// read, per the conventions of the catalog taggers that produced them.
var userTextFields = []struct {
	description string
	field       func(*TagRecord) *string
}{
	{"MusicBrainz Album Id", func(r *TagRecord) *string { return &r.MBAlbumID }},
	{"MusicBrainz Artist Id", func(r *TagRecord) *string { return &r.MBArtistID }},
	{"MusicBrainz Track Id", func(r *TagRecord) *string { return &r.MBTrackID }},
	{"AcoustID Fingerprint", func(r *TagRecord) *string { return &r.AcoustFingerprint }},
	{"AcoustID Id", func(r *TagRecord) *string { return &r.AcoustID }},
}

func isManagedUserText(description string) bool {
	for _, f := range userTextFields {
		if strings.EqualFold(f.description, description) {
			return true
		}
	}
	return false
}

// id3Codec implements the frame-based dialect on ID3v2 containers.
type id3Codec struct{}

func openID3(path string) (*id3v2.Tag, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("parsing ID3 frames in %s: %w: %v", path, shared.ErrUnsupported, err)
	}
	return tag, nil
}

func (id3Codec) readTags(path string) (TagRecord, error) {
	tag, err := openID3(path)
	if err != nil {
		return TagRecord{}, err
	}
	defer tag.Close()

	var rec TagRecord
	rec.Title = tag.Title()
	rec.Artist = tag.Artist()
	rec.Album = tag.Album()
	rec.Genre = tag.Genre()
	// v2.4 stores the year in TDRC, v2.3 in TYER. Either way only the
	// leading digits count, so "2006-05-01" reads as 2006.
	rec.Year = parseUint(firstNonEmpty(
		tag.GetTextFrame("TDRC").Text,
		tag.GetTextFrame("TYER").Text,
	))
	rec.AlbumArtist = tag.GetTextFrame("TPE2").Text
	rec.Composer = tag.GetTextFrame("TCOM").Text
	rec.Track, rec.TrackTotal = parsePair(tag.GetTextFrame("TRCK").Text)
	rec.Disc, rec.DiscTotal = parsePair(tag.GetTextFrame("TPOS").Text)

	for _, f := range tag.GetFrames(tag.CommonID("Comments")) {
		cf, ok := f.(id3v2.CommentFrame)
		if !ok {
			continue
		}
		rec.Comment = cf.Text
		break
	}

	for _, f := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		udf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		for _, managed := range userTextFields {
			if !strings.EqualFold(managed.description, udf.Description) {
				continue
			}
			if dst := managed.field(&rec); *dst == "" {
				*dst = udf.Value
			}
			break
		}
	}

	if props, err := probeMP3(path, int64(tag.Size())); err == nil {
		rec.LengthSeconds = props.lengthSeconds
		rec.Bitrate = props.bitrate
		rec.SampleRate = props.sampleRate
		rec.Channels = props.channels
	}

	return rec, nil
}

func (id3Codec) writeTags(path string, rec TagRecord) error {
	tag, err := openID3(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Text frames are single-valued in this tag: adding replaces, deleting
	// removes. Empty canonical values therefore erase the stored entry.
	setText := func(id, value string) {
		if value == "" {
			tag.DeleteFrames(id)
			return
		}
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
	setText("TIT2", rec.Title)
	setText("TPE1", rec.Artist)
	setText("TALB", rec.Album)
	setText("TCON", rec.Genre)
	setText("TPE2", rec.AlbumArtist)
	setText("TCOM", rec.Composer)
	setText("TRCK", formatPair(rec.Track, rec.TrackTotal))
	setText("TPOS", formatPair(rec.Disc, rec.DiscTotal))

	// Year lives in TDRC for v2.4 output; a stale TYER from an older tag
	// would shadow the deletion law, so both are cleared first.
	tag.DeleteFrames("TDRC")
	tag.DeleteFrames("TYER")
	if rec.Year != 0 {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, strconv.FormatUint(uint64(rec.Year), 10))
	}

	tag.DeleteFrames(tag.CommonID("Comments"))
	if rec.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "",
			Text:        rec.Comment,
		})
	}

	// User-defined frames can repeat, so the managed ones are fully removed
	// and recreated rather than mutated in place; foreign TXXX frames
	// (replaygain and friends) are preserved.
	replaceManagedUserText(tag, rec)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving ID3 frames to %s: %w", path, err)
	}
	return nil
}

func replaceManagedUserText(tag *id3v2.Tag, rec TagRecord) {
	id := tag.CommonID("User defined text information frame")

	var kept []id3v2.UserDefinedTextFrame
	for _, f := range tag.GetFrames(id) {
		udf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		if isManagedUserText(udf.Description) {
			continue
		}
		kept = append(kept, udf)
	}

	tag.DeleteFrames(id)
	for _, udf := range kept {
		tag.AddUserDefinedTextFrame(udf)
	}
	for _, managed := range userTextFields {
		value := *managed.field(&rec)
		if value == "" {
			continue
		}
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: managed.description,
			Value:       value,
		})
	}
}

func (id3Codec) extractCover(path string) (*Artwork, error) {
	tag, err := openID3(path)
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pf, ok := f.(id3v2.PictureFrame)
		if !ok || len(pf.Picture) == 0 {
			continue
		}
		mime := pf.MimeType
		if mime == "" {
			mime = SniffMIME(pf.Picture)
		}
		return &Artwork{Data: append([]byte(nil), pf.Picture...), MIME: mime}, nil
	}
	return nil, fmt.Errorf("no embedded cover in %s: %w", path, shared.ErrNotFound)
}

func (id3Codec) writeCover(path string, art *Artwork) error {
	tag, err := openID3(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	if art != nil {
		mime := art.MIME
		if mime == "" {
			mime = MIMEJPEG
		}
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    mime,
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     art.Data,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving cover to %s: %w", path, err)
	}
	return nil
}
