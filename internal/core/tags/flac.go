package tags

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"tagsync/internal/shared"
)

// flacCodec implements the property-map dialect. Fields live as KEY=value
// comment entries; keys compare case-insensitively and the same field can
// appear under several historical spellings, so reads walk a fallback list
// and writes erase the whole synonym set before adding canonical keys.
type flacCodec struct{}

// managedVorbisKeys is every spelling a write owns. Entries outside this set
// belong to other software and survive a rewrite untouched.
var managedVorbisKeys = []string{
	flacvorbis.FIELD_TITLE,
	flacvorbis.FIELD_ARTIST,
	flacvorbis.FIELD_ALBUM,
	"ALBUMARTIST", "ALBUM ARTIST",
	"COMPOSER",
	flacvorbis.FIELD_GENRE,
	"COMMENT", flacvorbis.FIELD_DESCRIPTION,
	flacvorbis.FIELD_DATE, "YEAR",
	flacvorbis.FIELD_TRACKNUMBER,
	"TRACKTOTAL", "TOTALTRACKS", "TOTAL TRACKS",
	"DISCNUMBER", "DISC NUMBER", "TPOS",
	"DISCTOTAL", "TOTALDISCS", "TOTAL DISCS",
	"MUSICBRAINZ_ALBUMID", "MusicBrainz Album Id",
	"MUSICBRAINZ_ARTISTID", "MusicBrainz Artist Id",
	"MUSICBRAINZ_TRACKID", "MusicBrainz Track Id",
	"ACOUSTID_FINGERPRINT", "AcoustID Fingerprint",
	"ACOUSTID_ID", "AcoustID Id",
}

func isManagedVorbisKey(key string) bool {
	for _, managed := range managedVorbisKeys {
		if strings.EqualFold(managed, key) {
			return true
		}
	}
	return false
}

func parseFLAC(path string) (*flac.File, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing FLAC container %s: %w: %v", path, shared.ErrUnsupported, err)
	}
	return f, nil
}

// findVorbisComment returns the first parseable comment block, or nil.
func findVorbisComment(f *flac.File) *flacvorbis.MetaDataBlockVorbisComment {
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		if cmt, err := flacvorbis.ParseFromMetaDataBlock(*block); err == nil {
			return cmt
		}
	}
	return nil
}

// vorbisFirst returns the first non-empty value stored under any of the
// given keys, in key order.
func vorbisFirst(cmt *flacvorbis.MetaDataBlockVorbisComment, keys ...string) string {
	for _, key := range keys {
		values, err := cmt.Get(key)
		if err != nil {
			continue
		}
		for _, value := range values {
			if value != "" {
				return value
			}
		}
	}
	return ""
}

func (flacCodec) readTags(path string) (TagRecord, error) {
	f, err := parseFLAC(path)
	if err != nil {
		return TagRecord{}, err
	}

	var rec TagRecord
	if cmt := findVorbisComment(f); cmt != nil {
		rec.Title = vorbisFirst(cmt, flacvorbis.FIELD_TITLE)
		rec.Artist = vorbisFirst(cmt, flacvorbis.FIELD_ARTIST)
		rec.Album = vorbisFirst(cmt, flacvorbis.FIELD_ALBUM)
		rec.AlbumArtist = vorbisFirst(cmt, "ALBUMARTIST", "ALBUM ARTIST")
		rec.Composer = vorbisFirst(cmt, "COMPOSER")
		rec.Genre = vorbisFirst(cmt, flacvorbis.FIELD_GENRE)
		rec.Comment = vorbisFirst(cmt, "COMMENT", flacvorbis.FIELD_DESCRIPTION)
		rec.Year = parseUint(vorbisFirst(cmt, flacvorbis.FIELD_DATE, "YEAR"))

		// Dedicated total keys win; a "n/m" pair only fills blanks.
		rec.TrackTotal = parseUint(vorbisFirst(cmt, "TRACKTOTAL", "TOTALTRACKS", "TOTAL TRACKS"))
		num, total := parsePair(vorbisFirst(cmt, flacvorbis.FIELD_TRACKNUMBER))
		rec.Track = num
		if rec.TrackTotal == 0 {
			rec.TrackTotal = total
		}

		rec.Disc = parseUint(vorbisFirst(cmt, "DISCNUMBER", "DISC NUMBER"))
		rec.DiscTotal = parseUint(vorbisFirst(cmt, "DISCTOTAL", "TOTALDISCS", "TOTAL DISCS"))
		num, total = parsePair(vorbisFirst(cmt, "TPOS", "DISCNUMBER"))
		if rec.Disc == 0 {
			rec.Disc = num
		}
		if rec.DiscTotal == 0 {
			rec.DiscTotal = total
		}

		rec.MBAlbumID = vorbisFirst(cmt, "MUSICBRAINZ_ALBUMID", "MusicBrainz Album Id")
		rec.MBArtistID = vorbisFirst(cmt, "MUSICBRAINZ_ARTISTID", "MusicBrainz Artist Id")
		rec.MBTrackID = vorbisFirst(cmt, "MUSICBRAINZ_TRACKID", "MusicBrainz Track Id")
		rec.AcoustFingerprint = vorbisFirst(cmt, "ACOUSTID_FINGERPRINT", "AcoustID Fingerprint")
		rec.AcoustID = vorbisFirst(cmt, "ACOUSTID_ID", "AcoustID Id")
	}

	if info, err := f.GetStreamInfo(); err == nil && info.SampleRate > 0 {
		rec.SampleRate = uint(info.SampleRate)
		rec.Channels = uint(info.ChannelCount)
		rec.LengthSeconds = uint(info.SampleCount / int64(info.SampleRate))
		if rec.LengthSeconds > 0 {
			if fi, err := os.Stat(path); err == nil {
				rec.Bitrate = uint(uint64(fi.Size()) * 8 / uint64(rec.LengthSeconds) / 1000)
			}
		}
	}

	return rec, nil
}

func (flacCodec) writeTags(path string, rec TagRecord) error {
	f, err := parseFLAC(path)
	if err != nil {
		return err
	}

	comment := flacvorbis.New()
	if old := findVorbisComment(f); old != nil {
		comment.Vendor = old.Vendor
		for _, entry := range old.Comments {
			key, _, ok := strings.Cut(entry, "=")
			if ok && isManagedVorbisKey(key) {
				continue
			}
			comment.Comments = append(comment.Comments, entry)
		}
	}

	add := func(key, value string) {
		if value != "" {
			comment.Add(key, value)
		}
	}
	add(flacvorbis.FIELD_TITLE, rec.Title)
	add(flacvorbis.FIELD_ARTIST, rec.Artist)
	add(flacvorbis.FIELD_ALBUM, rec.Album)
	add("ALBUMARTIST", rec.AlbumArtist)
	add("COMPOSER", rec.Composer)
	add(flacvorbis.FIELD_GENRE, rec.Genre)
	add("COMMENT", rec.Comment)
	if rec.Year != 0 {
		add(flacvorbis.FIELD_DATE, strconv.FormatUint(uint64(rec.Year), 10))
	}
	add(flacvorbis.FIELD_TRACKNUMBER, formatPair(rec.Track, rec.TrackTotal))
	if rec.TrackTotal != 0 {
		total := strconv.FormatUint(uint64(rec.TrackTotal), 10)
		add("TRACKTOTAL", total)
		add("TOTALTRACKS", total)
	}
	add("DISCNUMBER", formatPair(rec.Disc, rec.DiscTotal))
	if rec.DiscTotal != 0 {
		total := strconv.FormatUint(uint64(rec.DiscTotal), 10)
		add("DISCTOTAL", total)
		add("TOTALDISCS", total)
	}
	add("MUSICBRAINZ_ALBUMID", rec.MBAlbumID)
	add("MUSICBRAINZ_ARTISTID", rec.MBArtistID)
	add("MUSICBRAINZ_TRACKID", rec.MBTrackID)
	add("ACOUSTID_FINGERPRINT", rec.AcoustFingerprint)
	add("ACOUSTID_ID", rec.AcoustID)

	var meta []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			meta = append(meta, block)
		}
	}
	vorbisBlock := comment.Marshal()
	meta = append(meta, &vorbisBlock)
	f.Meta = meta

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving FLAC metadata to %s: %w", path, err)
	}
	return nil
}

func (flacCodec) extractCover(path string) (*Artwork, error) {
	f, err := parseFLAC(path)
	if err != nil {
		return nil, err
	}
	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*block)
		if err != nil || len(pic.ImageData) == 0 {
			continue
		}
		data := append([]byte(nil), pic.ImageData...)
		mime := pic.MIME
		if mime == "" {
			mime = SniffMIME(data)
		}
		return &Artwork{Data: data, MIME: mime}, nil
	}
	return nil, fmt.Errorf("no embedded cover in %s: %w", path, shared.ErrNotFound)
}

func (flacCodec) writeCover(path string, art *Artwork) error {
	f, err := parseFLAC(path)
	if err != nil {
		return err
	}

	var meta []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			meta = append(meta, block)
		}
	}
	f.Meta = meta

	if art != nil {
		mime := art.MIME
		if mime == "" {
			mime = MIMEJPEG
		}
		picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", art.Data, mime)
		if err != nil {
			return fmt.Errorf("encoding cover picture block: %w", err)
		}
		pictureBlock := picture.Marshal()
		f.Meta = append(f.Meta, &pictureBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving FLAC cover to %s: %w", path, err)
	}
	return nil
}
