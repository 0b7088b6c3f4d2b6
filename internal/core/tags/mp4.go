package tags

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	mp4tag "github.com/zhaarey/go-mp4tag"

	"tagsync/internal/shared"
)

// mp4Codec implements the atom-based dialect. Standard fields use the
// four-character atoms; catalog identifiers use vendor-namespaced freeform
// atoms (----:com.apple.iTunes:<name>); track and disc pairs are native
// (position, total) tuples.
type mp4Codec struct{}

func openMP4(path string) (*mp4tag.MP4, error) {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parsing MP4 atoms in %s: %w: %v", path, shared.ErrUnsupported, err)
	}
	return mp4, nil
}

func fromInt16(v int16) uint {
	if v <= 0 {
		return 0
	}
	return uint(v)
}

func toInt16(v uint) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(v)
}

func (mp4Codec) readTags(path string) (TagRecord, error) {
	mp4, err := openMP4(path)
	if err != nil {
		return TagRecord{}, err
	}
	defer mp4.Close()

	t, err := mp4.Read()
	if err != nil {
		return TagRecord{}, fmt.Errorf("reading MP4 atoms from %s: %w: %v", path, shared.ErrUnsupported, err)
	}

	var rec TagRecord
	rec.Title = t.Title
	rec.Artist = t.Artist
	rec.Album = t.Album
	rec.AlbumArtist = t.AlbumArtist
	rec.Composer = t.Composer
	rec.Genre = t.CustomGenre
	rec.Comment = t.Comment
	rec.Year = parseUint(t.Date)
	rec.Track = fromInt16(t.TrackNumber)
	rec.TrackTotal = fromInt16(t.TrackTotal)
	rec.Disc = fromInt16(t.DiscNumber)
	rec.DiscTotal = fromInt16(t.DiscTotal)

	for name, value := range t.Custom {
		if value == "" {
			continue
		}
		for _, managed := range userTextFields {
			if !strings.EqualFold(managed.description, name) {
				continue
			}
			if dst := managed.field(&rec); *dst == "" {
				*dst = value
			}
			break
		}
	}

	if props, err := probeMP4(path); err == nil {
		rec.LengthSeconds = props.lengthSeconds
		rec.Bitrate = props.bitrate
		rec.SampleRate = props.sampleRate
		rec.Channels = props.channels
	}

	return rec, nil
}

func (mp4Codec) writeTags(path string, rec TagRecord) error {
	mp4, err := openMP4(path)
	if err != nil {
		return err
	}
	defer mp4.Close()

	t := &mp4tag.MP4Tags{
		Title:       rec.Title,
		Artist:      rec.Artist,
		Album:       rec.Album,
		AlbumArtist: rec.AlbumArtist,
		Composer:    rec.Composer,
		CustomGenre: rec.Genre,
		Comment:     rec.Comment,
		TrackNumber: toInt16(rec.Track),
		TrackTotal:  toInt16(rec.TrackTotal),
		DiscNumber:  toInt16(rec.Disc),
		DiscTotal:   toInt16(rec.DiscTotal),
		Custom:      make(map[string]string),
	}
	if rec.Year != 0 {
		t.Date = strconv.FormatUint(uint64(rec.Year), 10)
	}

	// The writer skips empty fields, so removals are requested explicitly.
	var deletes []string
	deleteIfEmpty := func(name, value string) {
		if value == "" {
			deletes = append(deletes, name)
		}
	}
	deleteIfEmpty("title", rec.Title)
	deleteIfEmpty("artist", rec.Artist)
	deleteIfEmpty("album", rec.Album)
	deleteIfEmpty("albumartist", rec.AlbumArtist)
	deleteIfEmpty("composer", rec.Composer)
	deleteIfEmpty("genre", rec.Genre)
	deleteIfEmpty("comment", rec.Comment)
	deleteIfEmpty("date", t.Date)
	if rec.Track == 0 && rec.TrackTotal == 0 {
		deletes = append(deletes, "trkn")
	}
	if rec.Disc == 0 && rec.DiscTotal == 0 {
		deletes = append(deletes, "disk")
	}

	for _, managed := range userTextFields {
		value := *managed.field(&rec)
		if value == "" {
			deletes = append(deletes, managed.description)
			continue
		}
		t.Custom[managed.description] = value
	}

	if err := mp4.Write(t, deletes); err != nil {
		return fmt.Errorf("writing MP4 atoms to %s: %w", path, err)
	}
	return nil
}

func (mp4Codec) extractCover(path string) (*Artwork, error) {
	mp4, err := openMP4(path)
	if err != nil {
		return nil, err
	}
	defer mp4.Close()

	t, err := mp4.Read()
	if err != nil {
		return nil, fmt.Errorf("reading MP4 atoms from %s: %w: %v", path, shared.ErrUnsupported, err)
	}
	for _, pic := range t.Pictures {
		if pic == nil || len(pic.Data) == 0 {
			continue
		}
		data := append([]byte(nil), pic.Data...)
		return &Artwork{Data: data, MIME: SniffMIME(data)}, nil
	}
	return nil, fmt.Errorf("no embedded cover in %s: %w", path, shared.ErrNotFound)
}

func (mp4Codec) writeCover(path string, art *Artwork) error {
	// Resolve the image format before touching the file: this container
	// only encodes PNG and JPEG covers.
	var format mp4tag.ImageType
	if art != nil {
		switch art.MIME {
		case MIMEPNG:
			format = mp4tag.ImageTypePNG
		case MIMEJPEG:
			format = mp4tag.ImageTypeJPEG
		default:
			return fmt.Errorf("cover MIME %q not storable in MP4 container: %w", art.MIME, shared.ErrUnsupported)
		}
	}

	mp4, err := openMP4(path)
	if err != nil {
		return err
	}
	defer mp4.Close()

	if art == nil {
		if err := mp4.Write(&mp4tag.MP4Tags{}, []string{"covr"}); err != nil {
			return fmt.Errorf("removing covers from %s: %w", path, err)
		}
		return nil
	}

	t := &mp4tag.MP4Tags{
		Pictures: []*mp4tag.MP4Picture{{Format: format, Data: art.Data}},
	}
	if err := mp4.Write(t, nil); err != nil {
		return fmt.Errorf("writing cover to %s: %w", path, err)
	}
	return nil
}
