package musicbrainz

// Wire types for the ws/2 JSON documents, trimmed to the fields the
// reconciliation flows consume.

// Artist identifies a credited artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistCredit is one entry of a credit list; only the first is used.
type ArtistCredit struct {
	Artist Artist `json:"artist"`
}

// ReleaseGroup carries the group id a release belongs to.
type ReleaseGroup struct {
	ID string `json:"id"`
}

// MediaTrack is one track slot on a medium. Lengths are milliseconds; the
// track-level length falls back to the recording-level one when absent.
type MediaTrack struct {
	ID        string `json:"id"`
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Length    int    `json:"length"`
	Recording struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Length int    `json:"length"`
	} `json:"recording"`
}

// Media is one medium (disc) of a release. Search results carry only the
// track count; detail documents carry the full track list.
type Media struct {
	Position   int          `json:"position"`
	Format     string       `json:"format"`
	TrackCount int          `json:"track-count"`
	Tracks     []MediaTrack `json:"tracks"`
}

// RecordingRelease is a release as embedded in recording search results.
type RecordingRelease struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Country      string         `json:"country"`
	TrackCount   int            `json:"track-count"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Media        []Media        `json:"media"`
}

// Recording is a ws/2 recording document.
type Recording struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Length       int                `json:"length"`
	ArtistCredit []ArtistCredit     `json:"artist-credit"`
	Releases     []RecordingRelease `json:"releases"`
}

// releaseResponse is the release detail document behind GetReleaseDetails.
type releaseResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Country      string         `json:"country"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup ReleaseGroup   `json:"release-group"`
	Media        []Media        `json:"media"`
}

// Flat model handed to the reconciliation engine.

// Hit is one search result row: a recording paired with one of its
// releases. A recording without releases still produces a hit, with the
// release fields empty.
type Hit struct {
	RecordingID  string
	Title        string
	Artist       string
	ReleaseID    string
	ReleaseTitle string
	Country      string
	Year         uint
	TrackCount   int
}

// ReleaseTrack is one slot of a release's flattened track list, ordered by
// medium then position.
type ReleaseTrack struct {
	Disc          uint
	Position      uint
	LengthSeconds uint
	Title         string
	RecordingID   string
}

// Release is the flattened release detail the engine matches against.
type Release struct {
	ID             string
	Title          string
	Artist         string
	ReleaseGroupID string
	Year           uint
	Tracks         []ReleaseTrack
}

// ContainsRecording reports whether the release's track list references the
// recording.
func (r Release) ContainsRecording(recordingID string) (ReleaseTrack, bool) {
	if recordingID == "" {
		return ReleaseTrack{}, false
	}
	for _, track := range r.Tracks {
		if track.RecordingID == recordingID {
			return track, true
		}
	}
	return ReleaseTrack{}, false
}

// yearOf extracts the year from a ws/2 date like "1997-05-21" or "1997".
func yearOf(date string) uint {
	var year uint
	for i := 0; i < len(date) && date[i] >= '0' && date[i] <= '9'; i++ {
		year = year*10 + uint(date[i]-'0')
		if i == 3 {
			break
		}
	}
	if year < 1000 {
		return 0
	}
	return year
}

// creditName returns the first credited artist name.
func creditName(credits []ArtistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	return credits[0].Artist.Name
}

// flattenRelease converts a wire release document into the engine model.
func flattenRelease(id string, doc releaseResponse) Release {
	release := Release{
		ID:             id,
		Title:          doc.Title,
		Artist:         creditName(doc.ArtistCredit),
		ReleaseGroupID: doc.ReleaseGroup.ID,
		Year:           yearOf(doc.Date),
	}
	for _, media := range doc.Media {
		disc := uint(1)
		if media.Position > 0 {
			disc = uint(media.Position)
		}
		for _, track := range media.Tracks {
			length := track.Length
			if length == 0 {
				length = track.Recording.Length
			}
			if length < 0 {
				length = 0
			}
			title := track.Title
			if title == "" {
				title = track.Recording.Title
			}
			var position uint
			if track.Position > 0 {
				position = uint(track.Position)
			}
			release.Tracks = append(release.Tracks, ReleaseTrack{
				Disc:          disc,
				Position:      position,
				LengthSeconds: uint(length / 1000),
				Title:         title,
				RecordingID:   track.Recording.ID,
			})
		}
	}
	return release
}
