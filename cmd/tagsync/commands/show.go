package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"tagsync/internal/core/tags"
	"tagsync/internal/services"
	"tagsync/internal/shared"
)

// NewShowCommand creates the tag display command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [files...]",
		Short: "Show the tags of one or more audio files.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runShowCommand,
	}

	cmd.Flags().Bool("artwork", false, "Also report embedded artwork")

	return cmd
}

func runShowCommand(cmd *cobra.Command, args []string) error {
	_, container, _ := initConfigAndServices(cmd)
	withArtwork, _ := cmd.Flags().GetBool("artwork")

	if len(args) == 1 {
		return showSingleFile(container, args[0], withArtwork)
	}
	return showFileList(container, args, withArtwork)
}

func showSingleFile(container *services.ServiceContainer, path string, withArtwork bool) error {
	rec, err := container.Store.ReadTags(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	shared.ColorHeader.Printf("🎵 %s\n", path)
	rows := recordRows(rec)
	if withArtwork {
		rows = append(rows, []string{"Artwork", artworkCell(container.Store, path)})
	}
	fmt.Println(renderTable([]string{"Field", "Value"}, rows, nil))
	return nil
}

func showFileList(container *services.ServiceContainer, paths []string, withArtwork bool) error {
	headers := []string{"#", "File", "Track", "Title", "Artist", "Album"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
	if withArtwork {
		headers = append(headers, "Artwork")
		aligns = append(aligns, alignLeft)
	}

	var rows [][]string
	unreadable := 0
	for i, path := range paths {
		rec, err := container.Store.ReadTags(path)
		if err != nil {
			shared.ColorWarning.Printf("⚠️ Skipping %s: %v\n", path, err)
			unreadable++
			continue
		}
		row := []string{
			strconv.Itoa(i + 1),
			filepath.Base(path),
			pairCell(rec.Track, rec.TrackTotal),
			shared.TruncateString(rec.Title, 40),
			shared.TruncateString(rec.Artist, 30),
			shared.TruncateString(rec.Album, 30),
		}
		if withArtwork {
			row = append(row, artworkCell(container.Store, path))
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		fmt.Println(renderTable(headers, rows, aligns))
	}
	if unreadable > 0 {
		return fmt.Errorf("%d file(s) could not be read", unreadable)
	}
	return nil
}

// recordRows flattens a record into field/value rows. Empty optional fields
// are skipped; title, artist and album always appear so their absence is
// visible.
func recordRows(rec tags.TagRecord) [][]string {
	rows := [][]string{
		{"Title", rec.Title},
		{"Artist", rec.Artist},
		{"Album", rec.Album},
	}
	optional := []struct {
		name  string
		value string
	}{
		{"Album Artist", rec.AlbumArtist},
		{"Composer", rec.Composer},
		{"Genre", rec.Genre},
		{"Comment", rec.Comment},
		{"Year", numberCell(rec.Year)},
		{"Track", pairCell(rec.Track, rec.TrackTotal)},
		{"Disc", pairCell(rec.Disc, rec.DiscTotal)},
		{"Length", durationCell(rec.LengthSeconds)},
		{"Bitrate", bitrateCell(rec.Bitrate)},
		{"Sample Rate", sampleRateCell(rec.SampleRate)},
		{"Channels", numberCell(rec.Channels)},
		{"MusicBrainz Album", rec.MBAlbumID},
		{"MusicBrainz Artist", rec.MBArtistID},
		{"MusicBrainz Track", rec.MBTrackID},
		{"AcoustID", rec.AcoustID},
		{"Fingerprint", shared.TruncateString(rec.AcoustFingerprint, 32)},
	}
	for _, field := range optional {
		if field.value != "" {
			rows = append(rows, []string{field.name, field.value})
		}
	}
	return rows
}

// artworkCell summarizes a file's embedded cover for display.
func artworkCell(store *tags.Store, path string) string {
	art, err := store.ExtractCover(path)
	if err != nil || art == nil {
		return "none"
	}
	return fmt.Sprintf("%s, %d bytes", art.MIME, len(art.Data))
}

func numberCell(v uint) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(v), 10)
}

// pairCell renders a (number, total) pair as "3/12", "3", or "".
func pairCell(number, total uint) string {
	if number == 0 {
		return ""
	}
	if total == 0 {
		return strconv.FormatUint(uint64(number), 10)
	}
	return fmt.Sprintf("%d/%d", number, total)
}

// durationCell renders a length in seconds as m:ss.
func durationCell(seconds uint) string {
	if seconds == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func bitrateCell(bitrate uint) string {
	if bitrate == 0 {
		return ""
	}
	return fmt.Sprintf("%d kbps", bitrate)
}

func sampleRateCell(rate uint) string {
	if rate == 0 {
		return ""
	}
	return fmt.Sprintf("%d Hz", rate)
}
