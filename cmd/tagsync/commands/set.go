package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagsync/internal/core/tags"
)

// NewSetCommand creates the tag edit command
func NewSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [files...]",
		Short: "Set or clear tag fields on audio files.",
		Long: `Set tag fields on one or more audio files.

Only fields whose flag is given are touched. Setting a string flag to an
empty value, or a numeric flag to 0, removes the field from the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSetCommand,
	}

	cmd.Flags().String("title", "", "Track title")
	cmd.Flags().String("artist", "", "Track artist")
	cmd.Flags().String("album", "", "Album title")
	cmd.Flags().String("album-artist", "", "Album artist")
	cmd.Flags().String("composer", "", "Composer")
	cmd.Flags().String("genre", "", "Genre")
	cmd.Flags().String("comment", "", "Comment")
	cmd.Flags().Uint("year", 0, "Release year")
	cmd.Flags().Uint("track", 0, "Track number")
	cmd.Flags().Uint("track-total", 0, "Total tracks")
	cmd.Flags().Uint("disc", 0, "Disc number")
	cmd.Flags().Uint("disc-total", 0, "Total discs")
	cmd.Flags().String("mb-album-id", "", "MusicBrainz release id")
	cmd.Flags().String("mb-artist-id", "", "MusicBrainz artist id")
	cmd.Flags().String("mb-track-id", "", "MusicBrainz recording id")

	return cmd
}

func runSetCommand(cmd *cobra.Command, args []string) error {
	_, container, hooks := initConfigAndServices(cmd)

	edits := collectEdits(cmd)
	if len(edits) == 0 {
		return fmt.Errorf("no fields given; see 'tagsync set --help' for the available flags")
	}

	lock, err := acquireLibraryLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	failed := 0
	for _, path := range args {
		rec, err := container.Store.ReadTags(path)
		if err != nil {
			container.Logger.Error("Failed to read %s: %v", path, err)
			failed++
			continue
		}
		for _, edit := range edits {
			edit(&rec)
		}
		if err := container.Store.WriteTags(path, rec); err != nil {
			container.Logger.Error("Failed to write %s: %v", path, err)
			failed++
			continue
		}
		hooks.changes.NotifyChanged(path)
	}

	reportRun(container, hooks)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// collectEdits turns the flags that were explicitly given into field edits.
// An unset flag leaves its field alone, so a given empty or zero value is a
// deliberate removal.
func collectEdits(cmd *cobra.Command) []func(*tags.TagRecord) {
	var edits []func(*tags.TagRecord)

	stringFlag := func(name string, apply func(*tags.TagRecord, string)) {
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetString(name)
			edits = append(edits, func(rec *tags.TagRecord) { apply(rec, value) })
		}
	}
	uintFlag := func(name string, apply func(*tags.TagRecord, uint)) {
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetUint(name)
			edits = append(edits, func(rec *tags.TagRecord) { apply(rec, value) })
		}
	}

	stringFlag("title", func(rec *tags.TagRecord, v string) { rec.Title = v })
	stringFlag("artist", func(rec *tags.TagRecord, v string) { rec.Artist = v })
	stringFlag("album", func(rec *tags.TagRecord, v string) { rec.Album = v })
	stringFlag("album-artist", func(rec *tags.TagRecord, v string) { rec.AlbumArtist = v })
	stringFlag("composer", func(rec *tags.TagRecord, v string) { rec.Composer = v })
	stringFlag("genre", func(rec *tags.TagRecord, v string) { rec.Genre = v })
	stringFlag("comment", func(rec *tags.TagRecord, v string) { rec.Comment = v })
	uintFlag("year", func(rec *tags.TagRecord, v uint) { rec.Year = v })
	uintFlag("track", func(rec *tags.TagRecord, v uint) { rec.Track = v })
	uintFlag("track-total", func(rec *tags.TagRecord, v uint) { rec.TrackTotal = v })
	uintFlag("disc", func(rec *tags.TagRecord, v uint) { rec.Disc = v })
	uintFlag("disc-total", func(rec *tags.TagRecord, v uint) { rec.DiscTotal = v })
	stringFlag("mb-album-id", func(rec *tags.TagRecord, v string) { rec.MBAlbumID = v })
	stringFlag("mb-artist-id", func(rec *tags.TagRecord, v string) { rec.MBArtistID = v })
	stringFlag("mb-track-id", func(rec *tags.TagRecord, v string) { rec.MBTrackID = v })

	return edits
}
