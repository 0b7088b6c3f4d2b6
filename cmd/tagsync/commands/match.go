package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/reconcile"
	"tagsync/internal/interfaces"
	"tagsync/internal/services"
	"tagsync/internal/shared"
)

// NewMatchCommand creates the reconciliation command
func NewMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [paths...]",
		Short: "Match files against a catalog release and apply the metadata.",
		Long: `Match a directory or a set of files against a catalog release.

A single path names a file or directory and expands to every supported
audio file beside it. Without --release the release is picked from a
catalog search seeded by the files' tags.

When the automatic match is confident the metadata is applied directly.
Otherwise the proposed mapping is shown for confirmation and can be
adjusted file by file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMatchCommand,
	}

	cmd.Flags().String("release", "", "Release id to match against")
	cmd.Flags().String("recording", "", "Recording id to apply (requires --track)")
	cmd.Flags().Bool("track", false, "Track mode: apply one recording instead of a whole release")
	cmd.Flags().String("artist", "", "Override the artist used to find release candidates")
	cmd.Flags().String("album", "", "Override the album used to find release candidates")
	cmd.Flags().Bool("auto", false, "Take the best release candidate without prompting")

	return cmd
}

func runMatchCommand(cmd *cobra.Command, args []string) error {
	_, container, hooks := initConfigAndServices(cmd)

	releaseID, _ := cmd.Flags().GetString("release")
	recordingID, _ := cmd.Flags().GetString("recording")
	trackMode, _ := cmd.Flags().GetBool("track")
	auto, _ := cmd.Flags().GetBool("auto")
	noInput, _ := cmd.Flags().GetBool("no-input")
	ctx := cmd.Context()

	var generation shared.Generation
	token := generation.Begin()

	if trackMode {
		if recordingID == "" {
			return fmt.Errorf("--track requires --recording")
		}
	} else if releaseID == "" {
		picked, err := pickRelease(ctx, cmd, container, args, token, auto || noInput)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		releaseID = picked
	}

	lock, err := acquireLibraryLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	var result reconcile.Result
	if trackMode {
		result = container.Engine.ReconcileTrack(ctx, reconcile.Request{
			Paths:       args,
			ReleaseID:   releaseID,
			RecordingID: recordingID,
		}, token)
	} else {
		result = container.Engine.ReconcileAlbum(ctx, reconcile.Request{
			Paths:     args,
			ReleaseID: releaseID,
		}, token)
	}

	if result.Outcome == reconcile.OutcomeHandedOff {
		result = resolveSession(ctx, container, hooks, token, noInput)
	}

	switch result.Outcome {
	case reconcile.OutcomeApplied:
		container.Logger.Success("Matched and applied metadata to %d file(s)", result.Applied)
	case reconcile.OutcomeHandedOff:
		container.Logger.Warning("Nothing was written")
	case reconcile.OutcomeCancelled:
		container.Logger.Warning("Match cancelled")
	case reconcile.OutcomeFailed:
		container.Logger.Error("Match failed; nothing was written")
	}

	reportRun(container, hooks)
	if result.Outcome == reconcile.OutcomeFailed {
		return fmt.Errorf("match failed")
	}
	return nil
}

// querySeed is what the target files tell us to search with.
type querySeed struct {
	artist    string
	album     string
	fileCount int
}

// seedQuery derives search terms from the first readable target file. The
// album artist wins over the track artist so compilations search as the
// compilation, not as one contributing artist.
func seedQuery(container *services.ServiceContainer, paths []string) querySeed {
	expanded := reconcile.ExpandPaths(paths)
	seed := querySeed{fileCount: len(expanded)}
	for _, path := range expanded {
		rec, err := container.Store.ReadTags(path)
		if err != nil {
			continue
		}
		if seed.artist == "" {
			seed.artist = rec.AlbumArtist
			if seed.artist == "" {
				seed.artist = rec.Artist
			}
		}
		if seed.album == "" {
			seed.album = rec.Album
		}
		if seed.artist != "" && seed.album != "" {
			break
		}
	}
	return seed
}

// pickRelease finds release candidates for the target files and lets the
// user choose one. Returns "" when there are no candidates or the user
// quits.
func pickRelease(ctx context.Context, cmd *cobra.Command, container *services.ServiceContainer, paths []string, token *shared.Token, auto bool) (string, error) {
	artist, _ := cmd.Flags().GetString("artist")
	album, _ := cmd.Flags().GetString("album")

	seed := seedQuery(container, paths)
	if artist == "" {
		artist = seed.artist
	}
	if album == "" {
		album = seed.album
	}
	if artist == "" && album == "" {
		return "", fmt.Errorf("no artist or album tags to search with; give --release or --artist/--album")
	}

	shared.ColorInfo.Printf("🔎 Looking up release candidates for %s...\n", searchLabel(artist, "", album))
	hits := container.Catalog.SearchRecording(ctx, artist, "", album, token.Cancelled)
	candidates := reconcile.RankHits(reconcile.DedupeByRelease(hits), seed.fileCount)
	if len(candidates) == 0 {
		shared.ColorWarning.Println("No release candidates found.")
		return "", nil
	}

	if auto {
		return candidates[0].ReleaseID, nil
	}

	printReleaseTable(candidates)
	selection := shared.GetUserInput("\nEnter a number to match against, or 'q' to quit", "1")
	if strings.EqualFold(selection, "q") {
		return "", nil
	}
	n, err := strconv.Atoi(selection)
	if err != nil || n < 1 || n > len(candidates) {
		return "", fmt.Errorf("invalid selection %q", selection)
	}
	return candidates[n-1].ReleaseID, nil
}

// resolveSession walks the user through an unresolved match session and
// applies the confirmed mapping.
func resolveSession(ctx context.Context, container *services.ServiceContainer, hooks *cliHooks, token *shared.Token, noInput bool) reconcile.Result {
	session := hooks.sessions.take()
	if session == nil {
		return reconcile.Result{Outcome: reconcile.OutcomeFailed}
	}

	shared.ColorWarning.Println("⚠️ The automatic match is not confident.")
	printProposal(session)

	if noInput {
		shared.ColorWarning.Println("Run again without --no-input to confirm or adjust the mapping.")
		return reconcile.Result{Outcome: reconcile.OutcomeHandedOff, SessionID: session.ID}
	}

	mapping := session.Proposed
	if !shared.GetYesNoInput("Apply this mapping?", "n") {
		adjusted, ok := adjustMapping(session)
		if !ok {
			return reconcile.Result{Outcome: reconcile.OutcomeHandedOff, SessionID: session.ID}
		}
		mapping = adjusted
	}

	return container.Engine.ApplyConfirmed(ctx, session, mapping, token)
}

// adjustMapping prompts for a track list index per file. Entering 0 leaves
// a file out; 'q' abandons the session.
func adjustMapping(session *interfaces.MatchSession) (map[string]int, bool) {
	printTrackList(session.Release)
	mapping := make(map[string]int)
	for _, file := range session.Files {
		def := "0"
		if j, ok := session.Proposed[file]; ok {
			def = strconv.Itoa(j + 1)
		}
		input := shared.GetUserInput(fmt.Sprintf("Track for %s (0 to skip, q to abort)", filepath.Base(file)), def)
		if strings.EqualFold(input, "q") {
			return nil, false
		}
		n, err := strconv.Atoi(input)
		if err != nil || n < 0 || n > len(session.Release.Tracks) {
			shared.ColorWarning.Printf("⚠️ Ignoring invalid choice %q for %s\n", input, filepath.Base(file))
			continue
		}
		if n == 0 {
			continue
		}
		mapping[file] = n - 1
	}
	if len(mapping) == 0 {
		return nil, false
	}
	return mapping, true
}

func printReleaseTable(candidates []musicbrainz.Hit) {
	headers := []string{"#", "Release", "Artist", "Year", "Country", "Tracks"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignRight}
	rows := make([][]string, 0, len(candidates))
	for i, hit := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			shared.TruncateString(hit.ReleaseTitle, 45),
			shared.TruncateString(hit.Artist, 30),
			numberCell(hit.Year),
			hit.Country,
			countCell(hit.TrackCount),
		})
	}
	fmt.Println(renderTable(headers, rows, aligns))
}

func printProposal(session *interfaces.MatchSession) {
	shared.ColorHeader.Printf("Proposed mapping against %q by %s:\n", session.Release.Title, session.Release.Artist)
	headers := []string{"File", "Track", "Title"}
	aligns := []columnAlignment{alignLeft, alignRight, alignLeft}
	rows := make([][]string, 0, len(session.Files))
	for _, file := range session.Files {
		trackCell, titleCell := "-", "unmatched"
		if j, ok := session.Proposed[file]; ok && j >= 0 && j < len(session.Release.Tracks) {
			track := session.Release.Tracks[j]
			trackCell = trackSlotCell(track)
			titleCell = shared.TruncateString(track.Title, 45)
		}
		rows = append(rows, []string{filepath.Base(file), trackCell, titleCell})
	}
	fmt.Println(renderTable(headers, rows, aligns))
}

func printTrackList(release musicbrainz.Release) {
	shared.ColorHeader.Printf("Tracks on %q:\n", release.Title)
	headers := []string{"#", "Slot", "Title", "Length"}
	aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignRight}
	rows := make([][]string, 0, len(release.Tracks))
	for i, track := range release.Tracks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			trackSlotCell(track),
			shared.TruncateString(track.Title, 45),
			durationCell(track.LengthSeconds),
		})
	}
	fmt.Println(renderTable(headers, rows, aligns))
}

// trackSlotCell renders a release slot as "3", or "2.3" on later discs.
func trackSlotCell(track musicbrainz.ReleaseTrack) string {
	if track.Disc > 1 {
		return fmt.Sprintf("%d.%d", track.Disc, track.Position)
	}
	return strconv.FormatUint(uint64(track.Position), 10)
}
