package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/core/reconcile"
	"tagsync/internal/shared"
)

// NewSearchCommand creates the catalog search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [file]",
		Short: "Search the catalog for a recording and optionally apply a hit.",
		Long: `Search the metadata catalog for recordings.

With a file argument the query is seeded from the file's tags and a
selected hit is applied to the file. Flags override the seeded query;
without a file they are the query and the results are only displayed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSearchCommand,
	}

	cmd.Flags().String("artist", "", "Artist to search for")
	cmd.Flags().String("title", "", "Recording title to search for")
	cmd.Flags().String("album", "", "Album to narrow the search")
	cmd.Flags().Bool("auto", false, "Apply the best hit without prompting")

	return cmd
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	_, container, hooks := initConfigAndServices(cmd)

	artist, _ := cmd.Flags().GetString("artist")
	title, _ := cmd.Flags().GetString("title")
	album, _ := cmd.Flags().GetString("album")
	auto, _ := cmd.Flags().GetBool("auto")
	noInput, _ := cmd.Flags().GetBool("no-input")

	var path string
	if len(args) == 1 {
		path = args[0]
		rec, err := container.Store.ReadTags(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if artist == "" {
			artist = rec.Artist
		}
		if title == "" {
			title = rec.Title
		}
		if album == "" {
			album = rec.Album
		}
	}
	if artist == "" && title == "" && album == "" {
		return fmt.Errorf("nothing to search for; give a tagged file or --artist/--title/--album")
	}

	var generation shared.Generation
	token := generation.Begin()

	shared.ColorInfo.Printf("🔎 Searching for %s...\n", searchLabel(artist, title, album))
	hits := container.Catalog.SearchRecording(cmd.Context(), artist, title, album, token.Cancelled)
	if len(hits) == 0 {
		container.WarningCollector.AddRecordingLookupWarning(artist, title, "no catalog results")
		shared.ColorWarning.Println("No results found.")
		return nil
	}
	ranked := reconcile.RankHits(hits, 0)
	printHitTable(ranked)

	if path == "" {
		return nil
	}

	if noInput && !auto {
		// Display only; applying needs a prompt or --auto.
		return nil
	}
	choice := 1
	if !auto {
		selection := shared.GetUserInput("\nEnter a number to apply to the file, or 'q' to quit", "q")
		if selection == "" || strings.EqualFold(selection, "q") {
			return nil
		}
		n, err := strconv.Atoi(selection)
		if err != nil || n < 1 || n > len(ranked) {
			return fmt.Errorf("invalid selection %q", selection)
		}
		choice = n
	}
	hit := ranked[choice-1]

	lock, err := acquireLibraryLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	result := container.Engine.ReconcileTrack(cmd.Context(), reconcile.Request{
		Paths:       []string{path},
		ReleaseID:   hit.ReleaseID,
		RecordingID: hit.RecordingID,
	}, token)

	switch result.Outcome {
	case reconcile.OutcomeApplied:
		container.Logger.Success("Applied %q by %s to %s", hit.Title, hit.Artist, path)
	case reconcile.OutcomeCancelled:
		container.Logger.Warning("Apply cancelled")
	default:
		container.Logger.Error("Failed to apply the selected hit")
	}

	reportRun(container, hooks)
	if result.Outcome == reconcile.OutcomeFailed {
		return fmt.Errorf("apply failed")
	}
	return nil
}

// searchLabel is a compact human description of a query.
func searchLabel(artist, title, album string) string {
	var parts []string
	if title != "" {
		parts = append(parts, fmt.Sprintf("%q", title))
	}
	if artist != "" {
		parts = append(parts, "by "+artist)
	}
	if album != "" {
		parts = append(parts, "on "+album)
	}
	return strings.Join(parts, " ")
}

// printHitTable renders ranked hits with 1-based selection numbers.
func printHitTable(hits []musicbrainz.Hit) {
	headers := []string{"#", "Title", "Artist", "Release", "Year", "Tracks"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
	rows := make([][]string, 0, len(hits))
	for i, hit := range hits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			shared.TruncateString(hit.Title, 40),
			shared.TruncateString(hit.Artist, 30),
			shared.TruncateString(hit.ReleaseTitle, 40),
			numberCell(hit.Year),
			countCell(hit.TrackCount),
		})
	}
	fmt.Println(renderTable(headers, rows, aligns))
}

func countCell(count int) string {
	if count <= 0 {
		return ""
	}
	return strconv.Itoa(count)
}
