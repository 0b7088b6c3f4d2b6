package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tagsync/internal/shared"
)

// 1. Query construction

type recordingSearchResponse struct {
	Recordings []Recording `json:"recordings"`
}

// escapeQuotes protects embedded double quotes in a Lucene phrase value.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// buildRecordingQuery assembles the Lucene query for a recording search.
// Empty parts contribute no clause, so an artist plus album query without a
// title is valid.
func buildRecordingQuery(artist, title, album string) string {
	var clauses []string
	if artist != "" {
		clauses = append(clauses, fmt.Sprintf(`artist:"%s"`, escapeQuotes(artist)))
	}
	if title != "" {
		clauses = append(clauses, fmt.Sprintf(`recording:"%s"`, escapeQuotes(title)))
	}
	if album != "" {
		clauses = append(clauses, fmt.Sprintf(`release:"%s"`, escapeQuotes(album)))
	}
	return strings.Join(clauses, " AND ")
}

// 2. Search

// SearchRecording looks up recordings matching artist and title, optionally
// narrowed by album. Transient failures are retried up to MaxRetries with a
// cancellable pause between attempts; permanent HTTP errors stop the loop.
// The method never reports an error: cancellation, timeout and exhaustion
// all yield an empty result.
func (c *Client) SearchRecording(ctx context.Context, artist, title, album string, cancelled func() bool) []Hit {
	query := buildRecordingQuery(artist, title, album)
	if query == "" {
		return nil
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("fmt", "json")
	fullURL := c.apiURL("recording") + "?" + params.Encode()

	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if cancelled != nil && cancelled() {
			return nil
		}

		var body []byte
		err := c.await(ctx, cancelled, func(ctx context.Context) error {
			data, err := c.get(ctx, fullURL)
			if err != nil {
				return err
			}
			body = data
			return nil
		})
		if err == nil {
			return parseRecordingHits(body)
		}
		if errors.Is(err, errCancelled) {
			return nil
		}

		var httpErr *shared.HTTPError
		if errors.As(err, &httpErr) && !shared.IsRetryableHTTPError(err) {
			shared.DebugPrint(c.config.Debug, "Recording search failed permanently: %v", err)
			break
		}
		shared.DebugPrint(c.config.Debug, "Recording search attempt %d/%d failed: %v", attempt, c.config.MaxRetries, err)
		if attempt < c.config.MaxRetries && !c.sleepCancellable(ctx, cancelled) {
			return nil
		}
	}
	return nil
}

// parseRecordingHits fans each recording out into one hit per release. A
// recording with no releases still contributes a single release-less hit so
// track-mode lookups can use its recording id.
func parseRecordingHits(body []byte) []Hit {
	var doc recordingSearchResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	var hits []Hit
	for _, recording := range doc.Recordings {
		base := Hit{
			RecordingID: recording.ID,
			Title:       recording.Title,
			Artist:      creditName(recording.ArtistCredit),
		}
		if len(recording.Releases) == 0 {
			hits = append(hits, base)
			continue
		}
		for _, release := range recording.Releases {
			hit := base
			hit.ReleaseID = release.ID
			hit.ReleaseTitle = release.Title
			hit.Country = release.Country
			hit.Year = yearOf(release.Date)
			hit.TrackCount = release.TrackCount
			if hit.TrackCount == 0 {
				for _, media := range release.Media {
					hit.TrackCount += media.TrackCount
				}
			}
			hits = append(hits, hit)
		}
	}
	return hits
}

// 3. Release detail lookups

// GetReleaseDetails fetches the full track list for a release. Any failure,
// including cancellation and timeout, degrades to a Release carrying only
// the id so callers can distinguish "nothing known" from a usable result by
// checking the track list.
func (c *Client) GetReleaseDetails(ctx context.Context, releaseID string, cancelled func() bool) Release {
	if releaseID == "" {
		return Release{}
	}
	fullURL := c.apiURL(fmt.Sprintf("release/%s", releaseID)) + "?inc=recordings+media+artist-credits+release-groups&fmt=json"

	var body []byte
	err := c.await(ctx, cancelled, func(ctx context.Context) error {
		data, err := c.get(ctx, fullURL)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		shared.DebugPrint(c.config.Debug, "Release detail fetch for %s failed: %v", releaseID, err)
		return Release{ID: releaseID}
	}

	var doc releaseResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		shared.DebugPrint(c.config.Debug, "Release detail parse for %s failed: %v", releaseID, err)
		return Release{ID: releaseID}
	}
	return flattenRelease(releaseID, doc)
}

// BestReleaseForRecording returns the id of the first release associated
// with a recording, or "" when the recording has none or the lookup fails.
func (c *Client) BestReleaseForRecording(ctx context.Context, recordingID string, cancelled func() bool) string {
	if recordingID == "" {
		return ""
	}
	fullURL := c.apiURL(fmt.Sprintf("recording/%s", recordingID)) + "?inc=releases&fmt=json"

	var body []byte
	err := c.await(ctx, cancelled, func(ctx context.Context) error {
		data, err := c.get(ctx, fullURL)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		shared.DebugPrint(c.config.Debug, "Recording release lookup for %s failed: %v", recordingID, err)
		return ""
	}

	var doc Recording
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	if len(doc.Releases) == 0 {
		return ""
	}
	return doc.Releases[0].ID
}
