package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"tagsync/internal/core/tags"
	"tagsync/internal/shared"
)

// 1. Cover archive endpoints

func (c *Client) coverURL(entity, entityID string, size uint) string {
	base := strings.TrimSuffix(c.config.CoverURL, "/")
	if size > 0 {
		return fmt.Sprintf("%s/%s/%s/front-%d", base, entity, entityID, size)
	}
	return fmt.Sprintf("%s/%s/%s/front", base, entity, entityID)
}

// FetchCover downloads the front cover for a release or release group.
// Size variants exist only for releases, so sizeHint is ignored for
// release groups. A 404 on a sized variant is retried once without the
// size suffix, since many archive entries carry only the original upload.
// Cancellation returns (nil, nil); a missing or empty image reports
// ErrNotFound.
func (c *Client) FetchCover(ctx context.Context, entityID string, sizeHint uint, isReleaseGroup bool, cancelled func() bool) (*tags.Artwork, error) {
	if entityID == "" {
		return nil, shared.ErrNotFound
	}
	entity := "release"
	if isReleaseGroup {
		entity = "release-group"
	}

	size := sizeHint
	if isReleaseGroup {
		size = 0
	}

	data, contentType, err := c.fetchImage(ctx, c.coverURL(entity, entityID, size), cancelled)
	if err != nil {
		var httpErr *shared.HTTPError
		if size > 0 && errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			data, contentType, err = c.fetchImage(ctx, c.coverURL(entity, entityID, 0), cancelled)
		}
	}
	if err != nil {
		if errors.Is(err, errCancelled) {
			return nil, nil
		}
		var httpErr *shared.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, shared.ErrNotFound
	}

	mime := tags.SniffMIME(data)
	if mime == "" {
		mime, _, _ = strings.Cut(contentType, ";")
		mime = strings.TrimSpace(mime)
	}
	return &tags.Artwork{Data: data, MIME: mime}, nil
}

// 2. Image transport

// fetchImage runs one bounded-wait image download.
func (c *Client) fetchImage(ctx context.Context, fullURL string, cancelled func() bool) ([]byte, string, error) {
	var data []byte
	var contentType string
	err := c.await(ctx, cancelled, func(ctx context.Context) error {
		body, ct, err := c.getImage(ctx, fullURL)
		if err != nil {
			return err
		}
		data = body
		contentType = ct
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// getImage downloads an image, following 301/302/307 redirects by hand so
// the hop count stays bounded. The rate limiter is charged once per
// download, not per hop; the archive's redirect targets are static hosts.
func (c *Client) getImage(ctx context.Context, fullURL string) ([]byte, string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limiter: %w", err)
	}

	target := fullURL
	for hop := 0; hop <= maxRedirectHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent())

		shared.DebugPrint(c.config.Debug, "GET %s", target)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return nil, "", &shared.HTTPError{
					StatusCode: http.StatusRequestTimeout,
					Status:     "Request Timeout",
					Message:    err.Error(),
				}
			}
			return nil, "", err
		}

		switch resp.StatusCode {
		case http.StatusMovedPermanently, http.StatusFound, http.StatusTemporaryRedirect:
			location := resp.Header.Get("Location")
			resp.Body.Close()
			if location == "" {
				return nil, "", fmt.Errorf("redirect from %s carried no location", target)
			}
			next, err := resp.Request.URL.Parse(location)
			if err != nil {
				return nil, "", fmt.Errorf("bad redirect location %q: %w", location, err)
			}
			target = next.String()
			continue
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, "", fmt.Errorf("failed to read image body: %w", err)
			}
			return body, resp.Header.Get("Content-Type"), nil
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			resp.Body.Close()
			return nil, "", &shared.HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Message:    string(body),
			}
		}
	}
	return nil, "", fmt.Errorf("image download exceeded %d redirects", maxRedirectHops)
}
