package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrURLRequired        = errors.New("playlist URL is required")
	ErrInvalidPlaylistURL = errors.New("invalid playlist URL")
)

// PlaylistRequest is a validated scrape request.
type PlaylistRequest struct {
	URL        string
	PlaylistID string
}

// ParsePlaylistRequest validates rawURL. The URL must be absolute and carry a
// non-empty "list" query parameter.
func ParsePlaylistRequest(rawURL string) (PlaylistRequest, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return PlaylistRequest{}, ErrURLRequired
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return PlaylistRequest{}, fmt.Errorf("%w: %v", ErrInvalidPlaylistURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return PlaylistRequest{}, fmt.Errorf("%w: not an absolute URL", ErrInvalidPlaylistURL)
	}

	id := strings.TrimSpace(u.Query().Get("list"))
	if id == "" {
		return PlaylistRequest{}, fmt.Errorf("%w: missing list parameter", ErrInvalidPlaylistURL)
	}

	return PlaylistRequest{URL: rawURL, PlaylistID: id}, nil
}

type VideoRecord struct {
	Title     string `json:"title"`
	Views     int64  `json:"views"`
	Thumbnail string `json:"thumbnail"`
}

type GraphPoint struct {
	Name  string `json:"name"`
	Views int64  `json:"views"`
}

type PlaylistResult struct {
	VideoList []VideoRecord `json:"videoList"`
	GraphData []GraphPoint  `json:"graphData"`
}

// NewPlaylistResult derives the chart series from videos, one point per video
// in the same order.
func NewPlaylistResult(videos []VideoRecord) PlaylistResult {
	result := PlaylistResult{
		VideoList: make([]VideoRecord, len(videos)),
		GraphData: make([]GraphPoint, len(videos)),
	}
	copy(result.VideoList, videos)

	for i, v := range videos {
		result.GraphData[i] = GraphPoint{
			Name:  fmt.Sprintf("Video %d", i+1),
			Views: v.Views,
		}
	}
	return result
}

// DatasetItem is the record a crawl job writes to its scratch store.
type DatasetItem struct {
	Videos []VideoRecord `json:"videos"`
}

// CrawlRun summarises one finished job for the run history.
type CrawlRun struct {
	JobID      string
	URL        string
	PlaylistID string
	State      JobState
	VideoCount int
	ErrorKind  string
	StartedAt  time.Time
	Duration   time.Duration
}
