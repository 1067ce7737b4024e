package addons

import (
	"context"
	"encoding/json"
	"errors"
	"feed-notifier/models/entities"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	metaResource    = "meta"
	lastVideosExtra = "lastVideos"
	cacheBreakExtra = "cacheBreak"
)

var (
	ErrUnsupportedKind  = errors.New("no addon serves this feed kind")
	ErrUnexpectedStatus = errors.New("addon request failed")
	ErrMissingMeta      = errors.New("addon response has no meta")
)

// MetaParams are the extra arguments of a meta request.
type MetaParams struct {
	// WindowSize bounds how many of the most recent videos the addon returns.
	WindowSize int
	// CacheBreak changes once per refresh period so responses can be cached until it rolls over.
	CacheBreak int64
}

type MetaResponse struct {
	Meta *MetaItem `json:"meta"`
}

type MetaItem struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	ImdbID     string  `json:"imdb_id,omitempty"`
	Background string  `json:"background,omitempty"`
	Status     string  `json:"status,omitempty"`
	Videos     []Video `json:"videos"`
}

type Video struct {
	ID       string            `json:"id"`
	Title    string            `json:"title,omitempty"`
	Name     string            `json:"name,omitempty"`
	Released *time.Time        `json:"released,omitempty"`
	Season   *int              `json:"season,omitempty"`
	Episode  *int              `json:"episode,omitempty"`
	Number   *int              `json:"number,omitempty"`
	Streams  []json.RawMessage `json:"streams,omitempty"`
}

// DisplayTitle prefers the video title and falls back on its name.
func (video Video) DisplayTitle() string {
	if video.Title != "" {
		return video.Title
	}
	return video.Name
}

// EpisodeNumber prefers episode and falls back on number.
func (video Video) EpisodeNumber() *int {
	if video.Episode != nil {
		return video.Episode
	}
	return video.Number
}

type Service interface {
	GetMeta(ctx context.Context, kind entities.FeedKind, feedID string, params MetaParams) (*MetaItem, error)
}

type Impl struct {
	addonURLs map[entities.FeedKind]string
	client    *http.Client
	cache     *cache.Cache
}
