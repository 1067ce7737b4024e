package addons

import (
	"context"
	"encoding/json"
	"feed-notifier/models/constants"
	"feed-notifier/models/entities"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

func New(cinemetaURL, channelsURL string, timeout, cacheBreakPeriod time.Duration) *Impl {
	return &Impl{
		addonURLs: map[entities.FeedKind]string{
			entities.FeedKindSeries:  strings.TrimSuffix(cinemetaURL, "/"),
			entities.FeedKindChannel: strings.TrimSuffix(channelsURL, "/"),
		},
		client: &http.Client{
			Timeout: timeout,
		},
		cache: cache.New(cacheBreakPeriod, 2*cacheBreakPeriod),
	}
}

// GetMeta fetches the meta item of a feed from the addon serving its kind.
// Responses are cached per request URL, which embeds the cache-break token.
func (service *Impl) GetMeta(ctx context.Context, kind entities.FeedKind, feedID string, params MetaParams) (*MetaItem, error) {
	baseURL, found := service.addonURLs[kind]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	endpoint := metaEndpoint(baseURL, string(kind), feedID, params)
	if x, found := service.cache.Get(endpoint); found {
		return x.(*MetaItem), nil
	}

	log.Debug().
		Str(constants.LogFeedID, feedID).
		Str(constants.LogAddonURL, baseURL).
		Int64(constants.LogCacheBreak, params.CacheBreak).
		Msg("Fetching meta from addon")

	meta, err := service.fetchMeta(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	service.cache.SetDefault(endpoint, meta)
	return meta, nil
}

// metaEndpoint follows the addon protocol: /{resource}/{type}/{id}/{extra}.json
func metaEndpoint(baseURL, metaType, feedID string, params MetaParams) string {
	extra := fmt.Sprintf("%s=%d&%s=%d", lastVideosExtra, params.WindowSize, cacheBreakExtra, params.CacheBreak)
	return fmt.Sprintf("%s/%s/%s/%s/%s.json", baseURL, metaResource, metaType, url.PathEscape(feedID), extra)
}

func (service *Impl) fetchMeta(ctx context.Context, endpoint string) (*MetaItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := service.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w with status: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var result MetaResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Meta == nil {
		return nil, ErrMissingMeta
	}

	return result.Meta, nil
}
