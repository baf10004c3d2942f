package tmdb

import (
	"context"
	"time"

	"flixlist/internal/catalog"
	"flixlist/internal/normalize"
	"flixlist/internal/retry"
)

// Oracle answers availability and release date questions for the pipeline.
type Oracle struct {
	client     *Client
	region     string
	providerID int64
	policy     retry.Policy
}

// NewOracle binds client to a region and a flatrate provider id.
func NewOracle(client *Client, region string, providerID int64, policy retry.Policy) *Oracle {
	return &Oracle{client: client, region: region, providerID: providerID, policy: policy}
}

// Available reports whether the title is in the region's flatrate list for
// the configured provider.
func (o *Oracle) Available(ctx context.Context, mediaType catalog.MediaType, id int64) (bool, error) {
	providers, err := retry.Do(ctx, o.policy, func(ctx context.Context) (*WatchProviders, error) {
		return o.client.GetWatchProviders(ctx, mediaType, id)
	})
	if err != nil {
		return false, err
	}
	return providers.Streams(o.region, o.providerID), nil
}

// ReleaseDate looks up the release or first air date. The bool is false when
// TMDB has no parseable date.
func (o *Oracle) ReleaseDate(ctx context.Context, mediaType catalog.MediaType, id int64) (time.Time, bool, error) {
	details, err := retry.Do(ctx, o.policy, func(ctx context.Context) (*Details, error) {
		return o.client.GetDetails(ctx, mediaType, id)
	})
	if err != nil {
		return time.Time{}, false, err
	}
	date, ok := normalize.Date(details.Released())
	return date, ok, nil
}

// Streams reports whether providerID offers the title as flatrate in region.
func (w *WatchProviders) Streams(region string, providerID int64) bool {
	if w == nil {
		return false
	}
	offers, ok := w.Results[region]
	if !ok {
		return false
	}
	for _, p := range offers.Flatrate {
		if p.ProviderID == providerID {
			return true
		}
	}
	return false
}
