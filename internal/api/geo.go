package api

import (
	"context"
	"net/url"

	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/pkg/pagination"
)

// ListCountries fetches shipping destination countries.
func (c *Client) ListCountries(ctx context.Context) (*pagination.Page[domain.Country], error) {
	return get[pagination.Page[domain.Country]](ctx, c, "/countries/", nil)
}

// ListCounties fetches Kenyan counties for delivery selection.
func (c *Client) ListCounties(ctx context.Context) (*pagination.Page[domain.County], error) {
	return get[pagination.Page[domain.County]](ctx, c, "/counties/", nil)
}

// ListPickupStations fetches pickup stations, optionally filtered by county slug.
func (c *Client) ListPickupStations(ctx context.Context, countySlug string) (*pagination.Page[domain.PickupStation], error) {
	var q url.Values
	if countySlug != "" {
		q = url.Values{"county": []string{countySlug}}
	}
	return get[pagination.Page[domain.PickupStation]](ctx, c, "/pickup-stations/", q)
}
