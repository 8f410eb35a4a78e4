package api

import (
	"context"
	"net/http"
	"net/url"

	"atelier/pkg/catalog"
)

// Artworks lists the catalog, optionally narrowed to one kind
func (c *Client) Artworks(ctx context.Context, kind catalog.Kind) ([]catalog.Artwork, error) {
	r := call{method: http.MethodGet, path: "/artworks"}
	if kind != "" {
		r.query = url.Values{"kind": {string(kind)}}
	}

	var data struct {
		Artworks []catalog.Artwork `json:"artworks"`
	}
	if err := c.do(ctx, r, &data); err != nil {
		return nil, err
	}
	return data.Artworks, nil
}
