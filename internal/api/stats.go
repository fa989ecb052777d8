package api

import (
	"context"

	"github.com/geocoder89/fitspark/internal/domain/stat"
)

func (c *Client) ListStats(ctx context.Context, token string) (stat.ListResponse, error) {
	var out stat.ListResponse
	if err := c.Do(ctx, Request{Route: RouteStats, Token: token}, &out); err != nil {
		return stat.ListResponse{}, err
	}
	return out, nil
}

func (c *Client) GetStat(ctx context.Context, token, id string) (stat.Stat, error) {
	var out stat.Stat
	if err := c.Do(ctx, Request{Route: RouteStat, ID: id, Token: token}, &out); err != nil {
		return stat.Stat{}, asNotFound(err, stat.ErrNotFound)
	}
	return out, nil
}
