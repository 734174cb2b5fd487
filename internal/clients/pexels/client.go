package pexels

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/travelwithsue/travelapi/config"
)

type searchResponse struct {
	Photos []struct {
		Src struct {
			Original string `json:"original"`
			Large    string `json:"large"`
			Medium   string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

type Client struct {
	http *resty.Client
}

func NewClient(cfg config.PlacesConfig) *Client {
	return &Client{
		http: resty.New().SetBaseURL(cfg.PexelsURL).SetHeader("Authorization", cfg.PexelsKey).SetTimeout(15 * time.Second),
	}
}

// SearchImage returns the first matching stock photo URL, or "" when nothing
// matches. Provider errors are returned so callers can fall back.
func (c *Client) SearchImage(ctx context.Context, query string) (string, error) {
	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"query": query, "per_page": "1"}).
		SetResult(&body).
		Get("/v1/search")
	if err != nil {
		return "", fmt.Errorf("pexels search: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("pexels search: %s", resp.Status())
	}
	if len(body.Photos) == 0 {
		return "", nil
	}
	return body.Photos[0].Src.Large, nil
}
