package osm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/travelwithsue/travelapi/config"
)

// userAgent is required by Nominatim's usage policy.
const userAgent = "travelapi/1.0 (contact@travelwithsue.com)"

// Place is a Nominatim search hit.
type Place struct {
	OSMID       string
	DisplayName string
	Latitude    float64
	Longitude   float64
}

// POI is an Overpass node (restaurant, attraction) with its raw tags.
type POI struct {
	OSMID     int64
	Latitude  float64
	Longitude float64
	Tags      map[string]string
}

type Client struct {
	nominatim *resty.Client
	overpass  *resty.Client
}

func NewClient(cfg config.PlacesConfig) *Client {
	return &Client{
		nominatim: resty.New().SetBaseURL(cfg.NominatimURL).SetHeader("User-Agent", userAgent).SetTimeout(15 * time.Second),
		overpass:  resty.New().SetBaseURL(cfg.OverpassURL).SetHeader("User-Agent", userAgent).SetTimeout(30 * time.Second),
	}
}

type nominatimHit struct {
	OSMID       int64  `json:"osm_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search runs a free-text Nominatim query, e.g. "hotels in Nairobi".
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	var hits []nominatimHit
	resp, err := c.nominatim.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  strconv.Itoa(limit),
		}).
		SetResult(&hits).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nominatim search: %s", resp.Status())
	}

	places := make([]Place, 0, len(hits))
	for _, h := range hits {
		lat, errLat := strconv.ParseFloat(h.Lat, 64)
		lon, errLon := strconv.ParseFloat(h.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		places = append(places, Place{
			OSMID:       strconv.FormatInt(h.OSMID, 10),
			DisplayName: h.DisplayName,
			Latitude:    lat,
			Longitude:   lon,
		})
	}
	return places, nil
}

// Geocode resolves a location name to coordinates via the first search hit.
func (c *Client) Geocode(ctx context.Context, location string) (lat, lon float64, err error) {
	places, err := c.Search(ctx, location, 1)
	if err != nil {
		return 0, 0, err
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("could not geocode %q", location)
	}
	return places[0].Latitude, places[0].Longitude, nil
}

type overpassResponse struct {
	Elements []struct {
		Type string            `json:"type"`
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nodes queries Overpass for amenity/tourism nodes around a point.
func (c *Client) Nodes(ctx context.Context, tag, value string, lat, lon float64, radiusMeters int) ([]POI, error) {
	query := fmt.Sprintf(`[out:json];node["%s"="%s"](around:%d,%f,%f);out body;`, tag, value, radiusMeters, lat, lon)

	var body overpassResponse
	resp, err := c.overpass.R().
		SetContext(ctx).
		SetFormData(map[string]string{"data": query}).
		SetResult(&body).
		Post("/api/interpreter")
	if err != nil {
		return nil, fmt.Errorf("overpass query: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("overpass query: %s", resp.Status())
	}

	pois := make([]POI, 0, len(body.Elements))
	for _, el := range body.Elements {
		if el.Type != "node" {
			continue
		}
		pois = append(pois, POI{OSMID: el.ID, Latitude: el.Lat, Longitude: el.Lon, Tags: el.Tags})
	}
	return pois, nil
}
