package places

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/travelwithsue/travelapi/internal/clients/osm"
	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/repository"
	"go.uber.org/zap"
)

// defaultRestaurantImage is served when the photo provider has no match.
const defaultRestaurantImage = "https://images.pexels.com/photos/6267/menu-restaurant-vintage-table.jpg"

type PlaceUseCase interface {
	ListHotels(ctx context.Context, filter domain.HotelFilter) ([]domain.Hotel, error)
	GetHotel(ctx context.Context, id int64) (*domain.Hotel, error)
	SearchHotelLocations(ctx context.Context, query string) ([]domain.Hotel, error)
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*domain.Restaurant, error)
	ImportRestaurants(ctx context.Context, location string) ([]domain.Restaurant, error)
	CreateReservation(ctx context.Context, input ReservationInput) (*domain.Reservation, error)
	ListAttractions(ctx context.Context, category string) ([]domain.Attraction, error)
	GetAttraction(ctx context.Context, id int64) (*domain.Attraction, error)
	RefreshAttractions(ctx context.Context) ([]domain.Attraction, error)
}

// Geocoder is the OpenStreetMap surface the importers need.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]osm.Place, error)
	Geocode(ctx context.Context, location string) (lat, lon float64, err error)
	Nodes(ctx context.Context, tag, value string, lat, lon float64, radiusMeters int) ([]osm.POI, error)
}

// ImageSource finds a stock photo URL for a search term.
type ImageSource interface {
	SearchImage(ctx context.Context, query string) (string, error)
}

// LookupCache memoizes external geocoding responses.
type LookupCache interface {
	GetLookup(ctx context.Context, key string) ([]byte, error)
	SetLookup(ctx context.Context, key string, payload []byte) error
}

type ReservationInput struct {
	RestaurantID   int64     `json:"restaurant_id"`
	UserID         *int64    `json:"-"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	DateTime       time.Time `json:"date_time"`
	Guests         int       `json:"guests"`
	SpecialRequest string    `json:"special_request"`
}

type PlaceService struct {
	hotels       repository.HotelRepository
	restaurants  repository.RestaurantRepository
	attractions  repository.AttractionRepository
	geo          Geocoder
	images       ImageSource
	lookups      LookupCache
	defaultLat   float64
	defaultLon   float64
	radiusMeters int
	log          *zap.Logger
}

func NewPlaceService(
	hotels repository.HotelRepository,
	restaurants repository.RestaurantRepository,
	attractions repository.AttractionRepository,
	geo Geocoder,
	images ImageSource,
	lookups LookupCache,
	defaultLat, defaultLon float64,
	radiusMeters int,
	log *zap.Logger,
) *PlaceService {
	return &PlaceService{
		hotels:       hotels,
		restaurants:  restaurants,
		attractions:  attractions,
		geo:          geo,
		images:       images,
		lookups:      lookups,
		defaultLat:   defaultLat,
		defaultLon:   defaultLon,
		radiusMeters: radiusMeters,
		log:          log,
	}
}

func (s *PlaceService) ListHotels(ctx context.Context, filter domain.HotelFilter) ([]domain.Hotel, error) {
	return s.hotels.List(ctx, filter)
}

func (s *PlaceService) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	return s.hotels.GetByID(ctx, id)
}

// SearchHotelLocations searches OpenStreetMap for hotels around a location,
// enriches each hit with a stock photo and upserts the results.
func (s *PlaceService) SearchHotelLocations(ctx context.Context, query string) ([]domain.Hotel, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("search validation failed", map[string]string{
			"query": "query parameter is required",
		})
	}

	locations, err := s.geo.Search(ctx, "hotels in "+query, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	hotels := make([]domain.Hotel, 0, len(locations))
	for _, loc := range locations {
		hotel := domain.Hotel{
			OSMID:     &loc.OSMID,
			Name:      loc.DisplayName,
			Address:   loc.DisplayName,
			Latitude:  &loc.Latitude,
			Longitude: &loc.Longitude,
		}
		if url := s.findImage(ctx, "hotel "+loc.DisplayName); url != "" {
			hotel.ImageURL = &url
		}
		if err := s.hotels.UpsertByOSMID(ctx, &hotel); err != nil {
			s.log.Error("upsert hotel", zap.String("osm_id", loc.OSMID), zap.Error(err))
			continue
		}
		hotels = append(hotels, hotel)
	}
	return hotels, nil
}

func (s *PlaceService) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	return s.restaurants.List(ctx)
}

func (s *PlaceService) GetRestaurant(ctx context.Context, id int64) (*domain.Restaurant, error) {
	return s.restaurants.GetByID(ctx, id)
}

// ImportRestaurants geocodes the location, pulls restaurant nodes around it
// from Overpass and upserts them keyed on OSM id.
func (s *PlaceService) ImportRestaurants(ctx context.Context, location string) ([]domain.Restaurant, error) {
	if strings.TrimSpace(location) == "" {
		return nil, domain.NewValidationError("import validation failed", map[string]string{
			"location": "location is required",
		})
	}

	lat, lon, err := s.geocodeCached(ctx, location)
	if err != nil {
		return nil, domain.NewValidationError("import validation failed", map[string]string{
			"location": "could not geocode the location",
		})
	}

	nodes, err := s.geo.Nodes(ctx, "amenity", "restaurant", lat, lon, s.radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	restaurants := make([]domain.Restaurant, 0, len(nodes))
	for _, node := range nodes {
		cuisine := node.Tags["cuisine"]
		if cuisine == "" {
			cuisine = "Various"
		}
		restaurant := domain.Restaurant{
			OSMID:     fmt.Sprintf("%d", node.OSMID),
			Name:      tagOr(node.Tags, "name", "Unknown Restaurant"),
			Address:   addressFromTags(node.Tags),
			Latitude:  node.Latitude,
			Longitude: node.Longitude,
			Cuisine:   cuisine,
			Phone:     node.Tags["phone"],
			Website:   node.Tags["website"],
		}
		image := s.findImage(ctx, cuisine+" restaurant food")
		if image == "" {
			image = defaultRestaurantImage
		}
		restaurant.ImageURL = &image
		if err := s.restaurants.UpsertByOSMID(ctx, &restaurant); err != nil {
			s.log.Error("upsert restaurant", zap.String("osm_id", restaurant.OSMID), zap.Error(err))
			continue
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, nil
}

func (s *PlaceService) CreateReservation(ctx context.Context, input ReservationInput) (*domain.Reservation, error) {
	fields := make(map[string]string)
	if input.RestaurantID <= 0 {
		fields["restaurant_id"] = "restaurant_id is required"
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if input.DateTime.IsZero() {
		fields["date_time"] = "date_time is required"
	}
	if input.Guests <= 0 {
		fields["guests"] = "guests must be a positive integer"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("reservation validation failed", fields)
	}

	reservation := &domain.Reservation{
		RestaurantID:   input.RestaurantID,
		UserID:         input.UserID,
		Name:           input.Name,
		Email:          input.Email,
		DateTime:       input.DateTime,
		Guests:         input.Guests,
		SpecialRequest: input.SpecialRequest,
	}
	if err := s.restaurants.CreateReservation(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *PlaceService) ListAttractions(ctx context.Context, category string) ([]domain.Attraction, error) {
	return s.attractions.List(ctx, category)
}

func (s *PlaceService) GetAttraction(ctx context.Context, id int64) (*domain.Attraction, error) {
	return s.attractions.GetByID(ctx, id)
}

// RefreshAttractions imports tourism attractions around the configured point.
func (s *PlaceService) RefreshAttractions(ctx context.Context) ([]domain.Attraction, error) {
	nodes, err := s.geo.Nodes(ctx, "tourism", "attraction", s.defaultLat, s.defaultLon, s.radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	attractions := make([]domain.Attraction, 0, len(nodes))
	for _, node := range nodes {
		attraction := domain.Attraction{
			OSMID:     node.OSMID,
			Name:      tagOr(node.Tags, "name", "Unknown Attraction"),
			Latitude:  node.Latitude,
			Longitude: node.Longitude,
			Category:  tagOr(node.Tags, "tourism", "attraction"),
		}
		if url := s.findImage(ctx, attraction.Name); url != "" {
			attraction.ImageURL = &url
		}
		if err := s.attractions.UpsertByOSMID(ctx, &attraction); err != nil {
			s.log.Error("upsert attraction", zap.Int64("osm_id", node.OSMID), zap.Error(err))
			continue
		}
		attractions = append(attractions, attraction)
	}
	return attractions, nil
}

type geocodeResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (s *PlaceService) geocodeCached(ctx context.Context, location string) (float64, float64, error) {
	key := "geocode:" + strings.ToLower(location)
	if s.lookups != nil {
		if data, err := s.lookups.GetLookup(ctx, key); err == nil && data != nil {
			var res geocodeResult
			if json.Unmarshal(data, &res) == nil {
				return res.Lat, res.Lon, nil
			}
		}
	}

	lat, lon, err := s.geo.Geocode(ctx, location)
	if err != nil {
		return 0, 0, err
	}

	if s.lookups != nil {
		if data, err := json.Marshal(geocodeResult{Lat: lat, Lon: lon}); err == nil {
			if err := s.lookups.SetLookup(ctx, key, data); err != nil {
				s.log.Warn("cache geocode result", zap.String("location", location), zap.Error(err))
			}
		}
	}
	return lat, lon, nil
}

// findImage is best effort; enrichment never fails an import.
func (s *PlaceService) findImage(ctx context.Context, query string) string {
	if s.images == nil {
		return ""
	}
	url, err := s.images.SearchImage(ctx, query)
	if err != nil {
		s.log.Warn("image search", zap.String("query", query), zap.Error(err))
		return ""
	}
	return url
}

func tagOr(tags map[string]string, key, fallback string) string {
	if v := tags[key]; v != "" {
		return v
	}
	return fallback
}

func addressFromTags(tags map[string]string) string {
	if full := tags["addr:full"]; full != "" {
		return full
	}
	addr := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	if addr == "" {
		return "Address not available"
	}
	return addr
}

var _ PlaceUseCase = (*PlaceService)(nil)
