package domain

import "time"

// Hotels, restaurants and attractions are read-through imports from
// OpenStreetMap enriched with Pexels photos. They never touch the booking flow.

type Hotel struct {
	ID                 int64
	OSMID              *string
	Name               string
	Description        string
	Address            string
	Latitude           *float64
	Longitude          *float64
	HasWifi            bool
	HasParking         bool
	PricePerNightCents int64
	Rating             *float64
	ImageURL           *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HotelFilter narrows and orders hotel listings.
type HotelFilter struct {
	HasWifi    *bool
	HasParking *bool
	Search     string
	OrderBy    string // "price_per_night" or "rating"
}

type Restaurant struct {
	ID            int64
	OSMID         string
	Name          string
	Address       string
	Latitude      float64
	Longitude     float64
	Cuisine       string
	Phone         string
	Website       string
	ImageURL      *string
	AvgPriceCents int64
	HasDelivery   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Reservation struct {
	ID             int64
	RestaurantID   int64
	UserID         *int64
	Name           string
	Email          string
	DateTime       time.Time
	Guests         int
	SpecialRequest string
	CreatedAt      time.Time
}

// ReservationView joins in the restaurant name for profile listings.
type ReservationView struct {
	ID             int64
	RestaurantName string
	DateTime       time.Time
	Guests         int
}

type Attraction struct {
	ID        int64
	OSMID     int64
	Name      string
	Latitude  float64
	Longitude float64
	Address   string
	Category  string
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
