package domain

import "time"

type Flight struct {
	ID               int64
	FlightNumber     string
	Airline          string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Status           string
	TravelClass      string
	PriceCents       int64
	BookingURL       *string
	AvailableSeats   int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
