package domain

import "time"

type Booking struct {
	ID          int64
	FlightID    int64
	Name        string
	Email       string
	Tickets     int
	Reference   string
	QRCodePath  *string
	CheckedIn   bool
	CheckedInAt *time.Time
	CreatedAt   time.Time
}

// BookingView is the public projection returned by the verification endpoint.
type BookingView struct {
	Reference        string
	Name             string
	FlightNumber     string
	Airline          string
	DepartureAirport string
	ArrivalAirport   string
	Tickets          int
	CheckedIn        bool
}
