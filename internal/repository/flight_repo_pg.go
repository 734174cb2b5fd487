package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelwithsue/travelapi/internal/domain"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	// Upsert inserts or updates a flight keyed on flight_number. The seat
	// counter is only set on insert; it is never overwritten by a refresh.
	Upsert(ctx context.Context, flight *domain.Flight) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, airline, departure_airport, arrival_airport, departure_time, arrival_time, status, travel_class, price_cents, booking_url, available_seats, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureAirport, &f.ArrivalAirport, &f.DepartureTime, &f.ArrivalTime, &f.Status, &f.TravelClass, &f.PriceCents, &f.BookingURL, &f.AvailableSeats, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	return scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number=$1`, flightNumber))
}

func (r *PGFlightRepository) Upsert(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline, departure_airport, arrival_airport, departure_time, arrival_time, status, travel_class, price_cents, booking_url, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (flight_number) DO UPDATE SET
			airline = EXCLUDED.airline,
			departure_airport = EXCLUDED.departure_airport,
			arrival_airport = EXCLUDED.arrival_airport,
			departure_time = EXCLUDED.departure_time,
			arrival_time = EXCLUDED.arrival_time,
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING id, available_seats, created_at, updated_at`,
		flight.FlightNumber, flight.Airline, flight.DepartureAirport, flight.ArrivalAirport, flight.DepartureTime, flight.ArrivalTime, flight.Status, flight.TravelClass, flight.PriceCents, flight.BookingURL, flight.AvailableSeats).
		Scan(&flight.ID, &flight.AvailableSeats, &flight.CreatedAt, &flight.UpdatedAt)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
