package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelwithsue/travelapi/internal/domain"
)

type BookingRepository interface {
	// Create decrements the flight's seat counter and inserts the booking as
	// one transaction. Returns domain.ErrConflict when the flight has fewer
	// seats than requested and domain.ErrDuplicateReference on a reference
	// collision; neither leaves a partial write behind.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	GetView(ctx context.Context, reference string) (*domain.BookingView, error)
	AttachQRCode(ctx context.Context, id int64, path string) error
	// CheckIn marks the booking checked in. Marking an already checked-in
	// booking is a no-op; the stored timestamp is preserved.
	CheckIn(ctx context.Context, reference string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, flight_id, name, email, tickets, reference, qr_code_path, checked_in, checked_in_at, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.Name, &b.Email, &b.Tickets, &b.Reference, &b.QRCodePath, &b.CheckedIn, &b.CheckedInAt, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Conditional decrement serializes concurrent bookings per flight: the
	// row matches only while enough seats remain, so the combined check and
	// write cannot oversell.
	cmd, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`, booking.FlightID, booking.Tickets)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (flight_id, name, email, tickets, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`, booking.FlightID, booking.Name, booking.Email, booking.Tickets, booking.Reference).
		Scan(&booking.ID, &booking.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateReference
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference))
}

func (r *PGBookingRepository) GetView(ctx context.Context, reference string) (*domain.BookingView, error) {
	row := r.db.QueryRow(ctx, `SELECT b.reference, b.name, f.flight_number, f.airline, f.departure_airport, f.arrival_airport, b.tickets, b.checked_in
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		WHERE b.reference=$1`, reference)
	var v domain.BookingView
	if err := row.Scan(&v.Reference, &v.Name, &v.FlightNumber, &v.Airline, &v.DepartureAirport, &v.ArrivalAirport, &v.Tickets, &v.CheckedIn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGBookingRepository) AttachQRCode(ctx context.Context, id int64, path string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET qr_code_path=$2 WHERE id=$1 AND qr_code_path IS NULL`, id, path)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *PGBookingRepository) CheckIn(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET checked_in=true, checked_in_at=now() WHERE reference=$1 AND checked_in=false RETURNING `+bookingColumns, reference))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	// Either the reference is unknown or the booking was already checked in.
	return r.GetByReference(ctx, reference)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
