package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelwithsue/travelapi/internal/domain"
)

type HotelRepository interface {
	List(ctx context.Context, filter domain.HotelFilter) ([]domain.Hotel, error)
	GetByID(ctx context.Context, id int64) (*domain.Hotel, error)
	// UpsertByOSMID inserts or refreshes a hotel imported from OpenStreetMap.
	UpsertByOSMID(ctx context.Context, hotel *domain.Hotel) error
}

type PGHotelRepository struct {
	db *pgxpool.Pool
}

func NewHotelRepository(db *pgxpool.Pool) HotelRepository {
	return &PGHotelRepository{db: db}
}

const hotelColumns = `id, osm_id, name, description, address, latitude, longitude, has_wifi, has_parking, price_per_night_cents, rating, image_url, created_at, updated_at`

func scanHotel(row pgx.Row) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := row.Scan(&h.ID, &h.OSMID, &h.Name, &h.Description, &h.Address, &h.Latitude, &h.Longitude, &h.HasWifi, &h.HasParking, &h.PricePerNightCents, &h.Rating, &h.ImageURL, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *PGHotelRepository) List(ctx context.Context, filter domain.HotelFilter) ([]domain.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE 1=1`
	args := make([]interface{}, 0, 3)

	if filter.HasWifi != nil {
		args = append(args, *filter.HasWifi)
		query += fmt.Sprintf(" AND has_wifi=$%d", len(args))
	}
	if filter.HasParking != nil {
		args = append(args, *filter.HasParking)
		query += fmt.Sprintf(" AND has_parking=$%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR address ILIKE $%d)", len(args), len(args))
	}

	switch filter.OrderBy {
	case "price_per_night":
		query += " ORDER BY price_per_night_cents"
	case "rating":
		query += " ORDER BY rating DESC NULLS LAST"
	default:
		query += " ORDER BY name"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hotels := make([]domain.Hotel, 0)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, *h)
	}
	return hotels, rows.Err()
}

func (r *PGHotelRepository) GetByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	return scanHotel(r.db.QueryRow(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id=$1`, id))
}

func (r *PGHotelRepository) UpsertByOSMID(ctx context.Context, hotel *domain.Hotel) error {
	return r.db.QueryRow(ctx, `INSERT INTO hotels (osm_id, name, description, address, latitude, longitude, has_wifi, has_parking, price_per_night_cents, rating, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (osm_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			image_url = COALESCE(EXCLUDED.image_url, hotels.image_url),
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		hotel.OSMID, hotel.Name, hotel.Description, hotel.Address, hotel.Latitude, hotel.Longitude, hotel.HasWifi, hotel.HasParking, hotel.PricePerNightCents, hotel.Rating, hotel.ImageURL).
		Scan(&hotel.ID, &hotel.CreatedAt, &hotel.UpdatedAt)
}

var _ HotelRepository = (*PGHotelRepository)(nil)
