package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelwithsue/travelapi/internal/domain"
)

type RestaurantRepository interface {
	List(ctx context.Context) ([]domain.Restaurant, error)
	GetByID(ctx context.Context, id int64) (*domain.Restaurant, error)
	UpsertByOSMID(ctx context.Context, restaurant *domain.Restaurant) error
	CreateReservation(ctx context.Context, reservation *domain.Reservation) error
	ReservationsByUser(ctx context.Context, userID int64) ([]domain.ReservationView, error)
}

type PGRestaurantRepository struct {
	db *pgxpool.Pool
}

func NewRestaurantRepository(db *pgxpool.Pool) RestaurantRepository {
	return &PGRestaurantRepository{db: db}
}

const restaurantColumns = `id, osm_id, name, address, latitude, longitude, cuisine, phone, website, image_url, avg_price_cents, has_delivery, created_at, updated_at`

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var res domain.Restaurant
	if err := row.Scan(&res.ID, &res.OSMID, &res.Name, &res.Address, &res.Latitude, &res.Longitude, &res.Cuisine, &res.Phone, &res.Website, &res.ImageURL, &res.AvgPriceCents, &res.HasDelivery, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRestaurantRepository) List(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.db.Query(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := make([]domain.Restaurant, 0)
	for rows.Next() {
		res, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *res)
	}
	return restaurants, rows.Err()
}

func (r *PGRestaurantRepository) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	return scanRestaurant(r.db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id=$1`, id))
}

func (r *PGRestaurantRepository) UpsertByOSMID(ctx context.Context, restaurant *domain.Restaurant) error {
	return r.db.QueryRow(ctx, `INSERT INTO restaurants (osm_id, name, address, latitude, longitude, cuisine, phone, website, image_url, avg_price_cents, has_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (osm_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			cuisine = EXCLUDED.cuisine,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			image_url = COALESCE(restaurants.image_url, EXCLUDED.image_url),
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		restaurant.OSMID, restaurant.Name, restaurant.Address, restaurant.Latitude, restaurant.Longitude, restaurant.Cuisine, restaurant.Phone, restaurant.Website, restaurant.ImageURL, restaurant.AvgPriceCents, restaurant.HasDelivery).
		Scan(&restaurant.ID, &restaurant.CreatedAt, &restaurant.UpdatedAt)
}

func (r *PGRestaurantRepository) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	if err := r.db.QueryRow(ctx, `INSERT INTO reservations (restaurant_id, user_id, name, email, date_time, guests, special_request)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		reservation.RestaurantID, reservation.UserID, reservation.Name, reservation.Email, reservation.DateTime, reservation.Guests, reservation.SpecialRequest).
		Scan(&reservation.ID, &reservation.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PGRestaurantRepository) ReservationsByUser(ctx context.Context, userID int64) ([]domain.ReservationView, error) {
	rows, err := r.db.Query(ctx, `SELECT rv.id, rs.name, rv.date_time, rv.guests
		FROM reservations rv
		JOIN restaurants rs ON rs.id = rv.restaurant_id
		WHERE rv.user_id=$1
		ORDER BY rv.date_time`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]domain.ReservationView, 0)
	for rows.Next() {
		var v domain.ReservationView
		if err := rows.Scan(&v.ID, &v.RestaurantName, &v.DateTime, &v.Guests); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

var _ RestaurantRepository = (*PGRestaurantRepository)(nil)
