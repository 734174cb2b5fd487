package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelwithsue/travelapi/internal/domain"
)

type AttractionRepository interface {
	List(ctx context.Context, category string) ([]domain.Attraction, error)
	GetByID(ctx context.Context, id int64) (*domain.Attraction, error)
	UpsertByOSMID(ctx context.Context, attraction *domain.Attraction) error
}

type PGAttractionRepository struct {
	db *pgxpool.Pool
}

func NewAttractionRepository(db *pgxpool.Pool) AttractionRepository {
	return &PGAttractionRepository{db: db}
}

const attractionColumns = `id, osm_id, name, latitude, longitude, address, category, image_url, created_at, updated_at`

func scanAttraction(row pgx.Row) (*domain.Attraction, error) {
	var a domain.Attraction
	if err := row.Scan(&a.ID, &a.OSMID, &a.Name, &a.Latitude, &a.Longitude, &a.Address, &a.Category, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGAttractionRepository) List(ctx context.Context, category string) ([]domain.Attraction, error) {
	query := `SELECT ` + attractionColumns + ` FROM attractions`
	args := make([]interface{}, 0, 1)
	if category != "" {
		query += ` WHERE category=$1`
		args = append(args, category)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attractions := make([]domain.Attraction, 0)
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, err
		}
		attractions = append(attractions, *a)
	}
	return attractions, rows.Err()
}

func (r *PGAttractionRepository) GetByID(ctx context.Context, id int64) (*domain.Attraction, error) {
	return scanAttraction(r.db.QueryRow(ctx, `SELECT `+attractionColumns+` FROM attractions WHERE id=$1`, id))
}

func (r *PGAttractionRepository) UpsertByOSMID(ctx context.Context, attraction *domain.Attraction) error {
	return r.db.QueryRow(ctx, `INSERT INTO attractions (osm_id, name, latitude, longitude, address, category, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (osm_id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			category = EXCLUDED.category,
			image_url = COALESCE(EXCLUDED.image_url, attractions.image_url),
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		attraction.OSMID, attraction.Name, attraction.Latitude, attraction.Longitude, attraction.Address, attraction.Category, attraction.ImageURL).
		Scan(&attraction.ID, &attraction.CreatedAt, &attraction.UpdatedAt)
}

var _ AttractionRepository = (*PGAttractionRepository)(nil)
