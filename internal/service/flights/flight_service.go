package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/travelwithsue/travelapi/internal/clients/aviationstack"
	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	AvailableSeats(ctx context.Context, flightNumber string) (int, error)
	Refresh(ctx context.Context) ([]string, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// Fetcher pulls the live flight feed from the aviation data provider.
type Fetcher interface {
	Flights(ctx context.Context) ([]aviationstack.FlightRecord, error)
}

type FlightService struct {
	repo         repository.FlightRepository
	cache        Cache
	fetcher      Fetcher
	defaultSeats int
	log          *zap.Logger
}

func NewFlightService(repo repository.FlightRepository, cache Cache, fetcher Fetcher, defaultSeats int, log *zap.Logger) *FlightService {
	return &FlightService{
		repo:         repo,
		cache:        cache,
		fetcher:      fetcher,
		defaultSeats: defaultSeats,
		log:          log,
	}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("cache flights", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) AvailableSeats(ctx context.Context, flightNumber string) (int, error) {
	flight, err := s.repo.GetByNumber(ctx, flightNumber)
	if err != nil {
		return 0, err
	}
	return flight.AvailableSeats, nil
}

// Refresh upserts the provider feed into the catalog keyed on flight number
// and returns the affected flight numbers. New flights start with the
// configured seat inventory; existing counters are left alone.
func (s *FlightService) Refresh(ctx context.Context) ([]string, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: no flight data provider configured", domain.ErrInternal)
	}

	records, err := s.fetcher.Flights(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	updated := make([]string, 0, len(records))
	for _, rec := range records {
		flight := &domain.Flight{
			FlightNumber:     rec.FlightNumber,
			Airline:          rec.Airline,
			DepartureAirport: rec.DepartureAirport,
			ArrivalAirport:   rec.ArrivalAirport,
			DepartureTime:    rec.DepartureTime,
			ArrivalTime:      rec.ArrivalTime,
			Status:           rec.Status,
			TravelClass:      "Economy",
			AvailableSeats:   s.defaultSeats,
		}
		if err := s.repo.Upsert(ctx, flight); err != nil {
			s.log.Error("upsert flight", zap.String("flight_number", rec.FlightNumber), zap.Error(err))
			continue
		}
		updated = append(updated, flight.FlightNumber)
	}

	if s.cache != nil && len(updated) > 0 {
		if err := s.cache.InvalidateFlights(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("invalidate flights cache", zap.Error(err))
		}
	}
	return updated, nil
}

var _ FlightUseCase = (*FlightService)(nil)
