package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/kafka"
	"github.com/travelwithsue/travelapi/internal/qr"
	"github.com/travelwithsue/travelapi/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	SubmitBooking(ctx context.Context, input SubmitBookingInput) (*domain.Booking, error)
	VerifyBooking(ctx context.Context, reference string) (*domain.BookingView, error)
	CheckIn(ctx context.Context, reference string) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
}

// CodeGenerator renders the scannable booking artifact and returns its path.
type CodeGenerator interface {
	Generate(payload, reference string) (string, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// referenceAlphabet avoids ambiguous characters (0/O, 1/I/L).
const (
	referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	referenceLength   = 8
)

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	codes              CodeGenerator
	producer           Producer
	notificationsTopic string
	referenceAttempts  int
	lookupAttempts     int
	lookupBackoff      time.Duration
	log                *zap.Logger
}

type SubmitBookingInput struct {
	FlightID int64  `json:"flight_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Tickets  int    `json:"tickets"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithReferenceAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.referenceAttempts = n
		}
	}
}

func WithLookupRetry(attempts int, backoff time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if attempts > 0 {
			s.lookupAttempts = attempts
		}
		s.lookupBackoff = backoff
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	codes CodeGenerator,
	producer Producer,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:          bookings,
		flights:           flights,
		codes:             codes,
		producer:          producer,
		referenceAttempts: 5,
		lookupAttempts:    3,
		lookupBackoff:     100 * time.Millisecond,
		log:               log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// SubmitBooking validates the request, atomically decrements the flight's
// seat counter together with the booking insert, then attaches the QR
// artifact and emits a notification. The artifact and the notification are
// best effort once the booking is committed.
func (s *BookingService) SubmitBooking(ctx context.Context, input SubmitBookingInput) (*domain.Booking, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("flight %d: %w", input.FlightID, domain.ErrNotFound)
		}
		return nil, err
	}
	if flight.AvailableSeats < input.Tickets {
		return nil, fmt.Errorf("no available seats: %w", domain.ErrConflict)
	}

	booking := &domain.Booking{
		FlightID: flight.ID,
		Name:     input.Name,
		Email:    input.Email,
		Tickets:  input.Tickets,
	}

	// The precheck above is advisory only; the repository's conditional
	// decrement is what actually guards the seat counter under concurrency.
	for attempt := 0; ; attempt++ {
		if attempt == s.referenceAttempts {
			return nil, fmt.Errorf("booking reference generation exhausted after %d attempts: %w", s.referenceAttempts, domain.ErrConflict)
		}
		booking.Reference = newReference()
		err = s.bookings.Create(ctx, booking)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateReference) {
			s.log.Warn("booking reference collision, regenerating", zap.String("reference", booking.Reference))
			continue
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("no available seats: %w", domain.ErrConflict)
		}
		return nil, err
	}

	s.attachQRCode(ctx, booking, flight)
	s.notify(ctx, booking, flight)

	return booking, nil
}

func (s *BookingService) attachQRCode(ctx context.Context, booking *domain.Booking, flight *domain.Flight) {
	if s.codes == nil {
		return
	}
	payload := qr.Payload(booking.Reference, flight.FlightNumber, booking.Name, booking.Tickets)
	path, err := s.codes.Generate(payload, booking.Reference)
	if err != nil {
		s.log.Error("generate qr code", zap.String("reference", booking.Reference), zap.Error(err))
		return
	}
	if err := s.bookings.AttachQRCode(ctx, booking.ID, path); err != nil {
		s.log.Error("attach qr code", zap.String("reference", booking.Reference), zap.Error(err))
		return
	}
	booking.QRCodePath = &path
}

// notify publishes the confirmation event. Failure never rolls the booking
// back; the seats are already committed.
func (s *BookingService) notify(ctx context.Context, booking *domain.Booking, flight *domain.Flight) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         "booking_confirmed",
		Reference:    booking.Reference,
		FlightNumber: flight.FlightNumber,
		Airline:      flight.Airline,
		Name:         booking.Name,
		Email:        booking.Email,
		Tickets:      booking.Tickets,
		BookedAt:     booking.CreatedAt,
	}
	if booking.QRCodePath != nil {
		event.QRCodePath = *booking.QRCodePath
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
		s.log.Error("publish booking notification", zap.String("reference", booking.Reference), zap.Error(err))
	}
}

// VerifyBooking resolves a reference to its public projection. An unknown
// reference is a domain.ErrNotFound signal, not a server error.
func (s *BookingService) VerifyBooking(ctx context.Context, reference string) (*domain.BookingView, error) {
	var view *domain.BookingView
	err := s.withRetry(ctx, func() error {
		var err error
		view, err = s.bookings.GetView(ctx, reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.withRetry(ctx, func() error {
		var err error
		booking, err = s.bookings.GetByReference(ctx, reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CheckIn marks the booking as checked in. Repeating it is a no-op success.
func (s *BookingService) CheckIn(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.CheckIn(ctx, reference)
}

// withRetry reruns a point lookup on transient storage errors. Not-found is
// a final answer and returned immediately.
func (s *BookingService) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.lookupAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.lookupBackoff * time.Duration(attempt)):
			}
		}
		err = fn()
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrInternal, err)
}

func validateSubmit(input SubmitBookingInput) error {
	fields := make(map[string]string)
	if input.FlightID <= 0 {
		fields["flight_id"] = "flight_id is required"
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if input.Tickets <= 0 {
		fields["tickets"] = "tickets must be a positive integer"
	}
	if len(fields) > 0 {
		return domain.NewValidationError("booking validation failed", fields)
	}
	return nil
}

func newReference() string {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(buf)
}

var _ BookingUseCase = (*BookingService)(nil)
