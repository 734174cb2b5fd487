package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/travelwithsue/travelapi/internal/domain"
	"go.uber.org/zap"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetView(ctx context.Context, reference string) (*domain.BookingView, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingView), args.Error(1)
}

func (m *MockBookingRepository) AttachQRCode(ctx context.Context, id int64, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockBookingRepository) CheckIn(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Upsert(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Generate(payload, reference string) (string, error) {
	args := m.Called(payload, reference)
	return args.String(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(bookings *MockBookingRepository, flights *MockFlightRepository, codes *MockCodeGenerator, producer *MockProducer, opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{
		WithNotificationsTopic("notifications"),
		WithLookupRetry(3, time.Millisecond),
	}, opts...)
	return NewBookingService(bookings, flights, codes, producer, zap.NewNop(), opts...)
}

func validInput() SubmitBookingInput {
	return SubmitBookingInput{FlightID: 4, Name: "Alice", Email: "alice@x.com", Tickets: 2}
}

func testFlight(seats int) *domain.Flight {
	return &domain.Flight{ID: 4, FlightNumber: "FL123", Airline: "Kenya Airways", AvailableSeats: seats}
}

func TestBookingService_SubmitBooking_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	codes := &MockCodeGenerator{}
	producer := &MockProducer{}
	service := newTestService(bookings, flights, codes, producer)

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(5), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		b.ID = 7
		b.CreatedAt = time.Now()
	}).Return(nil).Once()
	codes.On("Generate", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return("media/qrcodes/REF.png", nil).Once()
	bookings.On("AttachQRCode", ctx, int64(7), "media/qrcodes/REF.png").Return(nil).Once()
	producer.On("Publish", ctx, "notifications", mock.AnythingOfType("string"), mock.Anything).Return(nil).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Len(t, created.Reference, referenceLength)
	assert.Equal(t, 2, created.Tickets)
	assert.NotNil(t, created.QRCodePath)
	assert.Equal(t, "media/qrcodes/REF.png", *created.QRCodePath)

	bookings.AssertExpectations(t)
	flights.AssertExpectations(t)
	codes.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_SubmitBooking_FlightNotFound(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	service := newTestService(bookings, flights, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(nil, domain.ErrNotFound).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingService_SubmitBooking_InsufficientSeats(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	service := newTestService(bookings, flights, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(1), nil).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "no available seats")
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// The precheck can pass and the conditional decrement still lose the race.
func TestBookingService_SubmitBooking_DecrementLosesRace(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	service := newTestService(bookings, flights, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(5), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(domain.ErrConflict).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
	bookings.AssertExpectations(t)
}

func TestBookingService_SubmitBooking_ReferenceCollisionRetried(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	codes := &MockCodeGenerator{}
	producer := &MockProducer{}
	service := newTestService(bookings, flights, codes, producer)

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(5), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(domain.ErrDuplicateReference).Twice()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = 9
	}).Return(nil).Once()
	codes.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("qr disabled")).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.NoError(t, err)
	assert.NotNil(t, created)
	bookings.AssertNumberOfCalls(t, "Create", 3)
}

func TestBookingService_SubmitBooking_ReferenceAttemptsExhausted(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	service := newTestService(bookings, flights, &MockCodeGenerator{}, &MockProducer{}, WithReferenceAttempts(3))

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(5), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(domain.ErrDuplicateReference).Times(3)

	created, err := service.SubmitBooking(ctx, validInput())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
	bookings.AssertNumberOfCalls(t, "Create", 3)
}

// A failed notification must not fail the committed booking.
func TestBookingService_SubmitBooking_NotificationFailureIsNonFatal(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	codes := &MockCodeGenerator{}
	producer := &MockProducer{}
	service := newTestService(bookings, flights, codes, producer)

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(5), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = 3
	}).Return(nil).Once()
	codes.On("Generate", mock.Anything, mock.Anything).Return("media/qrcodes/X.png", nil).Once()
	bookings.On("AttachQRCode", ctx, int64(3), "media/qrcodes/X.png").Return(nil).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.NoError(t, err)
	assert.NotNil(t, created)
}

func TestBookingService_SubmitBooking_QRFailureIsNonFatal(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	codes := &MockCodeGenerator{}
	producer := &MockProducer{}
	service := newTestService(bookings, flights, codes, producer)

	ctx := context.Background()
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(5), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	codes.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("disk full")).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	created, err := service.SubmitBooking(ctx, validInput())

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Nil(t, created.QRCodePath)
	bookings.AssertNotCalled(t, "AttachQRCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_SubmitBooking_Validation(t *testing.T) {
	service := newTestService(&MockBookingRepository{}, &MockFlightRepository{}, &MockCodeGenerator{}, &MockProducer{})

	created, err := service.SubmitBooking(context.Background(), SubmitBookingInput{
		FlightID: 0,
		Name:     "  ",
		Email:    "not-an-email",
		Tickets:  0,
	})

	assert.Nil(t, created)
	ve, ok := domain.IsValidation(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "flight_id")
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "tickets")
}

func TestBookingService_VerifyBooking_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockFlightRepository{}, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	view := &domain.BookingView{Reference: "ABCD2345", Name: "Alice", FlightNumber: "FL123", Tickets: 2}
	bookings.On("GetView", ctx, "ABCD2345").Return(view, nil).Once()

	got, err := service.VerifyBooking(ctx, "ABCD2345")

	assert.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "FL123", got.FlightNumber)
	assert.Equal(t, 2, got.Tickets)
}

func TestBookingService_VerifyBooking_UnknownReference(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockFlightRepository{}, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	bookings.On("GetView", ctx, "nonexistent-ref").Return(nil, domain.ErrNotFound).Once()

	got, err := service.VerifyBooking(ctx, "nonexistent-ref")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// Not-found is final; no retries are burned on it.
	bookings.AssertNumberOfCalls(t, "GetView", 1)
}

func TestBookingService_VerifyBooking_TransientErrorRetried(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockFlightRepository{}, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	view := &domain.BookingView{Reference: "ABCD2345", Name: "Alice"}
	bookings.On("GetView", ctx, "ABCD2345").Return(nil, errors.New("connection reset")).Once()
	bookings.On("GetView", ctx, "ABCD2345").Return(view, nil).Once()

	got, err := service.VerifyBooking(ctx, "ABCD2345")

	assert.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	bookings.AssertNumberOfCalls(t, "GetView", 2)
}

func TestBookingService_VerifyBooking_RetriesExhausted(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockFlightRepository{}, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	bookings.On("GetView", ctx, "ABCD2345").Return(nil, errors.New("connection reset")).Times(3)

	got, err := service.VerifyBooking(ctx, "ABCD2345")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrInternal)
	bookings.AssertNumberOfCalls(t, "GetView", 3)
}

func TestBookingService_CheckIn_Idempotent(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockFlightRepository{}, &MockCodeGenerator{}, &MockProducer{})

	ctx := context.Background()
	now := time.Now()
	checked := &domain.Booking{ID: 1, Reference: "ABCD2345", CheckedIn: true, CheckedInAt: &now}
	bookings.On("CheckIn", ctx, "ABCD2345").Return(checked, nil).Twice()

	first, err := service.CheckIn(ctx, "ABCD2345")
	assert.NoError(t, err)
	assert.True(t, first.CheckedIn)

	second, err := service.CheckIn(ctx, "ABCD2345")
	assert.NoError(t, err)
	assert.True(t, second.CheckedIn)
	assert.Equal(t, first.CheckedInAt, second.CheckedInAt)
}

// Flight FL123 has 2 seats left: Alice books both, Bob is turned away, and
// Alice's reference verifies with her details.
func TestBookingService_Scenario_LastSeats(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	codes := &MockCodeGenerator{}
	producer := &MockProducer{}
	service := newTestService(bookings, flights, codes, producer)

	ctx := context.Background()

	var aliceRef string
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(2), nil).Once()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		b.ID = 1
		aliceRef = b.Reference
	}).Return(nil).Once()
	codes.On("Generate", mock.Anything, mock.Anything).Return("media/qrcodes/a.png", nil).Once()
	bookings.On("AttachQRCode", ctx, int64(1), "media/qrcodes/a.png").Return(nil).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	alice, err := service.SubmitBooking(ctx, SubmitBookingInput{FlightID: 4, Name: "Alice", Email: "alice@x.com", Tickets: 2})
	assert.NoError(t, err)
	assert.Equal(t, aliceRef, alice.Reference)

	// The flight is now sold out.
	flights.On("GetByID", ctx, int64(4)).Return(testFlight(0), nil).Once()
	bob, err := service.SubmitBooking(ctx, SubmitBookingInput{FlightID: 4, Name: "Bob", Email: "bob@x.com", Tickets: 1})
	assert.Nil(t, bob)
	assert.ErrorIs(t, err, domain.ErrConflict)

	bookings.On("GetView", ctx, aliceRef).Return(&domain.BookingView{
		Reference:    aliceRef,
		Name:         "Alice",
		FlightNumber: "FL123",
		Tickets:      2,
	}, nil).Once()

	view, err := service.VerifyBooking(ctx, aliceRef)
	assert.NoError(t, err)
	assert.Equal(t, "Alice", view.Name)
	assert.Equal(t, "FL123", view.FlightNumber)
	assert.Equal(t, 2, view.Tickets)
}

func TestNewReference_Properties(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref := newReference()
		assert.Len(t, ref, referenceLength)
		for _, r := range ref {
			assert.Contains(t, referenceAlphabet, string(r))
		}
		seen[ref] = struct{}{}
	}
	// 31^8 possibilities; 1000 draws colliding would point at a broken generator.
	assert.Len(t, seen, 1000)
}
