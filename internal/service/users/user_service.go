package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/travelwithsue/travelapi/internal/auth"
	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/repository"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
	Profile(ctx context.Context, userID int64) (*ProfileView, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.Profile, error)
}

// TokenBlacklist revokes refresh tokens until their natural expiry.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// ReservationSource lists a user's restaurant reservations for the profile.
type ReservationSource interface {
	ReservationsByUser(ctx context.Context, userID int64) ([]domain.ReservationView, error)
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileInput struct {
	Bio            *string `json:"bio"`
	PhoneNumber    *string `json:"phone_number"`
	ProfilePicture *string `json:"profile_picture"`
}

type ProfileView struct {
	User         *domain.User
	Profile      *domain.Profile
	Reservations []domain.ReservationView
}

type UserService struct {
	users        repository.UserRepository
	reservations ReservationSource
	tokens       *auth.Manager
	blacklist    TokenBlacklist
	log          *zap.Logger
}

func NewUserService(users repository.UserRepository, reservations ReservationSource, tokens *auth.Manager, blacklist TokenBlacklist, log *zap.Logger) *UserService {
	return &UserService{
		users:        users,
		reservations: reservations,
		tokens:       tokens,
		blacklist:    blacklist,
		log:          log,
	}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Username) == "" {
		fields["username"] = "username is required"
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(input.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("registration validation failed", fields)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewValidationError("registration validation failed", map[string]string{
				"username": "username or email already taken",
			})
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, auth.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, auth.TokenPair{}, ErrInvalidCredentials
		}
		return nil, auth.TokenPair{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Parse(refreshToken, "refresh")
	if err != nil {
		return auth.ErrInvalidToken
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.BlacklistToken(ctx, claims.ID, ttl)
}

func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(accessToken, "access")
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	revoked, err := s.blacklist.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		s.log.Warn("token blacklist lookup", zap.Error(err))
	} else if revoked {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.ReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Profile: profile, Reservations: reservations}, nil
}

// UpdateProfile applies a partial update; nil fields are left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.PhoneNumber != nil {
		profile.PhoneNumber = *input.PhoneNumber
	}
	if input.ProfilePicture != nil {
		profile.ProfilePicture = input.ProfilePicture
	}
	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

var _ UserUseCase = (*UserService)(nil)
