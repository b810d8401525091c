package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/models"
	"blogsmith-backend/internal/repository"
)

const (
	bcryptCost      = 12
	refreshTokenTTL = 7 * 24 * time.Hour
)

var errInvalidCredentials = &UnauthorizedError{Message: "Invalid email or password."}

// UserStore is implemented by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

// RefreshTokenStore keeps opaque refresh tokens and the user they belong to.
type RefreshTokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
}

// RedisRefreshStore keeps refresh tokens under refresh:<token>.
type RedisRefreshStore struct {
	redis *redis.Client
}

func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{redis: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.redis.Set(ctx, "refresh:"+token, userID.String(), ttl).Err()
}

func (s *RedisRefreshStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.redis.Get(ctx, "refresh:"+token).Result()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	return s.redis.Del(ctx, "refresh:"+token).Err()
}

type AuthService struct {
	users  UserStore
	tokens RefreshTokenStore
	jwt    *middleware.JWTAuth
}

func NewAuthService(users UserStore, tokens RefreshTokenStore, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt}
}

// Signup creates the account and logs the new user in.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, *models.AuthTokens, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := req.Validate(); err != nil {
		return nil, nil, validationErrorFrom(err)
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, nil, &ConflictError{Message: "Username or email already in use"}
		}
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErrorFrom(err)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	s.users.UpdateLastLogin(ctx, user.ID)

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair
// is issued.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	if refreshToken == "" {
		return nil, &ValidationError{Fields: map[string]string{"refresh_token": "cannot be blank"}}
	}

	userID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	s.tokens.Revoke(ctx, refreshToken)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Account no longer exists"}
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(ctx, refreshToken, user.ID, refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// validationErrorFrom flattens ozzo-validation field errors. Anything else is
// reported under "body".
func validationErrorFrom(err error) *ValidationError {
	fields := make(map[string]string)

	var errs v.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields["body"] = err.Error()
	}

	return &ValidationError{Fields: fields}
}
