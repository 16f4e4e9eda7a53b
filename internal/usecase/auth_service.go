package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

// Claims is the payload of an access token
type Claims struct {
	UserID   uint        `json:"uid"`
	Role     entity.Role `json:"role"`
	DriverID uint        `json:"driverId,omitempty"`
	jwt.RegisteredClaims
}

// AuthService issues and resolves bearer tokens
type AuthService struct {
	users    repository.UserRepository
	secret   []byte
	lifespan time.Duration
	logger   logger.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, secret string, lifespan time.Duration, logger logger.Logger) *AuthService {
	if lifespan <= 0 {
		lifespan = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		lifespan: lifespan,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks the credentials and returns a signed token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if entity.IsNotFound(err) {
			return "", nil, entity.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return "", nil, entity.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Invalid login attempt", "username", username)
		return "", nil, entity.ErrUnauthorized
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("User logged in", "userID", user.ID, "role", user.Role)
	return token, user, nil
}

func (s *AuthService) issue(user *entity.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "txapp",
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifespan)),
		},
	}
	if user.DriverID != nil {
		claims.DriverID = *user.DriverID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve validates a token and returns the caller identity
func (s *AuthService) Resolve(tokenString string) (entity.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return entity.Identity{}, entity.ErrUnauthorized
	}
	if !claims.Role.Valid() {
		return entity.Identity{}, entity.ErrUnauthorized
	}
	return entity.NewIdentity(claims.UserID, claims.Role, claims.DriverID), nil
}

// EnsureUser creates the account or resets its password and role
func (s *AuthService) EnsureUser(ctx context.Context, username, password string, role entity.Role, driverID *uint) (*entity.User, error) {
	if username == "" || len(password) < 8 || !role.Valid() {
		return nil, entity.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrNotFound):
		user = &entity.User{Username: username}
	default:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.PasswordHash = string(hash)
	user.Role = role
	user.DriverID = driverID
	user.Active = true
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	s.logger.Info("User account ensured", "username", username, "role", role)
	return user, nil
}
