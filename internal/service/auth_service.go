package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gavel/config"
	"gavel/internal/apperrors"
	"gavel/internal/auth"
	"gavel/internal/domain"
	"gavel/internal/models"
	"gavel/internal/repository"
	"gavel/pkg/cache"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	cfg *config.Config
	db  repository.DB
	rdb *redis.Client
}

func NewAuthService(cfg *config.Config, db repository.DB, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, db: db, rdb: rdb}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a user. Bidders get their wallet up front so the first
// deposit and bid have a row to lock.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, fmt.Errorf("username, email and a password of 8+ characters are required: %w", apperrors.ErrValidation)
	}
	if role != domain.RoleBidder && role != domain.RoleSeller {
		return nil, fmt.Errorf("role must be BIDDER or SELLER: %w", apperrors.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.db.Atomic(ctx, func(store repository.Store) error {
		if _, err := store.Users().GetByEmail(email); err == nil {
			return fmt.Errorf("email already registered: %w", apperrors.ErrValidation)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		user = &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := store.Users().Create(user); err != nil {
			return err
		}
		if role == domain.RoleBidder {
			if _, err := store.Wallets().GetOrCreate(user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.db.Users().GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrForbidden)
	}
	if user.Banned {
		return nil, nil, fmt.Errorf("account is banned: %w", apperrors.ErrForbidden)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrForbidden)
	}
	pair, err := s.tokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperrors.ErrForbidden)
	}
	var userID uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperrors.ErrForbidden)
	}
	user, err := s.db.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, fmt.Errorf("account is banned: %w", apperrors.ErrForbidden)
	}
	return s.tokenPair(user)
}

// Logout denylists the access token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.rdb == nil {
		return nil
	}
	claims, err := auth.ParseAccessToken(&s.cfg.JWT, token)
	if err != nil {
		return nil // already unusable
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return cache.DenyToken(ctx, s.rdb, token, ttl)
}

func (s *AuthService) tokenPair(user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
