package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/entity"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

type UserService struct {
	db         repository.DBTX
	tx         repository.Transactor
	repo       UserStore
	rdb        *redis.Client
	secret     []byte
	sessionTTL time.Duration
}

// NewUserService creates a new instance of UserService.
func NewUserService(db repository.DBTX, tx repository.Transactor, repo UserStore, rdb *redis.Client, secret string, sessionTTL time.Duration) *UserService {
	return &UserService{
		db:         db,
		tx:         tx,
		repo:       repo,
		rdb:        rdb,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
	}
}

type JwtCustomClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func sessionKey(userID int, tokenID string) string {
	return fmt.Sprintf("session:%d:%s", userID, tokenID)
}

func duplicateEmail() error {
	errs := &validation.Errors{}
	errs.Add("email", "A user with that email already exists.")
	return errs
}

// Register creates the account and its profile together. Taken emails and
// mismatched passwords come back as *validation.Errors.
func (s *UserService) Register(ctx context.Context, form validation.RegisterForm) (*entity.User, error) {
	reg, err := form.Validate()
	if err != nil {
		return nil, err
	}

	_, err = s.repo.GetUserByUsername(ctx, s.db, reg.Email)
	if err == nil {
		return nil, duplicateEmail()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Error looking up user")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     reg.Email,
		FullName:     reg.FullName,
		Email:        reg.Email,
		PasswordHash: string(hash),
	}
	err = s.tx.WithinTx(ctx, func(q repository.DBTX) error {
		if _, err := s.repo.CreateUser(ctx, q, user); err != nil {
			return err
		}
		_, err := s.repo.CreateProfile(ctx, q, &entity.UserProfile{
			UserID:  user.ID,
			Phone:   reg.Phone,
			Address: reg.Address,
		})
		return err
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, duplicateEmail()
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	return user, nil
}

// Login checks the credentials and opens a session. The returned token is
// valid for as long as its session lives in redis.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, s.db, email)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Debug().Msgf("Login for unknown user %s", email)
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error looking up user")
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Debug().Msgf("Wrong password for user %d", user.ID)
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	err = s.rdb.Set(ctx, sessionKey(user.ID, claims.ID), user.Email, s.sessionTTL).Err()
	if err != nil {
		logger.Error().Err(err).Msgf("Error storing session of user %d", user.ID)
		return "", nil, err
	}

	return t, user, nil
}

// ValidateSession reports whether the token's session is still open.
func (s *UserService) ValidateSession(ctx context.Context, claims *JwtCustomClaims) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(claims.UserID, claims.ID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *UserService) Logout(ctx context.Context, claims *JwtCustomClaims) error {
	return s.rdb.Del(ctx, sessionKey(claims.UserID, claims.ID)).Err()
}

// Secret is the HMAC key tokens are signed with.
func (s *UserService) Secret() []byte {
	return s.secret
}
