package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/eventease/internal/model"
	"github.com/iliyamo/eventease/internal/repository"
	"github.com/iliyamo/eventease/internal/utils"
)

// UserStore is the credential store used by AuthService.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      model.PublicUser
}

// AuthService registers users and issues signed session tokens.
type AuthService struct {
	users      UserStore
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(users UserStore, secret string, tokenTTL time.Duration, bcryptCost int, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL, bcryptCost: bcryptCost, log: log}
}

// Register creates a user with the default role.
func (a *AuthService) Register(ctx context.Context, name, email, password string) error {
	const op = "auth.Register"
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return validationError("name, email and password are required")
	}

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return ErrDuplicateUser
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := utils.HashPassword(password, a.bcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return validationError("password must be at most 72 bytes")
		}
		return fmt.Errorf("%s: hash: %w", op, err)
	}
	id, err := a.users.Create(ctx, name, email, hash, model.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info("user registered", zap.Uint64("user_id", id))
	return nil
}

// Login verifies credentials and issues a token carrying the user id and role.
func (a *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "auth.Login"
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		a.log.Warn("invalid password", zap.Uint64("user_id", u.ID))
		return Session{}, ErrInvalidCredentials
	}

	tok, err := utils.NewAccessToken(a.secret, u.ID, u.Role, a.tokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("%s: sign: %w", op, err)
	}
	return Session{Token: tok.Token, ExpiresAt: tok.Exp, User: u.Public()}, nil
}

// EnsureAdmin creates an admin account when no user with email exists yet.
// It is the only way an admin comes into being; registration always yields
// the user role.  An existing account is left untouched whatever its role.
func (a *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	const op = "auth.EnsureAdmin"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return validationError("admin email and password are required")
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Administrator"
	}
	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := utils.HashPassword(password, a.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: hash: %w", op, err)
	}
	id, err := a.users.Create(ctx, name, email, hash, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info("admin account created", zap.Uint64("user_id", id))
	return nil
}
