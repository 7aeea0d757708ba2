package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventease/internal/model"
    "github.com/iliyamo/eventease/internal/service"
)

// Authenticator is what AuthHandler needs from the auth service.
type Authenticator interface {
    Register(ctx context.Context, name, email, password string) error
    Login(ctx context.Context, email, password string) (service.Session, error)
}

// AuthHandler serves /auth/register and /auth/login.
type AuthHandler struct {
    Auth Authenticator
    Log  *zap.Logger
}

func NewAuthHandler(auth Authenticator, log *zap.Logger) *AuthHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &AuthHandler{Auth: auth, Log: log}
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name" validate:"required,max=100"`
    Email    string `json:"email" validate:"required,email,max=255"`
    Password string `json:"password" validate:"required,max=72"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type loginResp struct {
    Token     string           `json:"token"`
    ExpiresAt time.Time        `json:"expires_at"`
    User      model.PublicUser `json:"user"`
}

// Register creates a user account with the default role.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Auth.Register(ctx, req.Name, req.Email, req.Password); err != nil {
        if errors.Is(err, service.ErrDuplicateUser) {
            return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
        }
        return respondError(c, h.Log, "Register", err, "Something went wrong")
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// Login verifies credentials and returns a session token plus the public
// profile.  Unknown email and wrong password are indistinguishable.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    sess, err := h.Auth.Login(ctx, req.Email, req.Password)
    if err != nil {
        if errors.Is(err, service.ErrInvalidCredentials) {
            return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
        }
        return respondError(c, h.Log, "Login", err, "Login failed")
    }
    return c.JSON(http.StatusOK, loginResp{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
}
