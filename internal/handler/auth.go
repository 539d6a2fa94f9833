package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookwormhq/bookworm-api/internal/config"
	"github.com/bookwormhq/bookworm-api/internal/model"
	"github.com/bookwormhq/bookworm-api/internal/repository"
	"github.com/bookwormhq/bookworm-api/internal/utils"
)

// AuthHandler bundles dependencies for the register/login endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type authResp struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// Register creates a user and returns a fresh token immediately.
// Validation short-circuits in a fixed order: presence, password length,
// username length, email free, username free.  The first failing check
// decides the response.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "all fields are required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password should be at least 6 characters long"})
	}
	if len(req.Username) < 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username should be at least 3 characters long"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if taken, err := h.Users.EmailTaken(ctx, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	} else if taken {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email already exists"})
	}
	if taken, err := h.Users.UsernameTaken(ctx, req.Username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	} else if taken {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username already exists"})
	}

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, utils.AvatarURL(req.Username), h.Cfg.BcryptCost)
	if err != nil {
		// Two registrations can race past the checks above; the unique
		// indexes make the loser surface here as a conflict.
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	token, err := utils.NewAuthToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	return c.JSON(http.StatusCreated, authResp{Token: token, User: u.Public()})
}

// Login verifies credentials and issues a new token, independent of any
// token issued before.  Unknown email and wrong password produce the same
// response so the caller cannot tell which part was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "all fields are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid credentials"})
	}

	token, err := utils.NewAuthToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	return c.JSON(http.StatusCreated, authResp{Token: token, User: u.Public()})
}
