package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/config"
	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/service"
	"github.com/iliyamo/cleaning-booking/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
// maxPasswordBytes is bcrypt's input limit; validator's max counts runes.
const maxPasswordBytes = 72

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User   userView  `json:"user"`
	Access tokenPart `json:"access"`
}

func (h *AuthHandler) issue(c echo.Context, status int, u model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(status, authResp{
		User:   viewUser(u),
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Register creates a user and signs them in.  Self-service signups never
// choose their role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if len(req.Password) > maxPasswordBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": []fieldError{
			{Field: "Password", Message: fmt.Sprintf("Field 'Password' must not exceed %d bytes", maxPasswordBytes)},
		}})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.CreateUser(ctx, req.Name, req.Email, req.Password, "")
	if err != nil {
		return fail(c, err)
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return h.issue(c, http.StatusOK, u)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, viewUser(u))
}
