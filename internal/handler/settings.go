package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
)

// SettingsHandler exposes the form configuration and navigation settings.
// Reads are public; writes sit behind the admin group.
type SettingsHandler struct {
	Forms *repository.FormConfigRepo
	Nav   *repository.NavigationRepo
}

func NewSettingsHandler(forms *repository.FormConfigRepo, nav *repository.NavigationRepo) *SettingsHandler {
	return &SettingsHandler{Forms: forms, Nav: nav}
}

func (h *SettingsHandler) GetFormConfig(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cfg, err := h.Forms.Get(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// SaveFormConfig replaces the whole configuration with the request body.
func (h *SettingsHandler) SaveFormConfig(c echo.Context) error {
	var cfg model.FormConfig
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Forms.Save(ctx, cfg); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *SettingsHandler) ResetFormConfig(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cfg, err := h.Forms.Reset(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *SettingsHandler) GetNavigation(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Nav.Get(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) SaveNavigation(c echo.Context) error {
	var s model.NavigationSettings
	if err := c.Bind(&s); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Nav.Save(ctx, s); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
