package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cleaning-booking/internal/config"
	"github.com/iliyamo/cleaning-booking/internal/handler"
	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/router"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

const secret = "test-secret"

type api struct {
	t    *testing.T
	e    *echo.Echo
	auth *service.AuthService
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := kvstore.New(kvstore.NewMemory(), "cttm", log)
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, AdminEmail: "admin@example.com", BcryptCost: bcrypt.MinCost}

	auth := service.NewAuthService(store, service.AuthConfig{AdminEmail: cfg.AdminEmail, BcryptCost: cfg.BcryptCost, Location: time.UTC}, log)
	bookings := service.NewBookingService(store, nil, log)
	cal := service.NewCalendar(store, time.UTC)
	settings := handler.NewSettingsHandler(repository.NewFormConfigRepo(store), repository.NewNavigationRepo(store))
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	e := echo.New()
	router.RegisterRoutes(e, store, settings)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, auth), auth, secret, pass)
	router.RegisterBookings(e, handler.NewBookingHandler(bookings, cal), auth, secret)
	router.RegisterAdmin(e, handler.NewAdminHandler(auth, bookings, cal), settings, auth, secret)
	return &api{t: t, e: e, auth: auth}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authBody struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
}

// register signs up and returns the user id and token.
func (a *api) register(email string) (string, string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"name": "N", "email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[authBody](a.t, rec)
	return b.User.ID, b.Access.Token
}

func residentialBody() map[string]any {
	return map[string]any{
		"propertyType":  "residential",
		"name":          "Jane",
		"email":         "jane@example.com",
		"complexity":    "Simple",
		"homeSize":      "Studio",
		"bedrooms":      1,
		"preferredDate": "2024-02-29",
	}
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterLoginMe(t *testing.T) {
	a := newAPI(t)
	id, token := a.register("jane@example.com")

	rec := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"name": "N", "email": "JANE@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")

	// 40 runes, 80 bytes: within the rune limit, past bcrypt's byte limit
	rec = a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"name": "N", "email": "long@example.com", "password": strings.Repeat("é", 40)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "72 bytes")

	rec = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "jane@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "Jane@Example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, id, me["id"])
	assert.NotContains(t, me, "password")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/me", "garbage", nil).Code)
}

func TestBookingOwnership(t *testing.T) {
	a := newAPI(t)
	janeID, jane := a.register("jane@example.com")
	_, bob := a.register("bob@example.com")

	rec := a.do(http.MethodPost, "/v1/bookings", "", residentialBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	guest := decode[model.Booking](t, rec)
	assert.Nil(t, guest.UserID)
	assert.Equal(t, model.StatusPending, guest.Status)

	rec = a.do(http.MethodPost, "/v1/bookings", jane, residentialBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	mine := decode[model.Booking](t, rec)
	require.NotNil(t, mine.UserID)
	assert.Equal(t, janeID, *mine.UserID)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/bookings/"+mine.ID, jane, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/bookings/"+mine.ID, bob, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/bookings/"+guest.ID, jane, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/bookings/nope", jane, nil).Code)

	rec = a.do(http.MethodPatch, "/v1/bookings/"+mine.ID+"/status", jane, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCancelled, decode[model.Booking](t, rec).Status)
	rec = a.do(http.MethodPatch, "/v1/bookings/"+mine.ID+"/status", jane, map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/v1/my-bookings", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/calendar?year=2024&month=2", jane, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.MonthView](t, rec)
	require.Len(t, view.Days, 29)
	require.Len(t, view.Days[28].Bookings, 1)
	assert.Equal(t, mine.ID, view.Days[28].Bookings[0].ID)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/calendar?month=0", jane, nil).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/v1/bookings/"+mine.ID, bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/v1/bookings/"+mine.ID, jane, nil).Code)
}

func TestGuestBookingValidation(t *testing.T) {
	a := newAPI(t)
	body := residentialBody()
	body["propertyType"] = "boat"
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/bookings", "", body).Code)

	commercial := map[string]any{"propertyType": "commercial", "email": "ops@acme.test", "complexity": "Complex"}
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/bookings", "", commercial).Code)
	commercial["businessName"] = "Acme"
	rec := a.do(http.MethodPost, "/v1/bookings", "", commercial)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Acme", decode[model.Booking](t, rec).Name)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/bookings", "bad-token", residentialBody()).Code)
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI(t)
	janeID, jane := a.register("jane@example.com")
	adminID, admin := a.register("admin@example.com")

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/admin/stats", jane, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/admin/stats", "", nil).Code)

	body := residentialBody()
	body["phone"] = "555-0100"
	rec := a.do(http.MethodPost, "/v1/bookings", jane, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decode[model.Booking](t, rec)

	rec = a.do(http.MethodPatch, "/v1/admin/bookings/"+b.ID, admin, `{"propertyType":"commercial","businessName":"Acme","phone":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Booking](t, rec)
	assert.Equal(t, model.Commercial, updated.PropertyType)
	assert.Nil(t, updated.Phone)
	assert.Nil(t, updated.HomeSize)
	assert.Nil(t, updated.Bedrooms)
	assert.Equal(t, "Acme", *updated.BusinessName)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPatch, "/v1/admin/bookings/nope", admin, `{"name":"x"}`).Code)

	rec = a.do(http.MethodGet, "/v1/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[struct {
		Bookings model.BookingStats `json:"bookings"`
		Users    model.UserStats    `json:"users"`
	}](t, rec)
	assert.Equal(t, model.BookingStats{Total: 1, Pending: 1, Commercial: 1}, stats.Bookings)
	assert.Equal(t, 2, stats.Users.Total)
	assert.Equal(t, 1, stats.Users.Admins)

	rec = a.do(http.MethodGet, "/v1/admin/signups/recent", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]model.RecentSignup](t, rec)
	require.Len(t, recent, 2)
	assert.Equal(t, adminID, recent[0].UserID)
	assert.Equal(t, janeID, recent[1].UserID)
	rec = a.do(http.MethodGet, "/v1/admin/signups/recent?limit=1", admin, nil)
	assert.Len(t, decode[[]model.RecentSignup](t, rec), 1)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/admin/signups/recent?limit=0", admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/admin/signups/recent", jane, nil).Code)

	rec = a.do(http.MethodGet, "/v1/admin/bookings?status=pending&propertyType=commercial", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Booking](t, rec), 1)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/admin/bookings?status=lost", admin, nil).Code)

	rec = a.do(http.MethodGet, "/v1/admin/calendar/day?year=2024&month=2&day=29", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Booking](t, rec), 1)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/admin/calendar/day?year=2023&month=2&day=29", admin, nil).Code)

	rec = a.do(http.MethodPatch, "/v1/admin/users/"+janeID+"/role", admin, map[string]string{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodPatch, "/v1/admin/users/missing/role", admin, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, "/v1/admin/users/"+adminID, admin, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/v1/admin/users/"+janeID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/admin/users/"+janeID, admin, nil).Code)

	rec = a.do(http.MethodGet, "/v1/admin/bookings", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/me", jane, nil).Code)
}

func TestDemotedAdminLosesAccessImmediately(t *testing.T) {
	a := newAPI(t)
	_, boss := a.register("admin@example.com")
	opsID, ops := a.register("ops@example.com")

	require.Equal(t, http.StatusOK, a.do(http.MethodPatch, "/v1/admin/users/"+opsID+"/role", boss, map[string]string{"role": "admin"}).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/admin/users", ops, nil).Code)

	_, err := a.auth.UpdateRole(context.Background(), opsID, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/admin/users", ops, nil).Code)
}

func TestSettingsRoutes(t *testing.T) {
	a := newAPI(t)
	_, admin := a.register("admin@example.com")

	rec := a.do(http.MethodGet, "/v1/form-config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DefaultFormConfig(), decode[model.FormConfig](t, rec))

	cfg := model.DefaultFormConfig()
	cfg.FieldLabels["name"] = "Full name"
	cfg.Complexity.Options = []model.Option{{Value: "easy", Label: "Easy"}}
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/v1/admin/form-config", admin, cfg).Code)
	rec = a.do(http.MethodGet, "/v1/form-config", "", nil)
	assert.Equal(t, cfg, decode[model.FormConfig](t, rec))

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/v1/admin/form-config/reset", admin, nil).Code)
	rec = a.do(http.MethodGet, "/v1/form-config", "", nil)
	assert.Equal(t, model.DefaultFormConfig(), decode[model.FormConfig](t, rec))

	rec = a.do(http.MethodGet, "/v1/navigation-settings", "", nil)
	assert.JSONEq(t, `{"showMembership":false}`, rec.Body.String())
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/v1/admin/navigation-settings", admin, map[string]bool{"showMembership": true}).Code)
	rec = a.do(http.MethodGet, "/v1/navigation-settings", "", nil)
	assert.JSONEq(t, `{"showMembership":true}`, rec.Body.String())
}
