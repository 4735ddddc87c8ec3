package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/config"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/core/services"
	"lendinghub/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

const testSecret = "routes-test-secret"

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testAPI struct {
	t      *testing.T
	app    *fiber.App
	tokens map[string]string
	ids    map[string]uint
	itemID uint
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "api.db"),
	}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: testSecret, AccessTokenMins: 15},
		Policy:  domain.DefaultPolicy(),
	}
	store := repositories.NewStore(db)
	lending := services.NewLendingService(store, cfg.Policy, domain.SystemClock{})

	api := &testAPI{t: t, app: fiber.New(), tokens: map[string]string{}, ids: map[string]uint{}}
	Setup(api.app, store, lending, cfg)

	borrowers := services.NewBorrowerService(store, cfg.Policy).WithHashCost(bcrypt.MinCost)
	for name, role := range map[string]domain.Role{"admin": domain.RoleAdmin, "reader": domain.RoleUser, "other": domain.RoleUser} {
		profile, err := borrowers.CreateUser(ctx, &services.CreateUserInput{
			Username: name,
			Email:    name + "@example.com",
			Password: "password123",
			Role:     string(role),
		})
		require.NoError(t, err)
		token, err := jwt.GenerateAccessToken(profile.UserID, name, string(role), testSecret, 15)
		require.NoError(t, err)
		api.ids[name] = profile.UserID
		api.tokens[name] = token
	}

	catalog := services.NewCatalogService(store, lending)
	category, err := catalog.CreateCategory(ctx, &services.CategoryInput{Name: "Fiction"})
	require.NoError(t, err)
	item, err := catalog.CreateItem(ctx, api.ids["admin"], &services.CreateItemInput{
		Title:       "Dune",
		Author:      "Frank Herbert",
		ISBN:        "9780441013593",
		CategoryID:  category.ID,
		TotalCopies: 1,
	})
	require.NoError(t, err)
	api.itemID = item.ID

	return api
}

// do sends a request as user (empty for anonymous) and decodes the envelope
func (a *testAPI) do(method, path, user string, body interface{}) (int, apiResponse) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[user])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (a *testAPI) borrow(user string) string {
	a.t.Helper()
	status, out := a.do(http.MethodPost, "/api/v1/loans", user, map[string]interface{}{"item_id": a.itemID})
	require.Equal(a.t, http.StatusCreated, status, out.Error)

	var record struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(out.Data, &record))
	return record.ID
}

func TestAuthentication(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(http.MethodGet, "/api/v1/loans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, out := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "reader", "password": "password123"})
	require.Equal(t, http.StatusOK, status)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &login))
	assert.NotEmpty(t, login.AccessToken)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "reader", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, out = api.do(http.MethodGet, "/api/v1/auth/me", "reader", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(out.Data), `"max_books_allowed":5`)
}

func TestLoanFlow(t *testing.T) {
	api := newTestAPI(t)
	recordID := api.borrow("reader")

	t.Run("duplicate borrow conflicts", func(t *testing.T) {
		status, out := api.do(http.MethodPost, "/api/v1/loans", "reader", map[string]interface{}{"item_id": api.itemID})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "DUPLICATE_BORROW", out.Code)
	})

	t.Run("borrowers cannot issue to others", func(t *testing.T) {
		status, _ := api.do(http.MethodPost, "/api/v1/loans", "reader", map[string]interface{}{
			"item_id": api.itemID, "borrower_id": api.ids["other"],
		})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("records are private", func(t *testing.T) {
		status, out := api.do(http.MethodGet, "/api/v1/loans/"+recordID, "other", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "RECORD_NOT_FOUND", out.Code)

		status, _ = api.do(http.MethodPost, "/api/v1/loans/"+recordID+"/renew", "other", nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = api.do(http.MethodGet, "/api/v1/loans/"+recordID, "admin", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("renew", func(t *testing.T) {
		status, out := api.do(http.MethodPost, "/api/v1/loans/"+recordID+"/renew", "reader", nil)
		require.Equal(t, http.StatusOK, status, out.Error)
		assert.Contains(t, string(out.Data), `"renewal_count":1`)

		status, _ = api.do(http.MethodPost, "/api/v1/loans/not-a-uuid/renew", "reader", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("no copy left", func(t *testing.T) {
		status, out := api.do(http.MethodPost, "/api/v1/loans", "other", map[string]interface{}{"item_id": api.itemID})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "ITEM_UNAVAILABLE", out.Code)
	})

	t.Run("reserve then return promotes", func(t *testing.T) {
		status, out := api.do(http.MethodPost, "/api/v1/reservations", "other", map[string]interface{}{"item_id": api.itemID})
		require.Equal(t, http.StatusCreated, status, out.Error)

		status, _ = api.do(http.MethodPost, "/api/v1/loans/"+recordID+"/return", "reader", nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, out = api.do(http.MethodPost, "/api/v1/loans/"+recordID+"/return", "admin", nil)
		require.Equal(t, http.StatusOK, status, out.Error)

		status, out = api.do(http.MethodGet, "/api/v1/notifications?unread=true", "other", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(out.Data), models.NotificationReservationReady)

		status, out = api.do(http.MethodGet, "/api/v1/reservations", "other", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(out.Data), `"notified":true`)
	})

	t.Run("loan history", func(t *testing.T) {
		status, out := api.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/loans", api.ids["reader"]), "admin", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(out.Data), `"status":"returned"`)
	})
}

func TestStaffRoutes(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(http.MethodGet, "/api/v1/dashboard/staff", "reader", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, out := api.do(http.MethodGet, "/api/v1/dashboard/staff", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(out.Data), `"total_items":1`)

	status, _ = api.do(http.MethodPost, "/api/v1/items", "reader", map[string]interface{}{"title": "X"})
	assert.Equal(t, http.StatusForbidden, status)

	status, out = api.do(http.MethodPost, "/api/v1/items", "admin", map[string]interface{}{
		"title": "Bad", "author": "Isbn", "isbn": "123", "category_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", out.Code)

	status, out = api.do(http.MethodPost, "/api/v1/items", "admin", map[string]interface{}{
		"title": "Dune again", "author": "Frank Herbert", "isbn": "978-0441013593", "category_id": 1,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_ENTRY", out.Code)

	status, out = api.do(http.MethodPost, fmt.Sprintf("/api/v1/items/%d/copies", api.itemID), "admin", map[string]int{"count": 2})
	require.Equal(t, http.StatusOK, status, out.Error)
	assert.Contains(t, string(out.Data), `"total_copies":3`)

	status, _ = api.do(http.MethodPost, "/api/v1/sweeps/reminders?days=-1", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodPost, "/api/v1/sweeps/expiry", "admin", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodPost, "/api/v1/sweeps/expiry", "reader", nil)
	assert.Equal(t, http.StatusForbidden, status)
}
