package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/config"
	"github.com/joshua-takyi/servicios/internal/container"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/uploads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	return setupRouterWithCache(t, cache.NoopCache{})
}

func setupRouterWithCache(t *testing.T, c cache.Cache) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		Environment:    "test",
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxUploadBytes: 1 << 20,
		CacheTTL:       time.Minute,
	}
	tokens, err := helpers.NewTokenManager(context.Background(), "test-secret", time.Hour, "")
	require.NoError(t, err)
	store, err := uploads.NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ct := container.NewContainer(log, cfg, db, nil, c, store, tokens)
	return SetupRoutes(ct), db
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID       string  `json:"id"`
		Password *string `json:"password"`
		Role     string  `json:"role"`
		Provider *struct {
			ID string `json:"id"`
		} `json:"providerProfile"`
	} `json:"user"`
}

func TestScenarioSignupBookReview(t *testing.T) {
	r, _ := setupRouter(t)

	w := call(t, r, http.MethodPost, "/auth/signup-client", "", gin.H{
		"email": "carlos@example.com", "password": "secreto", "name": "Carlos", "phone": "555",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var client authBody
	decode(t, w, &client)
	assert.Equal(t, "CLIENT", client.User.Role)
	assert.Nil(t, client.User.Password)
	assert.NotContains(t, w.Body.String(), `"password"`)

	w = call(t, r, http.MethodGet, "/providers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = call(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "ana@example.com", "password": "secreto", "name": "Ana",
		"serviceCategory": "plomeria", "pricePerHour": 20, "specialties": []string{"tuberías"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var provider authBody
	decode(t, w, &provider)
	require.NotNil(t, provider.User.Provider)
	providerID := provider.User.Provider.ID

	w = call(t, r, http.MethodGet, "/providers?category=PLOMERIA", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []map[string]interface{}
	decode(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, []interface{}{"tuberías"}, listed[0]["specialties"])

	w = call(t, r, http.MethodPost, "/bookings", client.Token, gin.H{
		"providerId": providerID, "serviceDate": "2026-11-02", "description": "Fuga",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booking struct {
		ID     string          `json:"id"`
		Status string          `json:"status"`
		Review json.RawMessage `json:"review"`
	}
	decode(t, w, &booking)
	assert.Equal(t, "PENDING", booking.Status)
	assert.Equal(t, "null", string(booking.Review))

	w = call(t, r, http.MethodPatch, "/bookings/"+booking.ID+"/status", client.Token, gin.H{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, s := range []string{"ACCEPTED", "CONFIRMED", "IN_PROGRESS", "COMPLETED"} {
		w = call(t, r, http.MethodPatch, "/bookings/"+booking.ID+"/status", provider.Token, gin.H{"status": s})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = call(t, r, http.MethodGet, "/reviews/booking/"+booking.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, r, http.MethodPost, "/reviews", provider.Token, gin.H{"bookingId": booking.ID, "rating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	w = call(t, r, http.MethodPost, "/reviews", provider.Token, gin.H{"bookingId": booking.ID, "rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = call(t, r, http.MethodPost, "/reviews", client.Token, gin.H{"bookingId": booking.ID, "rating": 5, "comment": "Muy bien"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		AverageRating float64 `json:"averageRating"`
		TotalReviews  int     `json:"totalReviews"`
	}
	decode(t, w, &created)
	assert.Equal(t, 5.0, created.AverageRating)
	assert.Equal(t, 1, created.TotalReviews)

	w = call(t, r, http.MethodPost, "/reviews", client.Token, gin.H{"bookingId": booking.ID, "rating": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodGet, "/providers/"+providerID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Rating       float64 `json:"rating"`
		TotalReviews int     `json:"totalReviews"`
	}
	decode(t, w, &profile)
	assert.Equal(t, 5.0, profile.Rating)
	assert.Equal(t, 1, profile.TotalReviews)

	w = call(t, r, http.MethodGet, "/reviews/provider/"+providerID+"?page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Reviews []interface{} `json:"reviews"`
		Stats   struct {
			Distribution map[string]int `json:"ratingDistribution"`
		} `json:"stats"`
	}
	decode(t, w, &page)
	assert.Len(t, page.Reviews, 1)
	assert.Equal(t, 1, page.Stats.Distribution["5"])

	w = call(t, r, http.MethodGet, "/reviews/booking/"+booking.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byBooking struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	decode(t, w, &byBooking)
	assert.Equal(t, 5, byBooking.Rating)
	assert.Equal(t, "Muy bien", byBooking.Comment)
}

func TestScenarioShortPasswordPersistsNothing(t *testing.T) {
	r, db := setupRouter(t)

	w := call(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "corto@example.com", "password": "12345", "name": "Corto", "serviceCategory": "PINTURA",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	w = call(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "corto@example.com", "password": "12345"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFailures(t *testing.T) {
	r, _ := setupRouter(t)

	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodGet, "/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodGet, "/auth/me", "not-a-token", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodGet, "/bookings", "", nil).Code)

	w := call(t, r, http.MethodPost, "/auth/signup-client", "", gin.H{"email": "c@example.com", "password": "secreto", "name": "C"})
	require.Equal(t, http.StatusCreated, w.Code)
	var client authBody
	decode(t, w, &client)

	w = call(t, r, http.MethodGet, "/auth/me", client.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusForbidden, call(t, r, http.MethodGet, "/users", client.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, call(t, r, http.MethodPatch, "/reviews/x/response", client.Token, gin.H{"providerResponse": "hola"}).Code)
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodGet, "/providers/no-existe", "", nil).Code)

	w = call(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "c@example.com", "password": "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Credenciales inválidas"}`, w.Body.String())
}

func TestHealthSupportAndMetrics(t *testing.T) {
	r, _ := setupRouter(t)

	w := call(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]string
	decode(t, w, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "up", health["database"])
	assert.NotEmpty(t, health["uptime"])

	w = call(t, r, http.MethodPost, "/support/contact", "", gin.H{"nombre": "Ana", "email": "malo", "asunto": "x", "mensaje": "y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = call(t, r, http.MethodPost, "/support/contact", "", gin.H{"nombre": "Ana", "email": "ana@example.com", "asunto": "Hola", "mensaje": "Ayuda"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id"`)

	w = call(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodGet, "/favourites", "", nil).Code)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func TestProviderSignupClearsCachedListings(t *testing.T) {
	r, _ := setupRouterWithCache(t, newMemoryCache())

	w := call(t, r, http.MethodGet, "/providers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, "[]", w.Body.String())

	w = call(t, r, http.MethodGet, "/providers/categories/list", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = call(t, r, http.MethodGet, "/providers", "", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = call(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "ana@example.com", "password": "secreto", "name": "Ana", "serviceCategory": "plomero",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/providers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	var listed []map[string]interface{}
	decode(t, w, &listed)
	assert.Len(t, listed, 1)

	w = call(t, r, http.MethodGet, "/providers/categories/list", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	var categories []struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	decode(t, w, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "PLOMERIA", categories[0].Category)
	assert.Equal(t, 1, categories[0].Count)
}
