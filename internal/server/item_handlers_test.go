package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"bucketlist/internal/config"
	"bucketlist/internal/database"
	"bucketlist/internal/models"
	"bucketlist/internal/repository"
	"bucketlist/internal/service"
	"bucketlist/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// apiFixture is an end-to-end handler fixture backed by in-memory SQLite and
// a stubbed object store.
type apiFixture struct {
	app   *fiber.App
	db    *gorm.DB
	store *testutil.ObjectStoreStub
	owner *models.User
	other *models.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	cfg := &config.Config{
		PhotoBaseURL:         "https://photos.example.com",
		PhotoMaxUploadSizeMB: 10,
		SessionTTLHours:      24,
	}

	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	store := testutil.NewObjectStoreStub()

	s := &Server{
		config:         cfg,
		db:             db,
		userRepo:       userRepo,
		itemRepo:       itemRepo,
		photoRepo:      photoRepo,
		sessionService: service.NewSessionService(userRepo, 24*time.Hour, bcrypt.MinCost),
	}
	s.photoService = service.NewPhotoService(photoRepo, store, cfg)
	s.itemService = service.NewItemService(itemRepo, s.photoService)

	app := fiber.New()
	s.SetupRoutes(app)

	owner := &models.User{
		Email: "owner@example.com", Password: "x",
		SessionToken: "owner-session", UpdateToken: "owner-update",
		SessionExpiresAt: time.Now().Add(time.Hour),
	}
	other := &models.User{
		Email: "other@example.com", Password: "x",
		SessionToken: "other-session", UpdateToken: "other-update",
		SessionExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(owner).Error)
	require.NoError(t, db.Create(other).Error)

	return &apiFixture{app: app, db: db, store: store, owner: owner, other: other}
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req, err = http.NewRequest(method, path, bytesReader(b))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
	} else {
		var err error
		req, err = http.NewRequest(method, path, nil)
		require.NoError(t, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeItem(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestCreateItemEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	// Unauthenticated create is rejected.
	resp := f.request(t, http.MethodPost, "/api/items/", "", map[string]any{"name": "Skydive"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{
		"name":     "Skydive over Interlaken",
		"location": "Interlaken, Switzerland",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	item := decodeItem(t, resp)
	assert.Equal(t, "Skydive over Interlaken", item["name"])
	assert.EqualValues(t, 0, item["likes_count"])

	resp = f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetItemsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{"name": "Visit Petra"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Anonymous list works and the liked flag stays false.
	resp = f.request(t, http.MethodGet, "/api/items/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, false, items[0]["liked"])
}

func TestToggleItemLikeEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{"name": "Visit Petra"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	itemID := decodeItem(t, resp)["id"]

	path := "/api/items/" + jsonNumberString(itemID) + "/like"

	resp = f.request(t, http.MethodPost, path, "other-session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decodeItem(t, resp)
	assert.EqualValues(t, 1, item["likes_count"])
	assert.Equal(t, true, item["liked"])

	// Toggling again removes the like.
	resp = f.request(t, http.MethodPost, path, "other-session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item = decodeItem(t, resp)
	assert.EqualValues(t, 0, item["likes_count"])
	assert.Equal(t, false, item["liked"])

	resp = f.request(t, http.MethodPost, "/api/items/9999/like", "other-session", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/items/abc/like", "other-session", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateItemEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{"name": "Original"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	path := "/api/items/" + jsonNumberString(decodeItem(t, resp)["id"])

	// Another user cannot touch it.
	resp = f.request(t, http.MethodPut, path, "other-session", map[string]any{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.request(t, http.MethodPut, path, "owner-session", map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", decodeItem(t, resp)["name"])
}

func TestDeleteItemEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{"name": "Doomed"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	path := "/api/items/" + jsonNumberString(decodeItem(t, resp)["id"])

	resp = f.request(t, http.MethodDelete, path, "other-session", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.request(t, http.MethodDelete, path, "owner-session", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.request(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetUserItemsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/api/items/", "owner-session", map[string]any{"name": "Mine"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(t, http.MethodGet, "/api/users/"+jsonNumberString(float64(f.owner.ID))+"/items", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Len(t, items, 1)

	// A user with no items gets an empty array, not null.
	resp = f.request(t, http.MethodGet, "/api/users/"+jsonNumberString(float64(f.other.ID))+"/items", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readAll(t, resp)
	assert.JSONEq(t, "[]", body)
}
