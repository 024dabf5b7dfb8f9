package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/learning-content-service/internal/auth"
	"github.com/SAP-F-2025/learning-content-service/internal/events"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories/gormstore"
	"github.com/SAP-F-2025/learning-content-service/internal/services"
	"github.com/SAP-F-2025/learning-content-service/internal/utils"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

const testSecret = "handler-test-secret-32-bytes-long!"

type apiEnv struct {
	router *gin.Engine
	jwt    *auth.JWTManager

	instructor *models.User
	other      *models.User
	student    *models.User
	admin      *models.User
	cisco      uint
}

func newAPIEnv(t *testing.T, config RouterConfig) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	repo := gormstore.NewGormRepository(gormstore.RepositoryConfig{DB: db})
	ctx := context.Background()
	_, err = repo.Category().Seed(ctx, models.DefaultCategories())
	require.NoError(t, err)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)

	sm := services.NewServiceManager(repo, slogger, validator.New(), services.ServiceManagerConfig{
		EnforceOwnership: true,
		Publisher:        events.NewMockEventPublisher(slogger),
		TokenIssuer:      jwtManager,
	})
	require.NoError(t, sm.Initialize(ctx))

	if config.AuthRateRPS == 0 {
		config.AuthRateRPS = 1000
		config.AuthRateBurst = 1000
	}

	appLogger := utils.NewSlogLogger(slogger)
	env := &apiEnv{
		router: NewRouter(NewHandlerManager(sm, jwtManager, appLogger, config), appLogger),
		jwt:    jwtManager,
	}

	mkUser := func(name string, role models.UserRole) *models.User {
		hash, err := auth.HashPassword("secret1")
		require.NoError(t, err)
		u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: hash, Role: role}
		require.NoError(t, repo.User().Create(ctx, u))
		return u
	}
	env.instructor = mkUser("guru_andi", models.RoleInstructor)
	env.other = mkUser("guru_rina", models.RoleInstructor)
	env.student = mkUser("siswa_budi", models.RoleStudent)
	env.admin = mkUser("admin", models.RoleAdmin)

	categories, err := repo.Category().List(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		if c.Name == "Cisco Networking" {
			env.cisco = c.ID
		}
	}

	return env
}

func (e *apiEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := e.jwt.Issue(u)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(t, user))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) createMaterial(t *testing.T, title string, user *models.User) uint {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/materials", map[string]interface{}{
		"title":       title,
		"description": "Dasar " + title,
		"content":     "# " + title,
		"category_id": e.cisco,
		"duration":    "45 menit",
	}, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.ID)
	assert.Equal(t, "Material created successfully", resp.Message)
	return *resp.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestMaterialRoutes_PublicReads(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})

	w := env.do(t, http.MethodGet, "/api/materials", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	id := env.createMaterial(t, "Konfigurasi VLAN", env.instructor)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLen  int
	}{
		{"all", "/api/materials?category=all", http.StatusOK, 1},
		{"matching category", "/api/materials?category=Cisco%20Networking", http.StatusOK, 1},
		{"other category", "/api/materials?category=Mikrotik", http.StatusOK, 0},
		{"search hit", "/api/materials/search?q=vlan", http.StatusOK, 1},
		{"search miss", "/api/materials/search?q=ospf", http.StatusOK, 0},
		{"blank search", "/api/materials/search?q=%20%20", http.StatusOK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil, nil)
			require.Equal(t, tt.wantCode, w.Code)
			views := decode[[]models.MaterialView](t, w)
			assert.Len(t, views, tt.wantLen)
		})
	}

	w = env.do(t, http.MethodGet, "/api/materials/"+itoa(id), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[models.MaterialDetail](t, w)
	assert.Equal(t, "Konfigurasi VLAN", detail.Title)
	assert.Equal(t, "guru_andi", *detail.Author)
	assert.Contains(t, detail.ContentHTML, "<h1")
}

func TestMaterialRoutes_GetErrors(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})

	w := env.do(t, http.MethodGet, "/api/materials/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/materials/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Material not found", decode[ErrorResponse](t, w).Message)
}

func TestMaterialRoutes_CreateErrors(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})

	tests := []struct {
		name     string
		body     interface{}
		user     *models.User
		wantCode int
		wantMsg  string
	}{
		{
			name:     "no token",
			body:     map[string]interface{}{"title": "x", "category_id": env.cisco},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing title",
			body:     map[string]interface{}{"category_id": env.cisco},
			user:     env.instructor,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Validation failed",
		},
		{
			name:     "missing category",
			body:     map[string]interface{}{"title": "OSPF"},
			user:     env.instructor,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Validation failed",
		},
		{
			name:     "unknown category",
			body:     map[string]interface{}{"title": "OSPF", "category_id": 999},
			user:     env.instructor,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Category does not exist",
		},
		{
			name:     "unknown field",
			body:     map[string]interface{}{"title": "OSPF", "category_id": env.cisco, "author": "x"},
			user:     env.instructor,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Invalid request payload",
		},
		{
			name:     "malformed json",
			body:     `{"title":`,
			user:     env.instructor,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Invalid request payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/materials", tt.body, tt.user)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decode[ErrorResponse](t, w).Message)
			}
		})
	}
}

func TestMaterialRoutes_UpdateAndDelete(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})
	id := env.createMaterial(t, "Routing Statis", env.instructor)
	path := "/api/materials/" + itoa(id)

	body := map[string]interface{}{"title": "Routing Dinamis", "category_id": env.cisco}

	w := env.do(t, http.MethodPut, path, body, env.other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, path, body, env.instructor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Material updated successfully", decode[models.MessageResponse](t, w).Message)

	w = env.do(t, http.MethodPut, "/api/materials/999", body, env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, path, nil, env.other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, path, nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Material deleted successfully", decode[models.MessageResponse](t, w).Message)

	// deleting again is not an error
	w = env.do(t, http.MethodDelete, path, nil, env.instructor)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaterialRoutes_StaffOnly(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})
	id := env.createMaterial(t, "Subnetting", env.instructor)

	w := env.do(t, http.MethodGet, "/api/materials/export", nil, env.student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/materials/export?category=all", nil, env.instructor)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, w.Body.Len())

	w = env.do(t, http.MethodGet, "/api/materials/"+itoa(id)+"/audit", nil, env.student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/materials/"+itoa(id)+"/audit", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	audits := decode[[]models.MaterialAudit](t, w)
	require.Len(t, audits, 1)
	assert.Equal(t, models.AuditCreated, audits[0].Action)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})

	expired := auth.NewJWTManager(testSecret, -time.Minute)
	expiredToken, err := expired.Issue(env.instructor)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing header", "", "authorization header missing"},
		{"wrong scheme", "Basic abc", "invalid authorization header format"},
		{"garbage token", "Bearer abc.def.ghi", "invalid token"},
		{"expired token", "Bearer " + expiredToken, "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			body := decode[map[string]string](t, w)
			assert.Equal(t, "unauthorized", body["error"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestAuthRoutes_RegisterLoginMe(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})

	register := map[string]string{"username": "siswa_cici", "email": "Cici@Example.com", "password": "rahasia1"}

	w := env.do(t, http.MethodPost, "/api/auth/register", register, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[models.AuthResponse](t, w)
	assert.Equal(t, models.RoleStudent, registered.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodPost, "/api/auth/register", register, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "cici@example.com", "password": "salah123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "cici@example.com", "password": "rahasia1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[models.AuthResponse](t, w)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	assert.Equal(t, "siswa_cici", me.Username)
}

func TestRateLimitMiddleware(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{AuthRateRPS: 0.001, AuthRateBurst: 2})

	creds := map[string]string{"email": "nobody@example.com", "password": "secret1"}
	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodPost, "/api/auth/login", creds, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/auth/login", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// reads are not limited
	w = env.do(t, http.MethodGet, "/api/categories", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimiterCache_ClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	first := lc.get("10.0.0.1")
	assert.Same(t, first, lc.get("10.0.0.1"))

	lc.get("10.0.0.2")
	lc.clearIfExceeds(1)
	assert.NotSame(t, first, lc.get("10.0.0.1"))
}

func TestCategoriesAndHealth(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{})

	w := env.do(t, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]models.Category](t, w)
	require.Len(t, categories, len(models.DefaultCategories()))
	assert.Equal(t, "Cisco Networking", categories[0].Name)

	w = env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORSMiddleware(t *testing.T) {
	env := newAPIEnv(t, RouterConfig{AllowedOrigins: []string{"https://learn.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/materials", nil)
	req.Header.Set("Origin", "https://learn.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://learn.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/materials", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
