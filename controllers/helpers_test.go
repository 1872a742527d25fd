package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/haven-community/haven/config"
	"github.com/haven-community/haven/middleware"
	"github.com/haven-community/haven/models"
	"github.com/haven-community/haven/moderation"
	"github.com/haven-community/haven/stores"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:    "test-secret",
		CookieSecure: false,
	})
}

// testClassifier scores "hate" as toxic and everything else as benign.
func testClassifier(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		score := 0.1
		if strings.Contains(strings.ToLower(req.Message), "hate") {
			score = 0.8
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"probability": score,
			"categories":  map[string]float64{"toxicity": score},
		})
	}))
}

// newTestRouter wires the API against an in-memory store and the given
// classifier, mirroring the production route table minus rate limiting.
func newTestRouter(t *testing.T, classifierURL string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.ProfessionalProfile{},
		&models.Post{}, &models.Comment{}, &models.PostLike{},
		&models.Professional{},
	))

	userStore := stores.NewUserStore(db)
	feedStore := stores.NewFeedStore(db)
	feedQuery := stores.NewFeedQuery(db)
	gate := moderation.NewGate(classifierURL, 0.5, time.Second)
	t.Cleanup(func() { _ = gate.Close() })

	authController := NewAuthController(userStore)
	postController := NewPostController(feedStore, feedQuery, gate)
	professionalController := NewProfessionalController(db)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/signup", authController.Signup)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", middleware.AuthRequired(userStore), authController.Me)
	api.POST("/auth/logout", middleware.AuthRequired(userStore), authController.Logout)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/professionals", professionalController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(userStore))
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.POST("/posts/:id/like", postController.Like)
	protected.POST("/professionals", professionalController.Create)

	return r, db
}

func doJSON(r *gin.Engine, method, path string, body interface{}, cookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", middleware.TokenCookie+"="+cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

// signupAndGetToken registers a casual user and returns the session token
// from the Set-Cookie header.
func signupAndGetToken(t *testing.T, r *gin.Engine, name, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"name": name, "email": email, "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}
