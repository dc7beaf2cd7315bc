package app

import (
	"bytes"
	"civilprep_backend/internal/config"
	"civilprep_backend/internal/middleware"
	"civilprep_backend/internal/util"
	"civilprep_backend/pkg/database"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testUsername = "aspirant"
	testPassword = "s3cret-pass"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: gin.TestMode},
		Auth:      config.AuthConfig{Username: testUsername, Password: testPassword, DisplayName: "Asha", ExamYear: 2026},
		JWT:       config.JWTConfig{Secret: "router-test-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Cache:     config.CacheConfig{SuggestionTTLMinutes: 30},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedPrincipal(db, &cfg.Auth))

	return New(cfg, db, nil)
}

func (a *App) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func login(t *testing.T, a *App) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": testUsername, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decode(t, w, &result)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, testUsername, result.User.Username)
	return result.Token
}

func TestHealthCheck(t *testing.T) {
	a := newTestApp(t)

	w := a.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	decode(t, w, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Components["database"])
	assert.Equal(t, "disabled", health.Components["redis"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestSwaggerDoc(t *testing.T) {
	a := newTestApp(t)

	w := a.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/api/subjects")
	assert.Contains(t, doc.Paths, "/api/practice/attempts")
}

func TestLoginAndAuthorization(t *testing.T) {
	a := newTestApp(t)

	w := a.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": testUsername, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": testUsername})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/subjects", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/subjects", "not-a-jwt", nil).Code)

	token := login(t, a)
	w = a.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	decode(t, w, &profile)
	assert.Equal(t, "Asha", profile.DisplayName)
	assert.Empty(t, profile.Password, "password hash never leaves the server")
}

func TestSubjectEndpoints(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	w := a.do(t, http.MethodPost, "/api/subjects", token, map[string]interface{}{
		"subject_name": "Polity", "category": "GS2", "total_lectures": 40, "total_dpps": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var subject struct {
		ID                   uint    `json:"id"`
		CompletedLectures    int     `json:"completed_lectures"`
		CompletionPercentage float64 `json:"completion_percentage"`
	}
	decode(t, w, &subject)
	require.NotZero(t, subject.ID)

	w = a.do(t, http.MethodPost, "/api/subjects", token, map[string]interface{}{"subject_name": "Polity"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPut, "/api/subjects", token, map[string]interface{}{"id": subject.ID, "field": "completed_lectures", "value": 20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &subject)
	assert.Equal(t, 20, subject.CompletedLectures)
	assert.InDelta(t, 30.0, subject.CompletionPercentage, 1e-9)

	w = a.do(t, http.MethodPut, "/api/subjects", token, map[string]interface{}{"id": subject.ID, "field": "user_id", "value": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPut, "/api/subjects", token, map[string]interface{}{"id": subject.ID, "field": "completed_dpps", "value": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPut, "/api/subjects", token, map[string]interface{}{"id": subject.ID, "field": "completed_dpps", "value": 1e12})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/subjects", token, map[string]interface{}{"subject_name": "Ethics", "completed_dpps": 1000000000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/subjects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []json.RawMessage
	decode(t, w, &list)
	assert.Len(t, list, 1)

	path := fmt.Sprintf("/api/subjects/%d", subject.ID)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodDelete, "/api/subjects/abc", token, nil).Code)
}

func TestGoalAndMoodEndpoints(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)
	today := time.Now().Format(util.DateFormat)

	w := a.do(t, http.MethodPost, "/api/goals", token, map[string]interface{}{
		"date": today, "subject": "Economy", "hours_studied": 4.5, "questions_solved": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/goals", token, map[string]interface{}{"date": "15/06/2025", "hours_studied": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/goals/summary?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Days           []json.RawMessage `json:"days"`
		TotalHours     float64           `json:"total_hours"`
		TotalQuestions int               `json:"total_questions"`
		ActiveDays     int               `json:"active_days"`
	}
	decode(t, w, &summary)
	assert.Len(t, summary.Days, 7)
	assert.Equal(t, 4.5, summary.TotalHours)
	assert.Equal(t, 30, summary.TotalQuestions)
	assert.Equal(t, 1, summary.ActiveDays)

	for _, mood := range []string{"tired", "excellent"} {
		w = a.do(t, http.MethodPost, "/api/moods", token, map[string]string{"date": today, "mood": mood})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = a.do(t, http.MethodPost, "/api/moods", token, map[string]string{"mood": "sleepy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/moods", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var moods []struct {
		Mood string `json:"mood"`
	}
	decode(t, w, &moods)
	require.Len(t, moods, 1, "one entry per day")
	assert.Equal(t, "excellent", moods[0].Mood)

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodDelete, "/api/moods/"+today, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, "/api/moods/"+today, token, nil).Code)
}

func TestPredictionEndpoint(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	type prediction struct {
		PredictedRank int   `json:"predicted_rank"`
		Seed          int64 `json:"seed"`
		Fallback      bool  `json:"fallback"`
	}
	fetch := func(path string) prediction {
		w := a.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var p prediction
		decode(t, w, &p)
		return p
	}

	first := fetch("/api/analytics/prediction?seed=42")
	second := fetch("/api/analytics/prediction?seed=42")
	assert.Equal(t, int64(42), first.Seed)
	assert.Equal(t, first, second)
	assert.False(t, first.Fallback)
	assert.Positive(t, first.PredictedRank)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/analytics/prediction?seed=abc", token, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/analytics/readiness", token, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/dashboard", token, nil).Code)
}

func TestAIEndpointsFallBackWithoutProvider(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	w := a.do(t, http.MethodPost, "/api/ai/chat", token, map[string]string{"message": "How should I revise Polity?"})
	require.Equal(t, http.StatusOK, w.Code)
	var reply struct {
		Reply    string `json:"reply"`
		Fallback bool   `json:"fallback"`
	}
	decode(t, w, &reply)
	assert.True(t, reply.Fallback)
	assert.NotEmpty(t, reply.Reply)

	w = a.do(t, http.MethodPost, "/api/ai/questions", token, map[string]interface{}{"subject": "Polity", "count": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var set struct {
		Subject   string            `json:"subject"`
		Questions []json.RawMessage `json:"questions"`
		Fallback  bool              `json:"fallback"`
	}
	decode(t, w, &set)
	assert.True(t, set.Fallback)
	assert.Equal(t, "Polity", set.Subject)
	assert.Len(t, set.Questions, 3)

	w = a.do(t, http.MethodPost, "/api/ai/questions", token, map[string]interface{}{"subject": "Polity", "difficulty": "extreme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/ai/chat/stream", token, map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "event:end")
}

func TestReportDownload(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	w := a.do(t, http.MethodGet, "/api/reports/progress.xlsx", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.MimeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Subjects")

	w = a.do(t, http.MethodPost, "/api/reports/progress", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var export struct {
		URL string `json:"url"`
	}
	decode(t, w, &export)
	assert.True(t, strings.HasPrefix(export.URL, "/uploads/reports/"))

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, export.URL, "", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/subjects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
