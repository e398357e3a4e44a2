package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/store"
)

const testCookieName = "resume_session"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRevocations struct {
	keys map[string]time.Duration
}

func (f *fakeRevocations) Set(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.StatusCmd {
	f.keys[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRevocations) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type fakeRateCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeRateCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRateCounter) Expire(_ context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(f.tasks)), Type: task.Type()}, nil
}

type fakePresigner struct {
	keys []string
	ttls []time.Duration
}

func (f *fakePresigner) GeneratePresignedURL(_ context.Context, objectKey string, duration time.Duration) (string, error) {
	f.keys = append(f.keys, objectKey)
	f.ttls = append(f.ttls, duration)
	return "https://files.example.invalid/" + objectKey + "?signature=x", nil
}

type testApp struct {
	router    *gin.Engine
	db        *gorm.DB
	users     store.UserStore
	resumes   store.ResumeStore
	rate      *fakeRateCounter
	enqueuer  *fakeEnqueuer
	presigner *fakePresigner
}

func newTestApp(t *testing.T, loginLimit int, configure ...func(*config.Config)) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	sessions, err := auth.NewSessionManager(strings.Repeat("k", 32), time.Hour, &fakeRevocations{keys: map[string]time.Duration{}})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	cfg := &config.Config{Session: config.SessionConfig{CookieName: testCookieName}}
	for _, fn := range configure {
		fn(cfg)
	}
	app := &testApp{
		db:        db,
		users:     store.NewUserStore(db),
		resumes:   store.NewResumeStore(db),
		rate:      &fakeRateCounter{counts: map[string]int64{}},
		enqueuer:  &fakeEnqueuer{},
		presigner: &fakePresigner{},
	}
	app.router = NewRouter(cfg, renderer, sessions, nil)
	RegisterRoutes(app.router, Dependencies{
		Users:                 app.users,
		Resumes:               app.resumes,
		Sessions:              sessions,
		RateCounter:           app.rate,
		Enqueuer:              app.enqueuer,
		Presigner:             app.presigner,
		CookieName:            testCookieName,
		LoginRateLimitPerHour: loginLimit,
	})
	return app
}

func (a *testApp) get(path string, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) post(path string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	return a.postWithHeaders(path, form, session, nil)
}

func (a *testApp) postWithHeaders(path string, form url.Values, session *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signup 注册账号并返回会话 Cookie。
func (a *testApp) signup(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := a.post("/signup.html", url.Values{
		"fname":    {"Ada"},
		"lname":    {"Lovelace"},
		"email":    {email},
		"password": {password},
	}, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("signup: expected 302 got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("signup did not set a session cookie")
	}
	return cookie
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q got %q", location, got)
	}
}

var errQueueDown = errors.New("queue unavailable")
