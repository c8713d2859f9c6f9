package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app"
	"github.com/jvincentbasto/my-space/config"
	"github.com/jvincentbasto/my-space/db"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/internal/cache"
	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/internal/service"
	"github.com/jvincentbasto/my-space/internal/store"
	"github.com/jvincentbasto/my-space/pkg/middleware"
	"github.com/jvincentbasto/my-space/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "appwrite-session"

type codes struct {
	mu   sync.Mutex
	sent map[string]string
}

func (m *codes) SendOTP(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent[to] = code
	return nil
}

func (m *codes) get(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sent[to]
}

type objects struct {
	mu sync.Mutex
	m  map[string]*model.Object
	b  map[string][]byte
}

func (o *objects) Put(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.m[key] = &model.Object{ContentType: contentType, Size: size}
	o.b[key] = b
	return nil
}

func (o *objects) Get(_ context.Context, key string) (*model.Object, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	obj, ok := o.m[key]
	if !ok {
		return nil, service.ErrNotFound
	}

	return &model.Object{
		Body:        io.NopCloser(bytes.NewReader(o.b[key])),
		ContentType: obj.ContentType,
		Size:        obj.Size,
	}, nil
}

func (o *objects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.m, key)
	delete(o.b, key)
	return nil
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	mail   *codes
	store  *objects
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:     config.App{Name: "My Space"},
		Host:    config.Host{CORSOrigins: []string{"http://localhost:3000"}},
		Storage: config.Storage{Endpoint: "http://localhost:8080", Bucket: "files", Project: "space", Quota: 1},
		Upload:  config.Upload{MaxSize: 1},
		Session: config.Session{Secret: "0123456789abcdef0123456789abcdef", CookieName: cookieName, TTL: time.Hour},
		Security: config.Security{
			RateLimit:   1000,
			RateBurst:   1000,
			MaxBodySize: 1,
		},
	}

	conn, err := db.New("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mail := &codes{sent: map[string]string{}}
	objs := &objects{m: map[string]*model.Object{}, b: map[string][]byte{}}
	views := cache.NewViews(persist.NewMemoryStore(time.Minute), time.Minute)

	accounts := service.NewAccountService(conn, security.NewSessionSigner(cfg.Session.Secret), mail, service.AccountOpts{})
	files := store.NewFileStore(conn)
	urls := &service.URLBuilder{Endpoint: cfg.Storage.Endpoint, Bucket: cfg.Storage.Bucket, Project: cfg.Storage.Project}
	uploader := service.NewUploader(files, objs, views, urls, cfg.MaxUploadBytes())

	d := &internal.Deps{
		Config: cfg,
		DB:     conn,
		Users:  service.NewUserService(accounts, store.NewUserStore(conn)),
		Files:  service.NewFileService(files, objs, views, uploader, cfg.QuotaBytes()),
		Views:  views,
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateBurst,
	})

	return &testServer{t: t, engine: app.NewEngine(d, limiter), mail: mail, store: objs}
}

func (s *testServer) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, cookie)
}

func (s *testServer) upload(name string, content []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, cookie)
}

// signUp registers a user and returns their session cookie
func (s *testServer) signUp(fullName, email string) *http.Cookie {
	s.t.Helper()

	w := s.json(http.MethodPost, "/api/users", gin.H{"fullName": fullName, "email": email}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		AccountID string `json:"accountId"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(s.t, res.AccountID)

	w = s.json(http.MethodPost, "/api/users/verify", gin.H{"accountId": res.AccountID, "otp": s.mail.get(strings.ToLower(email))}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}

	s.t.Fatal("no session cookie set")
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestSessionCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/api/users", gin.H{"fullName": "Ada", "email": "ada@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accountID := decode[map[string]string](t, w)["accountId"]

	w = s.json(http.MethodPost, "/api/users/verify", gin.H{"accountId": accountID, "otp": "000000x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = s.json(http.MethodPost, "/api/users/verify", gin.H{"accountId": accountID, "otp": s.mail.get("ada@example.com")}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Equal(t, accountID, decode[map[string]string](t, w)["accountId"])
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/api/users/login", gin.H{"email": "nobody@example.com"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode[map[string]any](t, w)["error"])

	w = s.json(http.MethodPost, "/api/users/otp", gin.H{"email": "not an email"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	cookie := s.signUp("Ada Lovelace", "Ada@Example.com")

	w = s.json(http.MethodGet, "/api/users/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.User](t, w)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, "Ada Lovelace", me.FullName)

	w = s.json(http.MethodPost, "/api/users/login", gin.H{"email": "ada@example.com"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, s.mail.get("ada@example.com"))

	w = s.json(http.MethodPost, "/api/users/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = s.json(http.MethodGet, "/api/users/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFileEndpointsRequireSession(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodHead, "/api/heartbeat", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/files"},
		{http.MethodGet, "/api/files/usage"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodDelete, "/api/files/abc"},
		{http.MethodGet, "/storage/buckets/files/files/abc/view"},
	} {
		w := s.json(r.method, r.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), r.path)
	}
}

func TestFileLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp("Ada", "ada@example.com")
	content := []byte("hello world")

	w := s.upload("notes.txt", content, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decode[model.File](t, w)
	assert.Equal(t, "notes.txt", f.Name)
	assert.Equal(t, "txt", f.Extension)
	assert.Equal(t, int64(len(content)), f.Size)
	assert.True(t, strings.HasPrefix(f.URL, "http://localhost:8080/storage/buckets/files/files/"))

	w = s.json(http.MethodGet, "/api/files", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[service.FileList](t, w)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, f.ID, list.Files[0].ID)

	w = s.json(http.MethodPatch, "/api/files/"+f.ID+"/name", gin.H{"name": "todo"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "todo.txt", decode[model.File](t, w).Name)

	// The cached listing is dropped by the rename
	w = s.json(http.MethodGet, "/api/files?query=todo", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[service.FileList](t, w)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, "todo.txt", list.Files[0].Name)

	w = s.json(http.MethodGet, "/storage/buckets/files/files/"+f.BucketField+"/download", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
	assert.Equal(t, "attachment; filename=todo.txt", w.Header().Get("Content-Disposition"))

	w = s.json(http.MethodGet, "/storage/buckets/other/files/"+f.BucketField+"/view", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(http.MethodGet, "/api/files/usage", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	usage := decode[model.Usage](t, w)
	assert.Equal(t, int64(len(content)), usage.Used)
	assert.Equal(t, int64(1<<20), usage.All)

	w = s.json(http.MethodDelete, "/api/files/"+f.ID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode[map[string]string](t, w)["status"])

	w = s.json(http.MethodGet, "/api/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[service.Dashboard](t, w)
	assert.Zero(t, dash.Files.Total)
	assert.Zero(t, dash.Usage.Used)
	assert.Empty(t, s.store.m)
}

func TestSharing(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("Ada", "ada@example.com")
	guest := s.signUp("Bob", "bob@example.com")

	w := s.upload("photo.png", []byte("\x89PNG\r\n\x1a\n0000"), owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decode[model.File](t, w)

	w = s.json(http.MethodGet, "/api/files", nil, guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[service.FileList](t, w).Total)

	w = s.json(http.MethodPut, "/api/files/"+f.ID+"/users", gin.H{"emails": []string{"BOB@example.com"}}, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.StringSlice{"bob@example.com"}, decode[model.File](t, w).Users)

	w = s.json(http.MethodGet, "/api/files/category/images", nil, guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[service.FileList](t, w).Total)

	w = s.json(http.MethodGet, "/storage/buckets/files/files/"+f.BucketField+"/view", nil, guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.json(http.MethodPatch, "/api/files/"+f.ID+"/name", gin.H{"name": "mine"}, guest)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Shared files don't count towards the guest's usage
	w = s.json(http.MethodGet, "/api/files/usage", nil, guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[model.Usage](t, w).Used)

	w = s.json(http.MethodPut, "/api/files/"+f.ID+"/users", gin.H{"emails": []string{}}, owner)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/storage/buckets/files/files/"+f.BucketField+"/view", nil, guest)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListValidation(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp("Ada", "ada@example.com")

	for _, path := range []string{
		"/api/files?sort=owner-asc",
		"/api/files?limit=0",
		"/api/files?type=spreadsheet",
	} {
		w := s.json(http.MethodGet, path, nil, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w := s.json(http.MethodPut, "/api/files/abc/users", gin.H{}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
