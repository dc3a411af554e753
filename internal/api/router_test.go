package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ourworld/internal/auth"
	"github.com/yourusername/ourworld/internal/models"
	"github.com/yourusername/ourworld/internal/storage"
	"github.com/yourusername/ourworld/internal/store"
)

const testPassword = "starlight"

var _ ContentService = (*store.Content)(nil)

type testServer struct {
	router   *gin.Engine
	sessions *auth.MemorySessionStore
}

func writePublicFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":    "<html>entry</html>",
		"home.html":     "<html>home</html>",
		"css/site.css":  "body{}",
		"js/api.js":     "export {}",
		"data.unknown1": "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n",
	}
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Seed(ctx, db))

	credentials := auth.NewCredentialStore(store.NewUsers(db))
	_, err = credentials.Bootstrap(ctx, testPassword)
	require.NoError(t, err)

	assets, err := storage.NewLocal(writePublicFiles(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = assets.Close() })

	sessions := auth.NewMemorySessionStore(0)
	router := NewRouter(Deps{
		Policy:   auth.NewPolicy("/index.html"),
		Sessions: sessions,
		Auth:     auth.NewHandler(credentials, sessions, nil, false),
		Content:  store.NewContent(db),
		Assets:   assets,
	})
	return &testServer{router: router, sessions: sessions}
}

func (s *testServer) do(method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// login はログインしてセッショントークンを返します。
func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/login", `{"password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c.Value
		}
	}
	t.Fatal("login did not set a session cookie")
	return ""
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLoginSessionLogoutFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/login", `{"password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Incorrect password."}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/login", `{"password":"starlight"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.SessionCookieName+"=")
	token := rec.Result().Cookies()[0].Value

	rec = s.do(http.MethodGet, "/api/session", "", token)
	assert.JSONEq(t, `{"authenticated":true}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	rec = s.do(http.MethodGet, "/api/session", "", token)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	for _, r := range Table {
		if r.Op == OpSessionGet || r.Op == OpSessionLogin {
			continue
		}
		target := strings.ReplaceAll(r.Pattern, ":id", "1")
		for _, token := range []string{"", "forged-token"} {
			rec := s.do(r.Method, target, "", token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.Method, target)
			assert.JSONEq(t, `{"message":"Authentication required."}`, rec.Body.String())
		}
	}
}

func TestAuthenticationIsCheckedBeforeBody(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodPost, "/api/notes", `{"message":""}`},
		{http.MethodPost, "/api/poll/vote", `{}`},
		{http.MethodPost, "/api/bucket/not-a-number/toggle", ""},
		{http.MethodDelete, "/api/notes/abc", ""},
	} {
		rec := s.do(tc.method, tc.target, tc.body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.target)
	}
}

func TestContentReads(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	home := decode[models.Home](t, s.do(http.MethodGet, "/api/home", "", token))
	require.NotNil(t, home.StartDate)
	assert.NotEmpty(t, home.UpcomingEvents)

	blog := decode[struct{ Posts []models.Post }](t, s.do(http.MethodGet, "/api/blog", "", token))
	assert.NotEmpty(t, blog.Posts)

	dates := decode[models.Dates](t, s.do(http.MethodGet, "/api/dates", "", token))
	assert.NotEmpty(t, dates.DateIdeas)
	assert.NotEmpty(t, dates.BucketItems)

	special := decode[models.Special](t, s.do(http.MethodGet, "/api/special", "", token))
	assert.NotEmpty(t, special.Milestones)
	assert.NotEmpty(t, special.Countdowns)

	fun := decode[models.Fun](t, s.do(http.MethodGet, "/api/fun", "", token))
	assert.NotEmpty(t, fun.WheelIdeas)
	assert.NotEmpty(t, fun.QuizQuestions)
	assert.NotEmpty(t, fun.PollOptions)

	rec := s.do(http.MethodGet, "/api/notes", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notes":[`)
}

func TestNotesLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`, `oops`} {
		rec := s.do(http.MethodPost, "/api/notes", body, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"message":"Note message is required."}`, rec.Body.String())
	}

	rec := s.do(http.MethodPost, "/api/notes", `{"message":"hi"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	note := decode[models.Note](t, rec)
	assert.Positive(t, note.ID)
	assert.Equal(t, "hi", note.Message)
	assert.Equal(t, store.DefaultNoteAuthor, note.Author)
	assert.NotEmpty(t, note.Date)

	rec = s.do(http.MethodPost, "/api/notes", `{"message":"  see you  ","author":" Mia "}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[models.Note](t, rec)
	assert.Equal(t, "see you", second.Message)
	assert.Equal(t, "Mia", second.Author)

	list := decode[struct{ Notes []models.Note }](t, s.do(http.MethodGet, "/api/notes", "", token))
	require.GreaterOrEqual(t, len(list.Notes), 2)
	assert.Equal(t, second.ID, list.Notes[0].ID, "newest note first")

	target := "/api/notes/" + jsonNumber(note.ID)
	rec = s.do(http.MethodDelete, target, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.do(http.MethodDelete, target, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Note not found."}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/notes/abc", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid note."}`, rec.Body.String())
}

func TestBucketToggle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	dates := decode[models.Dates](t, s.do(http.MethodGet, "/api/dates", "", token))
	require.NotEmpty(t, dates.BucketItems)
	item := dates.BucketItems[0]
	target := "/api/bucket/" + jsonNumber(item.ID) + "/toggle"

	type toggled struct {
		ID        int64 `json:"id"`
		Completed bool  `json:"completed"`
	}
	first := decode[toggled](t, s.do(http.MethodPost, target, "", token))
	assert.Equal(t, item.ID, first.ID)
	assert.Equal(t, !item.Completed, first.Completed)

	second := decode[toggled](t, s.do(http.MethodPost, target, "", token))
	assert.Equal(t, item.Completed, second.Completed, "toggling twice restores the starting value")

	rec := s.do(http.MethodPost, "/api/bucket/99999/toggle", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Bucket item not found."}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/bucket/first/toggle", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid bucket item."}`, rec.Body.String())
}

func TestPollVote(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	fun := decode[models.Fun](t, s.do(http.MethodGet, "/api/fun", "", token))
	require.NotEmpty(t, fun.PollOptions)
	option := fun.PollOptions[0]

	for _, body := range []string{`{}`, `{"optionId":null}`, `{"optionId":"1"}`, `{"optionId":1.5}`, `nope`} {
		rec := s.do(http.MethodPost, "/api/poll/vote", body, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"message":"Option id is required."}`, rec.Body.String())
	}

	rec := s.do(http.MethodPost, "/api/poll/vote", `{"optionId":99999}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Poll option not found."}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/poll/vote", `{"optionId":`+jsonNumber(option.ID)+`}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	voted := decode[struct{ Options []models.PollOption }](t, rec)
	require.Len(t, voted.Options, len(fun.PollOptions))
	for _, o := range voted.Options {
		if o.ID == option.ID {
			assert.Equal(t, option.Votes+1, o.Votes)
		}
	}
}

func TestPreflightNeedsNoSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodOptions, "/api/notes", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	req := httptest.NewRequest(http.MethodOptions, "/api/anything/at/all", nil)
	req.Header.Set("Origin", "http://elsewhere.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	cross := httptest.NewRecorder()
	s.router.ServeHTTP(cross, req)

	assert.Equal(t, http.StatusNoContent, cross.Code)
	assert.Empty(t, cross.Body.String())
	assert.Equal(t, "http://elsewhere.test", cross.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", cross.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCrossOriginRequestReflectsOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Origin", "http://elsewhere.test")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://elsewhere.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestUnmatchedRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	for _, tc := range []struct{ method, target, token string }{
		{http.MethodGet, "/api/unknown", ""},
		{http.MethodGet, "/api/unknown", token},
		{http.MethodPut, "/api/notes", token},
		{http.MethodGet, "/api/notes/", token},
		{http.MethodGet, "/api", ""},
		{http.MethodPost, "/index.html", ""},
	} {
		rec := s.do(tc.method, tc.target, "", tc.token)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.target)
		assert.JSONEq(t, `{"message":"Not found."}`, rec.Body.String())
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>entry</html>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = s.do(http.MethodGet, "/css/site.css", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	rec = s.do(http.MethodGet, "/data.unknown1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = s.do(http.MethodGet, "/missing.html", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/css/", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "directory listings are never served")

	rec = s.do(http.MethodHead, "/index.html", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProtectedPages(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/home.html", "//home.html", "/./home.html", "/js/../home.html", "/fun.html"} {
		rec := s.do(http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/index.html", rec.Header().Get("Location"), target)
	}

	token := s.login(t)
	rec := s.do(http.MethodGet, "/home.html", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>home</html>", rec.Body.String())

	// ログイン済みでもファイルが無ければ 404
	rec = s.do(http.MethodGet, "/fun.html", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/session", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestClassify(t *testing.T) {
	policy := auth.NewPolicy("/index.html")

	tests := []struct {
		method string
		path   string
		want   Class
	}{
		{http.MethodGet, "/api/session", ClassAPIPublic},
		{http.MethodPost, "/api/login", ClassAPIPublic},
		{http.MethodOptions, "/api/notes", ClassAPIPublic},
		{http.MethodPost, "/api/logout", ClassAPIProtected},
		{http.MethodDelete, "/api/notes/12", ClassAPIProtected},
		{http.MethodPost, "/api/bucket/3/toggle", ClassAPIProtected},
		{http.MethodGet, "/api/bucket/3/toggle", ClassAPIUnknown},
		{http.MethodGet, "/api/nope", ClassAPIUnknown},
		{http.MethodGet, "/home.html", ClassStaticProtected},
		{http.MethodGet, "//notes.html", ClassStaticProtected},
		{http.MethodGet, "/index.html", ClassStaticPublic},
		{http.MethodGet, "/", ClassStaticPublic},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(policy, tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestMatch(t *testing.T) {
	r, ok := Match(http.MethodDelete, "/api/notes/7")
	require.True(t, ok)
	assert.Equal(t, OpNotesDelete, r.Op)

	_, ok = Match(http.MethodDelete, "/api/notes")
	assert.False(t, ok)
	_, ok = Match(http.MethodPost, "/api/bucket//toggle")
	assert.False(t, ok)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
