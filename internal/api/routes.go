// Package api はルーティング表に従ってリクエストを認可し、各操作へ振り分けます。
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/auth"
	"github.com/yourusername/ourworld/internal/logging"
	"github.com/yourusername/ourworld/internal/storage"
)

// Op は操作の識別子です。
type Op string

const (
	OpSessionGet    Op = "session.get"
	OpSessionLogin  Op = "session.login"
	OpSessionLogout Op = "session.logout"
	OpHomeGet       Op = "home.get"
	OpBlogList      Op = "blog.list"
	OpDatesGet      Op = "dates.get"
	OpSpecialGet    Op = "special.get"
	OpNotesList     Op = "notes.list"
	OpNotesCreate   Op = "notes.create"
	OpNotesDelete   Op = "notes.delete"
	OpBucketToggle  Op = "bucket.toggle"
	OpPollVote      Op = "poll.vote"
	OpFunGet        Op = "fun.get"
	OpPreflight     Op = "preflight"
)

// Class はログ用のリクエスト分類です。
type Class string

const (
	ClassStaticPublic    Class = "static-public"
	ClassStaticProtected Class = "static-protected"
	ClassAPIPublic       Class = "api-public"
	ClassAPIProtected    Class = "api-protected"
	ClassAPIUnknown      Class = "api-unknown"
)

// Route はルーティング表の1行です。Pattern の ":id" は1セグメントに一致します。
type Route struct {
	Method  string
	Pattern string
	Op      Op
}

// Table は API のルーティング表です。
var Table = []Route{
	{http.MethodGet, "/api/session", OpSessionGet},
	{http.MethodPost, "/api/login", OpSessionLogin},
	{http.MethodPost, "/api/logout", OpSessionLogout},
	{http.MethodGet, "/api/home", OpHomeGet},
	{http.MethodGet, "/api/blog", OpBlogList},
	{http.MethodGet, "/api/dates", OpDatesGet},
	{http.MethodGet, "/api/special", OpSpecialGet},
	{http.MethodGet, "/api/notes", OpNotesList},
	{http.MethodPost, "/api/notes", OpNotesCreate},
	{http.MethodDelete, "/api/notes/:id", OpNotesDelete},
	{http.MethodPost, "/api/bucket/:id/toggle", OpBucketToggle},
	{http.MethodPost, "/api/poll/vote", OpPollVote},
	{http.MethodGet, "/api/fun", OpFunGet},
}

// Deps はルーターが必要とする依存です。
type Deps struct {
	Policy   *auth.Policy
	Sessions auth.SessionStore
	Auth     *auth.Handler
	Content  ContentService
	Assets   *storage.Local // nil なら静的ファイルはすべて 404
	Logger   logging.Logger

	// AllowedOrigins が空の場合はリクエストの Origin をそのまま許可します。
	AllowedOrigins []string
}

func (d Deps) handlers() map[Op]gin.HandlerFunc {
	return map[Op]gin.HandlerFunc{
		OpSessionGet:    d.Auth.Session,
		OpSessionLogin:  d.Auth.Login,
		OpSessionLogout: d.Auth.Logout,
		OpHomeGet:       HomeHandler(d.Content),
		OpBlogList:      BlogHandler(d.Content),
		OpDatesGet:      DatesHandler(d.Content),
		OpSpecialGet:    SpecialHandler(d.Content),
		OpNotesList:     ListNotesHandler(d.Content),
		OpNotesCreate:   CreateNoteHandler(d.Content),
		OpNotesDelete:   DeleteNoteHandler(d.Content),
		OpBucketToggle:  ToggleBucketHandler(d.Content),
		OpPollVote:      VotePollHandler(d.Content),
		OpFunGet:        FunHandler(d.Content),
	}
}

// NewRouter はミドルウェアとルーティング表を登録した gin.Engine を返します。
//
// 表にある API はすべて Guard を通してから各ハンドラーに渡します。
// 表に無い /api のパスと GET/HEAD 以外のメソッドは、認可もストアも通さず 404 を返します。
// それ以外は Guard の後に公開ディレクトリから配信します。
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(logging.RequestLogger(logger, func(method, path string) string {
		return string(Classify(d.Policy, method, path))
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c, logger).Error(c.Request.Context(), "panic recovered", "panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
	}))
	router.Use(cors.New(corsConfig(d.AllowedOrigins)))

	guard := auth.Guard(d.Policy, d.Sessions)
	handlers := d.handlers()
	for _, r := range Table {
		h, ok := handlers[r.Op]
		if !ok {
			panic(fmt.Sprintf("api: no handler registered for %s", r.Op))
		}
		router.Handle(r.Method, r.Pattern, guard, h)
	}
	router.OPTIONS("/api/*path", Preflight)

	router.NoRoute(unmatched, guard, StaticHandler(d.Assets))

	return router
}

// unmatched は表に無いリクエストを静的配信に回すかどうかを決めます。
func unmatched(c *gin.Context) {
	method := c.Request.Method
	switch {
	case method == http.MethodOptions:
		Preflight(c)
		c.Abort()
	case auth.IsAPIPath(c.Request.URL.Path):
		respondNotFound(c)
	case method != http.MethodGet && method != http.MethodHead:
		respondNotFound(c)
	default:
		c.Next()
	}
}

// Classify はリクエストを分類します。判定は Guard と同じ Policy とルーティング表に従います。
func Classify(policy *auth.Policy, method, rawPath string) Class {
	cleaned := auth.CleanPath(rawPath)

	if !auth.IsAPIPath(cleaned) {
		if policy != nil && policy.IsProtectedPage(cleaned) {
			return ClassStaticProtected
		}
		return ClassStaticPublic
	}

	if method == http.MethodOptions {
		return ClassAPIPublic
	}
	if _, ok := Match(method, cleaned); !ok {
		return ClassAPIUnknown
	}
	if policy != nil && policy.Decide(method, cleaned, false) == auth.Allow {
		return ClassAPIPublic
	}
	return ClassAPIProtected
}

// Match はルーティング表から一致する行を探します。
func Match(method, rawPath string) (Route, bool) {
	segments := splitPath(auth.CleanPath(rawPath))
	for _, r := range Table {
		if r.Method == method && matchSegments(splitPath(r.Pattern), segments) {
			return r, true
		}
	}
	return Route{}, false
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
