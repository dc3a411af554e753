package auth

import (
	"net/http"
	"path"
	"strings"
)

// Decision はアクセス可否の判定結果です。
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	Unauthenticated
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

const (
	apiPrefix   = "/api/"
	sessionPath = "/api/session"
	loginPath   = "/api/login"
)

// DefaultProtectedPages はログイン後にだけ表示できるページです。
var DefaultProtectedPages = []string{
	"/home.html",
	"/memories.html",
	"/blog.html",
	"/dates.html",
	"/special.html",
	"/notes.html",
	"/fun.html",
}

// Policy はリクエストのパスとセッションの有無からアクセス可否を決めます。
type Policy struct {
	EntryPage      string
	protectedPages map[string]struct{}
}

// NewPolicy は Policy を作成します。pages が空なら DefaultProtectedPages を使います。
func NewPolicy(entryPage string, pages ...string) *Policy {
	if len(pages) == 0 {
		pages = DefaultProtectedPages
	}
	set := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		set[strings.ToLower(CleanPath(p))] = struct{}{}
	}
	return &Policy{EntryPage: entryPage, protectedPages: set}
}

// Decide は以下の順で判定します。
//  1. GET /api/session と POST /api/login は常に許可
//  2. その他の /api/ 配下はログイン済みのときだけ許可
//  3. 保護ページは未ログインならログインページへリダイレクト
//  4. それ以外の静的パスは常に許可
func (p *Policy) Decide(method, rawPath string, authenticated bool) Decision {
	cleaned := CleanPath(rawPath)

	switch {
	case cleaned == sessionPath && method == http.MethodGet:
		return Allow
	case cleaned == loginPath && method == http.MethodPost:
		return Allow
	case IsAPIPath(cleaned):
		if authenticated {
			return Allow
		}
		return Unauthenticated
	case p.IsProtectedPage(cleaned):
		if authenticated {
			return Allow
		}
		return RedirectToLogin
	default:
		return Allow
	}
}

// IsProtectedPage は保護ページかどうかを返します（大文字小文字は区別しません）。
func (p *Policy) IsProtectedPage(rawPath string) bool {
	_, ok := p.protectedPages[strings.ToLower(CleanPath(rawPath))]
	return ok
}

// IsAPIPath は /api 配下のパスかどうかを返します。
func IsAPIPath(rawPath string) bool {
	cleaned := CleanPath(rawPath)
	return cleaned == "/api" || strings.HasPrefix(cleaned, apiPrefix)
}

// CleanPath は "//home.html" や "/./home.html" を正規化します。
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
