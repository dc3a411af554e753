package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/logging"
)

const (
	// SessionCookieName はセッショントークンを運ぶクッキー名です。
	SessionCookieName = "ourworld_session"

	// ContextAuthenticatedKey は Guard が判定したログイン状態を後続のハンドラーへ渡すキーです。
	ContextAuthenticatedKey = "auth.authenticated"
)

// Guard は Policy をリクエストに適用するミドルウェアを返します。
// Allow 以外の場合は後続のハンドラーを一切実行しません。
func Guard(policy *Policy, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Lookup(c.Request.Context(), TokenFromRequest(c.Request))
		if err != nil {
			logging.FromContext(c, nil).Error(c.Request.Context(), "session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": "Internal server error.",
			})
			return
		}

		authenticated := sess != nil
		c.Set(ContextAuthenticatedKey, authenticated)

		switch policy.Decide(c.Request.Method, c.Request.URL.Path, authenticated) {
		case Allow:
			c.Next()
		case RedirectToLogin:
			c.Redirect(http.StatusFound, policy.EntryPage)
			c.Abort()
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authentication required.",
			})
		}
	}
}

// TokenFromRequest はセッションクッキーの値を返します。無ければ空文字です。
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// IsAuthenticated は Guard が設定したログイン状態を返します。
func IsAuthenticated(c *gin.Context) (authenticated bool, ok bool) {
	v, exists := c.Get(ContextAuthenticatedKey)
	if !exists {
		return false, false
	}
	authenticated, ok = v.(bool)
	return authenticated, ok
}
