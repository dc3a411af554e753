package auth

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/logging"
)

// PasswordVerifier はパスワード検証を行います。*CredentialStore が実装します。
type PasswordVerifier interface {
	Verify(ctx context.Context, password string) (bool, error)
}

// Handler は /api/session, /api/login, /api/logout を処理します。
type Handler struct {
	credentials  PasswordVerifier
	sessions     SessionStore
	throttle     *Throttle
	secureCookie bool
}

// NewHandler は Handler を作成します。throttle は nil でも構いません。
func NewHandler(credentials PasswordVerifier, sessions SessionStore, throttle *Throttle, secureCookie bool) *Handler {
	return &Handler{
		credentials:  credentials,
		sessions:     sessions,
		throttle:     throttle,
		secureCookie: secureCookie,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Session は GET /api/session のハンドラーです。副作用はありません。
func (h *Handler) Session(c *gin.Context) {
	authenticated, ok := IsAuthenticated(c)
	if !ok {
		sess, err := h.sessions.Lookup(c.Request.Context(), TokenFromRequest(c.Request))
		if err != nil {
			h.internalError(c, "session lookup failed", err)
			return
		}
		authenticated = sess != nil
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
}

// Login は POST /api/login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	// 壊れた JSON は password 未指定として扱う
	_ = c.ShouldBindJSON(&req)
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password is required."})
		return
	}

	ip := c.ClientIP()
	if retryAfter := h.throttle.Check(ip); retryAfter > 0 {
		// Retry-After は秒数で返す（端数は切り上げ）
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(retryAfter.Seconds())), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message": "Too many login attempts. Try again later.",
		})
		return
	}

	ok, err := h.credentials.Verify(c.Request.Context(), req.Password)
	if err != nil {
		h.internalError(c, "credential verification failed", err)
		return
	}
	if !ok {
		h.throttle.RecordFailure(ip)
		logging.FromContext(c, nil).Warn(c.Request.Context(), "login failed", "client_ip", ip)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect password."})
		return
	}

	h.throttle.Reset(ip)

	token, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		h.internalError(c, "session creation failed", err)
		return
	}

	h.setSessionCookie(c, token, 0)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout は POST /api/logout のハンドラーです。Guard によりログイン済みのときだけ呼ばれます。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), TokenFromRequest(c.Request)); err != nil {
		h.internalError(c, "session destroy failed", err)
		return
	}

	// 期限切れのクッキーを送り直してブラウザに破棄させる
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", h.secureCookie, true)
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	logging.FromContext(c, nil).Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
}
