package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsAllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsAllowHeaders = []string{"Content-Type"}
)

// corsConfig はクッキー付きのクロスオリジン通信を許可する設定を返します。
// origins が空なら任意の Origin をそのまま返します。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     corsAllowMethods,
		AllowHeaders:     corsAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Preflight は OPTIONS リクエストに本文なしの 204 を返します。セッションは不要です。
// Origin 付きのクロスオリジン要求は手前の cors ミドルウェアが応答するので、
// ここに来るのは Origin が無いか同一オリジンの場合です。
func Preflight(c *gin.Context) {
	if origin := c.GetHeader("Origin"); origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Vary", "Origin")
	}
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	c.Status(http.StatusNoContent)
}
