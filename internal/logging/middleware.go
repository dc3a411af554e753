package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader はリクエストIDをやり取りするヘッダー名です。
	RequestIDHeader = "X-Request-Id"

	contextLoggerKey = "logging.logger"
	maxRequestIDLen  = 128
)

// ClassifyFunc はリクエストの分類名を返す関数です（ログ出力用）。
type ClassifyFunc func(method, path string) string

// RequestLogger はリクエストごとに ID を振り、完了時にアクセスログを出力するミドルウェアです。
// classify が nil の場合は分類を出力しません。
func RequestLogger(base Logger, classify ClassifyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		logger := base.With("request_id", requestID)
		c.Set(contextLoggerKey, logger)

		c.Next()

		path := c.Request.URL.Path
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if classify != nil {
			args = append(args, "class", classify(c.Request.Method, path))
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error(ctx, "request completed", args...)
		case status >= 400:
			logger.Warn(ctx, "request completed", args...)
		default:
			logger.Info(ctx, "request completed", args...)
		}
	}
}

// FromContext は RequestLogger が設定したロガーを返します。未設定なら fallback を返します。
func FromContext(c *gin.Context, fallback Logger) Logger {
	if v, ok := c.Get(contextLoggerKey); ok {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return Discard()
	}
	return fallback
}
