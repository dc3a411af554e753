// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// セッションの保存先として選択できるバックエンドです。
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// DefaultPassword は認証情報テーブルが空のときに投入される初期パスワードです。
const DefaultPassword = "starlight"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port            string        // APIサーバーのポート番号
	GinMode         string        // Ginの実行モード (debug, release, test)
	ShutdownTimeout time.Duration // グレースフルシャットダウンの猶予

	// データ・静的ファイル
	DatabasePath string // SQLite ファイルのパス
	PublicDir    string // 静的ファイルのルート
	EntryPage    string // 未ログイン時のリダイレクト先

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り、空なら Origin をそのまま返す）
	TrustedProxies     string // X-Forwarded-For を信頼するプロキシ（カンマ区切り、空なら信頼しない）

	// セッション設定
	SessionBackend  string        // memory または redis
	SessionRedisURL string        // redis バックエンド用の接続URL
	SessionTTL      time.Duration // 0 のときセッションは失効しない

	// 認証設定
	DefaultPassword   string        // 初回起動時に投入するパスワード
	LoginMaxAttempts  int           // ロックまでの失敗回数（0で無効）
	LoginWindow       time.Duration // 失敗回数を数える期間
	LoginLockDuration time.Duration // ロック期間

	// ログ設定
	LogLevel  string
	LogFormat string
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:            getEnv("PORT", "8000"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// データ・静的ファイル
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join("db", "ourworld.db")),
		PublicDir:    getEnv("PUBLIC_DIR", "public"),
		EntryPage:    getEnv("ENTRY_PAGE", "/index.html"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", ""),

		// セッション設定
		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionRedisURL: getEnv("SESSION_REDIS_URL", "redis://127.0.0.1:6379/0"),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 0),

		// 認証設定
		DefaultPassword:   getEnv("DEFAULT_PASSWORD", DefaultPassword),
		LoginMaxAttempts:  getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:       getEnvAsDuration("LOGIN_WINDOW", 15*time.Minute),
		LoginLockDuration: getEnvAsDuration("LOGIN_LOCK_DURATION", 10*time.Minute),

		// ログ設定
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number: %q", c.Port)
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.SessionRedisURL == "" {
			return fmt.Errorf("SESSION_REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND: %q", c.SessionBackend)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT: %q", c.LogFormat)
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.DefaultPassword == "" {
		return fmt.Errorf("DEFAULT_PASSWORD must not be empty")
	}
	for _, origin := range c.AllowedOrigins() {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS entries must start with http:// or https://: %q", origin)
		}
	}
	if !strings.HasPrefix(c.EntryPage, "/") {
		return fmt.Errorf("ENTRY_PAGE must be an absolute path: %q", c.EntryPage)
	}

	// 本番環境では初期パスワードのままの起動を許可しない
	if c.GinMode == "release" && c.DefaultPassword == DefaultPassword {
		return fmt.Errorf("DEFAULT_PASSWORD must be changed in release mode")
	}

	return nil
}

// AllowedOrigins は CORS_ALLOWED_ORIGINS を配列に変換します。空要素は除外します。
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// TrustedProxyList は TRUSTED_PROXIES を配列に変換します。
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// CookieSecure はセッションクッキーに Secure 属性を付けるかを返します。
func (c *Config) CookieSecure() bool {
	return c.GinMode == "release"
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します（例: "15m"）。
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
