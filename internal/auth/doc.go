// Package auth は認証・認可機能を提供します。
//
// 構成:
//   - CredentialStore: 唯一のアカウントのパスワード検証（PBKDF2-HMAC-SHA256）
//   - SessionStore: 不透明なセッショントークンの発行・参照・破棄（メモリ / Redis）
//   - Policy: パスとセッション有無からアクセス可否を決める純粋関数
//   - Guard: Policy をすべてのルートの前段で適用する gin ミドルウェア
//   - Handler: /api/session, /api/login, /api/logout のハンドラー
package auth
