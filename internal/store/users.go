package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourusername/ourworld/internal/models"
)

// Users は users テーブルへのアクセスを提供します。
type Users struct {
	db DBTX
}

func NewUsers(db DBTX) *Users {
	return &Users{db: db}
}

// GetCredential はユーザー名に対応する認証情報を返します。存在しなければ ErrNotFound を返します。
func (r *Users) GetCredential(ctx context.Context, username string) (*models.Credential, error) {
	query := `SELECT id, username, password_hash, salt FROM users WHERE username = ?`

	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select credential: %w", err)
	}
	return c, nil
}

// CountCredentials は登録済みの認証情報の件数を返します。
func (r *Users) CountCredentials(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return n, nil
}

// InsertCredential は認証情報を1件追加します。
func (r *Users) InsertCredential(ctx context.Context, c models.Credential) (int64, error) {
	query := `INSERT INTO users (username, password_hash, salt) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, c.Username, c.PasswordHash, c.Salt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert credential: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}
