package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/yourusername/ourworld/internal/models"
	"github.com/yourusername/ourworld/internal/store"
)

const (
	// AccountUsername は唯一のアカウント名です。
	AccountUsername = "couple"

	pbkdf2Iterations = 120_000
	keyLength        = 32
	saltLength       = 16
)

// CredentialRepository は認証情報の永続化層です。
// GetCredential は存在しない場合 store.ErrNotFound を返します。
type CredentialRepository interface {
	GetCredential(ctx context.Context, username string) (*models.Credential, error)
	CountCredentials(ctx context.Context) (int, error)
	InsertCredential(ctx context.Context, c models.Credential) (int64, error)
}

// CredentialStore は唯一のアカウントのパスワードを検証します。
type CredentialStore struct {
	repo CredentialRepository
}

// NewCredentialStore は CredentialStore を作成します。
func NewCredentialStore(repo CredentialRepository) *CredentialStore {
	return &CredentialStore{repo: repo}
}

// Verify は password が保存済みの認証情報と一致するかを返します。
// 認証情報が無い、または保存値が壊れている場合は false を返します。
// error はストアの I/O 失敗のときだけ返します。
func (s *CredentialStore) Verify(ctx context.Context, password string) (bool, error) {
	cred, err := s.repo.GetCredential(ctx, AccountUsername)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	salt, err := hex.DecodeString(cred.Salt)
	if err != nil {
		return false, nil
	}
	expected, err := hex.DecodeString(cred.PasswordHash)
	if err != nil || len(expected) != keyLength {
		return false, nil
	}

	digest := deriveKey(password, salt)
	return subtle.ConstantTimeCompare(digest, expected) == 1, nil
}

// Bootstrap は認証情報テーブルが空のときだけ、既定パスワードで1件作成します。
// 作成した場合は true を返します。
func (s *CredentialStore) Bootstrap(ctx context.Context, defaultPassword string) (bool, error) {
	n, err := s.repo.CountCredentials(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	salt, err := NewSalt()
	if err != nil {
		return false, err
	}
	hash, err := HashPassword(defaultPassword, salt)
	if err != nil {
		return false, err
	}

	if _, err := s.repo.InsertCredential(ctx, models.Credential{
		Username:     AccountUsername,
		PasswordHash: hash,
		Salt:         salt,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// NewSalt は 16 バイトのランダムなソルトを hex で返します。
func NewSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword は hex のソルトで password を導出し、hex で返します。
func HashPassword(password, saltHex string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("invalid salt: %w", err)
	}
	return hex.EncodeToString(deriveKey(password, salt)), nil
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha256.New)
}
