package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const tokenBytes = 32

// Session は発行済みのセッションです。アカウントは1つなので利用者の識別子は持ちません。
type Session struct {
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore はセッショントークンの表を管理します。
//
// Lookup は token が空、または存在しない場合に (nil, nil) を返します。
// Destroy は存在しない token に対しても成功します。
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	Lookup(ctx context.Context, token string) (*Session, error)
	Destroy(ctx context.Context, token string) error
}

// MemorySessionStore はプロセス内のマップでセッションを保持します。再起動で空になります。
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore は MemorySessionStore を作成します。ttl が 0 なら失効しません。
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = Session{Token: token, CreatedAt: s.now()}
	return token, nil
}

func (s *MemorySessionStore) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && s.now().Sub(sess.CreatedAt) > s.ttl {
		delete(s.sessions, token)
		return nil, nil
	}
	return &sess, nil
}

func (s *MemorySessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len は保持しているセッション数を返します。
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// newToken は 256 bit の乱数を hex で返します。衝突は確認しません。
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
