package auth

import (
	"sync"
	"time"
)

const sweepThreshold = 1024

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Throttle はクライアントIPごとのログイン失敗回数を数え、上限に達したら一定時間ロックします。
type Throttle struct {
	maxAttempts  int
	window       time.Duration
	lockDuration time.Duration

	lock     sync.Mutex
	attempts map[string]*attemptState
	now      func() time.Time
}

// NewThrottle は Throttle を作成します。maxAttempts が 0 以下なら制限しません。
func NewThrottle(maxAttempts int, window, lockDuration time.Duration) *Throttle {
	return &Throttle{
		maxAttempts:  maxAttempts,
		window:       window,
		lockDuration: lockDuration,
		attempts:     make(map[string]*attemptState),
		now:          time.Now,
	}
}

func (t *Throttle) enabled() bool {
	return t != nil && t.maxAttempts > 0
}

// Check はロック中なら残り時間を返します。ロックされていなければ 0 です。
func (t *Throttle) Check(ip string) time.Duration {
	if !t.enabled() {
		return 0
	}
	t.lock.Lock()
	defer t.lock.Unlock()

	state, ok := t.attempts[ip]
	if !ok {
		return 0
	}
	now := t.now()
	if !now.Before(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// RecordFailure は失敗を記録し、ロックまでの残り回数を返します。
func (t *Throttle) RecordFailure(ip string) int {
	if !t.enabled() {
		return 0
	}
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.now()
	if len(t.attempts) >= sweepThreshold {
		t.sweep(now)
	}

	state, ok := t.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > t.window {
		state = &attemptState{firstAttempt: now}
		t.attempts[ip] = state
	}

	state.count++
	if state.count >= t.maxAttempts {
		state.lockedUntil = now.Add(t.lockDuration)
		state.count = t.maxAttempts
	}

	remaining := t.maxAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset はログイン成功時に記録を消します。
func (t *Throttle) Reset(ip string) {
	if !t.enabled() {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.attempts, ip)
}

// sweep は期限切れの記録を捨てます。t.lock を保持した状態で呼びます。
func (t *Throttle) sweep(now time.Time) {
	for ip, state := range t.attempts {
		if now.Sub(state.firstAttempt) > t.window && !now.Before(state.lockedUntil) {
			delete(t.attempts, ip)
		}
	}
}
