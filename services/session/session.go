// Package sessionsvc stores the login sessions that back issued access tokens.
// A token is only honoured while its session exists: logging out deletes it.
package sessionsvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
)

// Backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	ErrNotFound = errors.New("session not found")

	NowFunc = time.Now // mockable
)

type (
	Session struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
		ExpiresAt time.Time `json:"expiresAt"`
	}

	Store interface {
		// Create starts a session for the user, valid for the store TTL.
		Create(ctx context.Context, userID, role string) (Session, error)
		// Get returns ErrNotFound for unknown or expired sessions.
		Get(ctx context.Context, id string) (Session, error)
		Delete(ctx context.Context, id string) error
	}
)

func newSession(userID, role string, ttl time.Duration) Session {
	now := NowFunc().UTC()
	return Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s Session) Expired() bool {
	return !NowFunc().UTC().Before(s.ExpiresAt)
}

// NewStore returns the session store selected by conf.Session.Backend.
func NewStore(conf *core.Config) (Store, error) {
	switch conf.Session.Backend {
	case BackendMemory, "":
		return NewMemoryStore(conf.Session.TTL), nil
	case BackendRedis:
		return NewRedisStore(conf.Session.RedisAddress, conf.Session.RedisPassword, conf.Session.RedisDB, conf.Session.TTL)
	}
	return nil, errors.Errorf("unknown session backend %q", conf.Session.Backend)
}
