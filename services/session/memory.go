package sessionsvc

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mutex    sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{ttl: ttl, sessions: make(map[string]Session)}
}

func (st *memoryStore) Create(_ context.Context, userID, role string) (Session, error) {
	sess := newSession(userID, role, st.ttl)

	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.evictExpired()
	st.sessions[sess.ID] = sess
	return sess, nil
}

func (st *memoryStore) Get(_ context.Context, id string) (Session, error) {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	sess, ok := st.sessions[id]
	if !ok || sess.Expired() {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (st *memoryStore) Delete(_ context.Context, id string) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	delete(st.sessions, id)
	return nil
}

// evictExpired must be called with the write lock held.
func (st *memoryStore) evictExpired() {
	for id, sess := range st.sessions {
		if sess.Expired() {
			delete(st.sessions, id)
		}
	}
}
