package sessionsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*redisStore)(nil)

// NewRedisStore connects to redis and checks the connection.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func (st *redisStore) Create(ctx context.Context, userID, role string) (Session, error) {
	sess := newSession(userID, role, st.ttl)
	val, err := json.Marshal(sess)
	if err != nil {
		return Session{}, errors.Wrap(err, "encoding session")
	}
	if err = st.client.Set(ctx, sessionKey(sess.ID), val, st.ttl).Err(); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return sess, nil
}

func (st *redisStore) Get(ctx context.Context, id string) (Session, error) {
	val, err := st.client.Get(ctx, sessionKey(id)).Bytes()
	switch {
	case err == redis.Nil:
		return Session{}, ErrNotFound
	case err != nil:
		return Session{}, errors.Wrap(err, "reading session")
	}

	var sess Session
	if err = json.Unmarshal(val, &sess); err != nil {
		return Session{}, errors.Wrap(err, "decoding session")
	}
	if sess.Expired() {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (st *redisStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(st.client.Del(ctx, sessionKey(id)).Err(), "deleting session")
}
