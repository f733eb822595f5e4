package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cozn1l/gorosso/domain"
)

const redisKeyPrefix = "gorosso:wizard:"

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a SessionStore backed by Redis so wizard state
// survives restarts and is shared across instances. Sessions expire after
// ttl; an expired session simply means the admin has to start over.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *redisStore) Get(ctx context.Context, userID int64) (Session, bool, error) {
	const op = "wizard.redis.get"
	raw, err := r.rdb.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, domain.Wrap(domain.KindInternal, op, err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, false, domain.Wrap(domain.KindInternal, op, err)
	}
	return s, true, nil
}

func (r *redisStore) Put(ctx context.Context, userID int64, s Session) error {
	const op = "wizard.redis.put"
	raw, err := json.Marshal(s)
	if err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	if err := r.rdb.Set(ctx, redisKey(userID), raw, r.ttl).Err(); err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, userID int64) error {
	const op = "wizard.redis.delete"
	if err := r.rdb.Del(ctx, redisKey(userID)).Err(); err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	return nil
}
