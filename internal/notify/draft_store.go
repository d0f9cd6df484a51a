package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/pkg/redis"
)

const (
	draftKeyPrefix = "notification:draft:"
	lockKeyPrefix  = "notification:lock:"
)

type DraftStore interface {
	Save(ctx context.Context, d *Draft) error
	Load(ctx context.Context, userID, id string) (*Draft, error)
	// Replace overwrites an existing draft and keeps its expiry. It reports a
	// NotFoundError when the draft expired in the meantime.
	Replace(ctx context.Context, d *Draft) error
	Lock(ctx context.Context, userID, id string) (bool, error)
	Unlock(ctx context.Context, userID, id string) error
}

type RedisDraftStore struct {
	rdb     redis.RedisAdapter
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisDraftStore keeps drafts for ttl. lockTTL bounds how long a crashed
// confirm can block the draft and must exceed the transport timeout.
func NewRedisDraftStore(rdb redis.RedisAdapter, ttl, lockTTL time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &RedisDraftStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

func draftKey(userID, id string) string {
	return fmt.Sprintf("%s%s:%s", draftKeyPrefix, userID, id)
}

func lockKey(userID, id string) string {
	return fmt.Sprintf("%s%s:%s", lockKeyPrefix, userID, id)
}

func (s *RedisDraftStore) Save(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(storedDraft{Draft: *d, Owner: d.UserID})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, draftKey(d.UserID, d.ID), data, s.ttl)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	if !ok {
		return fmt.Errorf("save draft: id %s already in use", d.ID)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, userID, id string) (*Draft, error) {
	data, err := s.rdb.Get(ctx, draftKey(userID, id))
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, model.NewNotFoundError("notification", id)
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var sd storedDraft
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	d := sd.Draft
	d.UserID = sd.Owner
	return &d, nil
}

func (s *RedisDraftStore) Replace(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(storedDraft{Draft: *d, Owner: d.UserID})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	ok, err := s.rdb.SetXX(ctx, draftKey(d.UserID, d.ID), data)
	if err != nil {
		return fmt.Errorf("replace draft: %w", err)
	}
	if !ok {
		return model.NewNotFoundError("notification", d.ID)
	}
	return nil
}

func (s *RedisDraftStore) Lock(ctx context.Context, userID, id string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, lockKey(userID, id), []byte("1"), s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("lock draft: %w", err)
	}
	return ok, nil
}

func (s *RedisDraftStore) Unlock(ctx context.Context, userID, id string) error {
	return s.rdb.Del(ctx, lockKey(userID, id))
}
