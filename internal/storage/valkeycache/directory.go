package valkeycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
)

const keyPrefix = "gymchat:user:"

type cache interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedDirectory is a read-through cache in front of another Directory. Cache failures are
// logged and fall through to the backing directory; misses in the backing directory are not cached.
type CachedDirectory struct {
	next  storage.Directory
	cache cache
	ttl   time.Duration
	log   *zap.Logger
}

var _ storage.Directory = (*CachedDirectory)(nil)

// Connect dials the valkey server at addr.
func Connect(addr string) (valkey.Client, error) {
	return valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
}

func NewCachedDirectory(client valkey.Client, next storage.Directory, ttl time.Duration, log *zap.Logger) *CachedDirectory {
	return newCachedDirectory(clientCache{client: client}, next, ttl, log)
}

func newCachedDirectory(c cache, next storage.Directory, ttl time.Duration, log *zap.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, cache: c, ttl: ttl, log: log.Named("valkey")}
}

func (d *CachedDirectory) Resolve(ctx context.Context, userID string) (*models.UserRef, error) {
	if userID == "" {
		return nil, apperr.ErrNotFound
	}
	key := keyPrefix + userID

	raw, ok, err := d.cache.get(ctx, key)
	switch {
	case err != nil:
		d.log.Warn("profile cache read failed", zap.String("user_id", userID), zap.Error(err))
	case ok:
		var ref models.UserRef
		if err := json.Unmarshal(raw, &ref); err == nil {
			return &ref, nil
		}
		d.log.Warn("discarding malformed cached profile", zap.String("user_id", userID))
	}

	ref, err := d.next.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(ref); err == nil {
		if err := d.cache.set(ctx, key, raw, d.ttl); err != nil {
			d.log.Warn("profile cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return ref, nil
}

type clientCache struct {
	client valkey.Client
}

func (c clientCache) get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c clientCache) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		return errors.New("cache ttl must be at least one second")
	}
	cmd := c.client.B().Set().Key(key).Value(valkey.BinaryString(value)).ExSeconds(secs).Build()
	return c.client.Do(ctx, cmd).Error()
}
