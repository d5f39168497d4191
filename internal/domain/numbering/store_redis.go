package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultLockTTL  = 5 * time.Second
	DefaultLockWait = 3 * time.Second

	lockPollInterval = 20 * time.Millisecond
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps one JSON value per category. Writes to a category are
// serialized by a SET NX lock whose value is a per-holder token.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	lockTTL  time.Duration
	lockWait time.Duration
}

type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key. The default is "clinassist:numbering".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithLockTiming sets how long a lock lives and how long Update waits for it.
func WithLockTiming(ttl, wait time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
		if wait > 0 {
			s.lockWait = wait
		}
	}
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:   client,
		prefix:   "clinassist:numbering",
		lockTTL:  DefaultLockTTL,
		lockWait: DefaultLockWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) settingsKey(c Category) string {
	return s.prefix + ":settings:" + string(c)
}

func (s *RedisStore) lockKey(c Category) string {
	return s.prefix + ":lock:" + string(c)
}

func (s *RedisStore) Load(ctx context.Context) (*Settings, error) {
	keys := make([]string, len(Categories))
	for i, c := range Categories {
		keys[i] = s.settingsKey(c)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load numbering settings: %w", err)
	}

	out := DefaultSettings()
	for i, c := range Categories {
		raw, ok := vals[i].(string)
		if !ok {
			continue
		}
		dst, _ := out.For(c)
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return nil, fmt.Errorf("decode %s settings: %w", c, err)
		}
	}
	return out, nil
}

// Save overwrites every category, holding all category locks while it writes.
func (s *RedisStore) Save(ctx context.Context, in *Settings) error {
	tokens := make(map[Category]string, len(Categories))
	defer func() {
		for c, token := range tokens {
			s.unlock(context.WithoutCancel(ctx), c, token)
		}
	}()
	for _, c := range Categories {
		token, err := s.lock(ctx, c)
		if err != nil {
			return err
		}
		tokens[c] = token
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range Categories {
			cs, _ := in.For(c)
			data, err := json.Marshal(cs)
			if err != nil {
				return fmt.Errorf("encode %s settings: %w", c, err)
			}
			pipe.Set(ctx, s.settingsKey(c), data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save numbering settings: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, c Category, fn func(*CategorySettings) error) error {
	def, err := DefaultSettings().For(c)
	if err != nil {
		return err
	}

	token, err := s.lock(ctx, c)
	if err != nil {
		return err
	}
	defer s.unlock(context.WithoutCancel(ctx), c, token)

	cs := *def
	raw, err := s.client.Get(ctx, s.settingsKey(c)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return fmt.Errorf("read %s settings: %w", c, err)
	default:
		if err := json.Unmarshal(raw, &cs); err != nil {
			return fmt.Errorf("decode %s settings: %w", c, err)
		}
	}

	if err := fn(&cs); err != nil {
		return err
	}

	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("encode %s settings: %w", c, err)
	}
	if err := s.client.Set(ctx, s.settingsKey(c), data, 0).Err(); err != nil {
		return fmt.Errorf("write %s settings: %w", c, err)
	}
	return nil
}

// lock polls SET NX until it wins or lockWait elapses.
func (s *RedisStore) lock(ctx context.Context, c Category) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(s.lockWait)
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, s.lockKey(c), token, s.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("acquire %s lock: %w", c, err)
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%s: %w", c, ErrLockTimeout)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *RedisStore) unlock(ctx context.Context, c Category, token string) {
	unlockScript.Run(ctx, s.client, []string{s.lockKey(c)}, token)
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
