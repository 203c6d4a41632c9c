package notification

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Guard suppresses repeated alerts. Allow reports whether key may be sent
// now and, if so, claims it for ttl.
type Guard interface {
	Allow(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryGuard keeps claimed keys in process memory.
type MemoryGuard struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

// NewMemoryGuard creates an in-process guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Allow implements Guard.
func (g *MemoryGuard) Allow(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	for k, expiry := range g.until {
		if !expiry.After(now) {
			delete(g.until, k)
		}
	}

	if _, claimed := g.until[key]; claimed {
		return false, nil
	}

	g.until[key] = now.Add(ttl)

	return true, nil
}

// RedisGuard claims keys with SET NX so that several screener processes
// share one dedup window.
type RedisGuard struct {
	client *redis.Client
	prefix string
}

// RedisConfig points the guard at a Redis server.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password,omitempty"`
	DB       int    `yaml:"db" json:"db,omitempty" validate:"gte=0"`
}

// NewRedisGuard creates a guard backed by Redis.
func NewRedisGuard(cfg RedisConfig) *RedisGuard {
	return &RedisGuard{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: "screener:alert:",
	}
}

// Ping checks connectivity.
func (g *RedisGuard) Ping(ctx context.Context) error {
	if err := g.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "redis is unreachable", err)
	}

	return nil
}

// Allow implements Guard.
func (g *RedisGuard) Allow(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeNotificationFailed, "failed to claim alert key", err)
	}

	return ok, nil
}

// Close releases the connection pool.
func (g *RedisGuard) Close() error {
	return g.client.Close()
}

// GuardedNotifier forwards an alert only when its guard allows it. A guard
// error lets the alert through.
type GuardedNotifier struct {
	next  Notifier
	guard Guard
	ttl   time.Duration
}

// NewGuardedNotifier wraps next with guard, suppressing repeats within ttl.
func NewGuardedNotifier(next Notifier, guard Guard, ttl time.Duration) *GuardedNotifier {
	return &GuardedNotifier{next: next, guard: guard, ttl: ttl}
}

// Notify implements Notifier. The message text is the dedup key.
func (n *GuardedNotifier) Notify(ctx context.Context, message string) bool {
	allowed, err := n.guard.Allow(ctx, message, n.ttl)
	if err == nil && !allowed {
		return false
	}

	return n.next.Notify(ctx, message)
}
