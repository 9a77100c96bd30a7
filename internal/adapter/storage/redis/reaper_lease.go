package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// acquireScript extends the lease when holder already owns it, otherwise
// takes it only if nobody does.
var acquireScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
	return 1
end
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
	return 1
end
return 0
`)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReaperLease implements ports.ReaperLease with a single expiring key.
type ReaperLease struct {
	client goredis.Scripter
	key    string
}

// NewReaperLease creates a lease stored under "lease:<name>".
func NewReaperLease(client goredis.Scripter, name string) *ReaperLease {
	return &ReaperLease{client: client, key: "lease:" + name}
}

// Acquire takes or extends the lease for holder.
func (l *ReaperLease) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	n, err := acquireScript.Run(ctx, l.client, []string{l.key}, holder, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis lease acquire: %w", err)
	}
	return n == 1, nil
}

// Release drops the lease if holder still owns it.
func (l *ReaperLease) Release(ctx context.Context, holder string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, holder).Err(); err != nil {
		return fmt.Errorf("redis lease release: %w", err)
	}
	return nil
}
