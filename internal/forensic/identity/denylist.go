package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultDenylistKey is the redis SET holding blocked IPs.
const DefaultDenylistKey = "pigate:denylist:ip"

// MemoryDenylist is an in-process IP denylist for tests and single-node setups.
type MemoryDenylist struct {
	mu  sync.RWMutex
	ips map[string]struct{}
}

// NewMemoryDenylist seeds the list with ips.
func NewMemoryDenylist(ips ...string) *MemoryDenylist {
	d := &MemoryDenylist{ips: make(map[string]struct{}, len(ips))}
	for _, ip := range ips {
		d.ips[ip] = struct{}{}
	}
	return d
}

func (d *MemoryDenylist) Contains(_ context.Context, ip string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ips[ip]
	return ok, nil
}

func (d *MemoryDenylist) Add(_ context.Context, ip string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ips[ip] = struct{}{}
	return nil
}

func (d *MemoryDenylist) Remove(_ context.Context, ip string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.ips, ip)
	return nil
}

// RedisDenylist keeps blocked IPs in a redis SET shared by every instance.
type RedisDenylist struct {
	client *redis.Client
	key    string
}

// RedisDenylistOption configures a RedisDenylist.
type RedisDenylistOption func(*RedisDenylist)

// WithDenylistKey overrides the SET key.
func WithDenylistKey(key string) RedisDenylistOption {
	return func(d *RedisDenylist) {
		if key != "" {
			d.key = key
		}
	}
}

func NewRedisDenylist(client *redis.Client, opts ...RedisDenylistOption) *RedisDenylist {
	d := &RedisDenylist{client: client, key: DefaultDenylistKey}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *RedisDenylist) Contains(ctx context.Context, ip string) (bool, error) {
	ok, err := d.client.SIsMember(ctx, d.key, ip).Result()
	if err != nil {
		return false, fmt.Errorf("check ip denylist: %w", err)
	}
	return ok, nil
}

func (d *RedisDenylist) Add(ctx context.Context, ip string) error {
	if err := d.client.SAdd(ctx, d.key, ip).Err(); err != nil {
		return fmt.Errorf("add ip to denylist: %w", err)
	}
	return nil
}

func (d *RedisDenylist) Remove(ctx context.Context, ip string) error {
	if err := d.client.SRem(ctx, d.key, ip).Err(); err != nil {
		return fmt.Errorf("remove ip from denylist: %w", err)
	}
	return nil
}
