// Package registry persists filter definitions in Redis and notifies
// filterd when one changes, so a running filter can be recompiled and
// reattached without a restart.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/SkynetNext/bpf-filter/pkg/xlog"
)

// ErrDefinitionNotFound is returned when a filter name has no stored definition.
var ErrDefinitionNotFound = errors.New("registry: filter definition not found")

// Definition is the serialized form of a filter: the backend it targets and
// the idiom expression tree serialized as nested JSON objects, one per
// predicate node, carrying enough of each terminal's shape (offset, size,
// comparison, operand) to rebuild it without re-parsing source.
type Definition struct {
	Name    string          `json:"name"`
	Backend string          `json:"backend"` // "classic" or "extended"
	Expr    json.RawMessage `json:"expr"`
}

// Registry is a read/write Redis-backed store of filter Definitions, with a
// pub/sub channel filterd subscribes to for change notifications.
type Registry struct {
	client *redis.Client
	prefix string
	ctx    context.Context
	pubsub *redis.PubSub
	changes chan string
}

// Config addresses the Redis instance backing a Registry.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// New connects to Redis and subscribes to the registry's change channel.
func New(cfg Config) (*Registry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("registry: connecting to redis: %w", err)
	}

	r := &Registry{
		client:  client,
		prefix:  cfg.KeyPrefix,
		ctx:     ctx,
		changes: make(chan string, 16),
	}
	r.pubsub = client.Subscribe(ctx, r.prefix+"changed")
	go r.listen()

	xlog.Infof("filter registry connected: addr=%s prefix=%s", cfg.Addr, cfg.KeyPrefix)
	return r, nil
}

func (r *Registry) listen() {
	for msg := range r.pubsub.Channel() {
		select {
		case r.changes <- msg.Payload:
		default:
			xlog.Warnf("registry change channel full, dropping notification for %q", msg.Payload)
		}
	}
}

// Changes delivers the name of each filter whose definition was updated.
func (r *Registry) Changes() <-chan string {
	return r.changes
}

// Close releases the Redis connection.
func (r *Registry) Close() error {
	if r.pubsub != nil {
		r.pubsub.Close()
	}
	return r.client.Close()
}

// CheckHealth reports whether the Redis connection is reachable.
func (r *Registry) CheckHealth() error {
	return r.client.Ping(r.ctx).Err()
}

// Get loads the named filter's current definition.
func (r *Registry) Get(name string) (Definition, error) {
	key := r.prefix + "filter:" + name
	raw, err := r.client.Get(r.ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Definition{}, ErrDefinitionNotFound
	}
	if err != nil {
		return Definition{}, fmt.Errorf("registry: loading %q: %w", name, err)
	}

	var def Definition
	if err := json.Unmarshal([]byte(raw), &def); err != nil {
		return Definition{}, fmt.Errorf("registry: decoding %q: %w", name, err)
	}
	return def, nil
}

// Put stores def and publishes a change notification for its name.
func (r *Registry) Put(def Definition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("registry: encoding %q: %w", def.Name, err)
	}

	key := r.prefix + "filter:" + def.Name
	if err := r.client.Set(r.ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("registry: storing %q: %w", def.Name, err)
	}
	if err := r.client.Publish(r.ctx, r.prefix+"changed", def.Name).Err(); err != nil {
		return fmt.Errorf("registry: publishing change for %q: %w", def.Name, err)
	}
	return nil
}

// List returns the names of every filter currently stored.
func (r *Registry) List() ([]string, error) {
	keys, err := r.client.Keys(r.ctx, r.prefix+"filter:*").Result()
	if err != nil {
		return nil, fmt.Errorf("registry: listing filters: %w", err)
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k[len(r.prefix+"filter:"):]
	}
	return names, nil
}
