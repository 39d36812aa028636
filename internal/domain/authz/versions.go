package authz

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VersionStore tracks the current (tenant_v, user_v) counters that the
// Policy-Version Gate (§4.J) checks every request against. Bumping a
// counter is the sole invalidation mechanism: role assignment, role
// revocation, user lockout, or any tenant-scope policy edit bumps the
// respective counter, and every outstanding token whose claim is now
// behind the stored value is rejected on its next request.
type VersionStore interface {
	// GetTenantVersion returns the current version for a tenant. A tenant
	// with no recorded bumps yet has version 0.
	GetTenantVersion(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetUserVersion returns the current version for a user.
	GetUserVersion(ctx context.Context, userID uuid.UUID) (int64, error)

	// BumpTenantVersion atomically increments and returns the tenant's version.
	BumpTenantVersion(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// BumpUserVersion atomically increments and returns the user's version.
	BumpUserVersion(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RedisVersionStore implements VersionStore using Redis counters, so that
// version bumps are visible to every instance in the fleet immediately.
type RedisVersionStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisVersionStoreConfig holds configuration for the Redis version store
type RedisVersionStoreConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisVersionStore creates a new Redis-based version store
func NewRedisVersionStore(cfg RedisVersionStoreConfig) (*RedisVersionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
	})

	return &RedisVersionStore{
		client:    client,
		keyPrefix: "authz:version:",
	}, nil
}

// NewRedisVersionStoreWithClient creates a version store with an existing Redis client
func NewRedisVersionStoreWithClient(client *redis.Client) *RedisVersionStore {
	return &RedisVersionStore{
		client:    client,
		keyPrefix: "authz:version:",
	}
}

func (s *RedisVersionStore) tenantKey(tenantID uuid.UUID) string {
	return s.keyPrefix + "tenant:" + tenantID.String()
}

func (s *RedisVersionStore) userKey(userID uuid.UUID) string {
	return s.keyPrefix + "user:" + userID.String()
}

// GetTenantVersion returns the current version for a tenant
func (s *RedisVersionStore) GetTenantVersion(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.getVersion(ctx, s.tenantKey(tenantID))
}

// GetUserVersion returns the current version for a user
func (s *RedisVersionStore) GetUserVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.getVersion(ctx, s.userKey(userID))
}

func (s *RedisVersionStore) getVersion(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read version: %w", err)
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse stored version: %w", err)
	}
	return v, nil
}

// BumpTenantVersion atomically increments and returns the tenant's version
func (s *RedisVersionStore) BumpTenantVersion(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	v, err := s.client.Incr(ctx, s.tenantKey(tenantID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump tenant version: %w", err)
	}
	return v, nil
}

// BumpUserVersion atomically increments and returns the user's version
func (s *RedisVersionStore) BumpUserVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	v, err := s.client.Incr(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump user version: %w", err)
	}
	return v, nil
}

// Ensure RedisVersionStore implements VersionStore
var _ VersionStore = (*RedisVersionStore)(nil)

// InMemoryVersionStore provides an in-memory implementation, suitable for
// single-instance deployments and testing.
// WARNING: not safe for multi-instance deployments — a bump on one instance
// is invisible to the others, defeating the fleet-wide guarantee of §4.J.
type InMemoryVersionStore struct {
	mu            sync.Mutex
	tenantVersion map[uuid.UUID]int64
	userVersion   map[uuid.UUID]int64
}

// NewInMemoryVersionStore creates a new in-memory version store
func NewInMemoryVersionStore() *InMemoryVersionStore {
	return &InMemoryVersionStore{
		tenantVersion: make(map[uuid.UUID]int64),
		userVersion:   make(map[uuid.UUID]int64),
	}
}

// GetTenantVersion returns the current version for a tenant
func (s *InMemoryVersionStore) GetTenantVersion(_ context.Context, tenantID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenantVersion[tenantID], nil
}

// GetUserVersion returns the current version for a user
func (s *InMemoryVersionStore) GetUserVersion(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userVersion[userID], nil
}

// BumpTenantVersion atomically increments and returns the tenant's version
func (s *InMemoryVersionStore) BumpTenantVersion(_ context.Context, tenantID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantVersion[tenantID]++
	return s.tenantVersion[tenantID], nil
}

// BumpUserVersion atomically increments and returns the user's version
func (s *InMemoryVersionStore) BumpUserVersion(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userVersion[userID]++
	return s.userVersion[userID], nil
}

// Ensure InMemoryVersionStore implements VersionStore
var _ VersionStore = (*InMemoryVersionStore)(nil)
