package authz

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecisionCache_MissThenHit(t *testing.T) {
	c := NewDecisionCache(time.Minute)
	tenantID := uuid.New()

	_, ok := c.Get(tenantID, 1, "user:1", "inventory_item:1", "read")
	assert.False(t, ok)

	c.Set(tenantID, 1, "user:1", "inventory_item:1", "read", Allow)

	d, ok := c.Get(tenantID, 1, "user:1", "inventory_item:1", "read")
	assert.True(t, ok)
	assert.Equal(t, Allow, d)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRatio)
}

func TestDecisionCache_ExpiresByTTL(t *testing.T) {
	c := NewDecisionCache(10 * time.Millisecond)
	tenantID := uuid.New()

	c.Set(tenantID, 1, "user:1", "resource:1", "write", Deny)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(tenantID, 1, "user:1", "resource:1", "write")
	assert.False(t, ok)
}

func TestDecisionCache_VersionBumpChangesKeySpace(t *testing.T) {
	c := NewDecisionCache(time.Minute)
	tenantID := uuid.New()

	c.Set(tenantID, 1, "user:1", "resource:1", "read", Allow)

	// A policy-version bump doesn't invalidate the old entry directly; it
	// simply changes which key future lookups address.
	_, ok := c.Get(tenantID, 2, "user:1", "resource:1", "read")
	assert.False(t, ok)

	d, ok := c.Get(tenantID, 1, "user:1", "resource:1", "read")
	assert.True(t, ok)
	assert.Equal(t, Allow, d)
}

func TestDecisionCache_Purge(t *testing.T) {
	c := NewDecisionCache(10 * time.Millisecond)
	tenantID := uuid.New()

	c.Set(tenantID, 1, "user:1", "resource:1", "read", Allow)
	c.Set(tenantID, 1, "user:2", "resource:2", "read", Deny)
	assert.Equal(t, 2, c.Size())

	time.Sleep(20 * time.Millisecond)
	purged := c.Purge()
	assert.Equal(t, 2, purged)
	assert.Equal(t, 0, c.Size())
}

func TestHashSubjectOrResource_Bounded(t *testing.T) {
	h := HashSubjectOrResource("a-very-long-subject-identifier-that-would-otherwise-bloat-the-key")
	assert.Len(t, h, 32) // 16 bytes hex-encoded
}
