package authz

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Decision is the outcome of a policy evaluation.
type Decision string

const (
	Allow Decision = "allow"
	Deny  Decision = "deny"
)

// HashSubjectOrResource hashes a subject or resource identifier to the
// first 16 bytes of its SHA-256 digest, hex-encoded, bounding decision-cache
// key size regardless of the identifier's own length (§4.K).
func HashSubjectOrResource(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}

type decisionCacheKey struct {
	tenantID      uuid.UUID
	policyVersion int64
	subjectHash   string
	resourceHash  string
	action        string
}

func (k decisionCacheKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%s:%s", k.tenantID, k.policyVersion, k.subjectHash, k.resourceHash, k.action)
}

type cacheEntry struct {
	decision  Decision
	expiresAt time.Time
}

// DecisionCacheStats reports hit/miss counters for observability.
type DecisionCacheStats struct {
	Hits     int64
	Misses   int64
	HitRatio float64
}

// DecisionCache is a bounded, TTL-expiring cache of authorization decisions,
// keyed by (tenant_id, policy_version, hash(subject), hash(resource), action).
// Policy changes never invalidate an entry directly: bumping the tenant's
// policy version changes the key-space out from under old entries, which
// then simply age out by TTL (§4.K).
type DecisionCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	hits    int64
	misses  int64
}

// NewDecisionCache creates a new decision cache with the given entry TTL.
func NewDecisionCache(ttl time.Duration) *DecisionCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &DecisionCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns a cached decision for the key, if present and unexpired.
func (c *DecisionCache) Get(tenantID uuid.UUID, policyVersion int64, subject, resource, action string) (Decision, bool) {
	key := decisionCacheKey{
		tenantID:      tenantID,
		policyVersion: policyVersion,
		subjectHash:   HashSubjectOrResource(subject),
		resourceHash:  HashSubjectOrResource(resource),
		action:        action,
	}.String()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		atomic.AddInt64(&c.misses, 1)
		return "", false
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.decision, true
}

// Set stores a decision for the key, fire-and-forget: callers should not
// block the request's critical path on this call completing.
func (c *DecisionCache) Set(tenantID uuid.UUID, policyVersion int64, subject, resource, action string, decision Decision) {
	key := decisionCacheKey{
		tenantID:      tenantID,
		policyVersion: policyVersion,
		subjectHash:   HashSubjectOrResource(subject),
		resourceHash:  HashSubjectOrResource(resource),
		action:        action,
	}.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		decision:  decision,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Stats returns current hit/miss counters and the hit ratio.
func (c *DecisionCache) Stats() DecisionCacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses
	var ratio float64
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return DecisionCacheStats{Hits: hits, Misses: misses, HitRatio: ratio}
}

// Purge removes expired entries. Intended to be called periodically by a
// background sweep rather than on every request.
func (c *DecisionCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	purged := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			purged++
		}
	}
	return purged
}

// Size returns the number of entries currently stored, expired or not.
func (c *DecisionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
