package authz

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryVersionStore_TenantVersion(t *testing.T) {
	store := NewInMemoryVersionStore()
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("starts at zero", func(t *testing.T) {
		v, err := store.GetTenantVersion(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)
	})

	t.Run("increments on bump", func(t *testing.T) {
		v, err := store.BumpTenantVersion(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		v, err = store.GetTenantVersion(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("never decreases", func(t *testing.T) {
		v1, _ := store.BumpTenantVersion(ctx, tenantID)
		v2, _ := store.BumpTenantVersion(ctx, tenantID)
		assert.Greater(t, v2, v1)
	})
}

func TestInMemoryVersionStore_UserVersion(t *testing.T) {
	store := NewInMemoryVersionStore()
	ctx := context.Background()
	userID := uuid.New()

	v, err := store.GetUserVersion(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = store.BumpUserVersion(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestInMemoryVersionStore_ConcurrentBumps(t *testing.T) {
	store := NewInMemoryVersionStore()
	ctx := context.Background()
	tenantID := uuid.New()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.BumpTenantVersion(ctx, tenantID)
		}()
	}
	wg.Wait()

	v, err := store.GetTenantVersion(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), v)
}

func TestInMemoryVersionStore_TenantAndUserAreIndependent(t *testing.T) {
	store := NewInMemoryVersionStore()
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	_, err := store.BumpTenantVersion(ctx, tenantID)
	require.NoError(t, err)

	userV, err := store.GetUserVersion(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), userV)
}
