package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAdjustmentDocument(t *testing.T) *AdjustmentDocument {
	t.Helper()
	doc, err := NewAdjustmentDocument(uuid.New(), uuid.New(), "Main Warehouse", "ADJ-20260124-0001", "Cycle count correction", uuid.New(), "John Doe")
	require.NoError(t, err)
	return doc
}

func TestNewAdjustmentDocument(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()
	createdByID := uuid.New()

	t.Run("creates draft document with valid inputs", func(t *testing.T) {
		doc, err := NewAdjustmentDocument(tenantID, warehouseID, "Main Warehouse", "ADJ-001", "Damaged goods", createdByID, "John Doe")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, doc.ID)
		assert.Equal(t, tenantID, doc.TenantID)
		assert.Equal(t, warehouseID, doc.WarehouseID)
		assert.Equal(t, "ADJ-001", doc.DocumentNumber)
		assert.Equal(t, AdjustmentDocumentStatusDraft, doc.Status)
		assert.Empty(t, doc.Lines)
		assert.Len(t, doc.GetDomainEvents(), 1)
	})

	t.Run("fails with empty warehouse ID", func(t *testing.T) {
		_, err := NewAdjustmentDocument(tenantID, uuid.Nil, "Main Warehouse", "ADJ-001", "", createdByID, "John")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Warehouse ID cannot be empty")
	})

	t.Run("fails with empty document number", func(t *testing.T) {
		_, err := NewAdjustmentDocument(tenantID, warehouseID, "Main Warehouse", "", "", createdByID, "John")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Document number cannot be empty")
	})

	t.Run("fails with empty creator ID", func(t *testing.T) {
		_, err := NewAdjustmentDocument(tenantID, warehouseID, "Main Warehouse", "ADJ-001", "", uuid.Nil, "John")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Creator ID cannot be empty")
	})
}

func TestAdjustmentDocument_AddLine(t *testing.T) {
	doc := createTestAdjustmentDocument(t)
	productID := uuid.New()

	t.Run("adds a positive delta line in draft status", func(t *testing.T) {
		err := doc.AddLine(productID, decimal.NewFromInt(10), decimal.NewFromFloat(5.5), "found extra units")

		require.NoError(t, err)
		assert.Len(t, doc.Lines, 1)
		assert.Equal(t, productID, doc.Lines[0].ProductID)
		assert.True(t, doc.Lines[0].DeltaQuantity.Equal(decimal.NewFromInt(10)))
		assert.False(t, doc.Lines[0].Posted)
	})

	t.Run("adds a negative delta line", func(t *testing.T) {
		err := doc.AddLine(uuid.New(), decimal.NewFromInt(-2), decimal.Zero, "damaged")

		require.NoError(t, err)
		assert.Len(t, doc.Lines, 2)
	})

	t.Run("rejects a zero delta line", func(t *testing.T) {
		err := doc.AddLine(uuid.New(), decimal.Zero, decimal.Zero, "no-op")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be zero")
	})

	t.Run("rejects an empty product ID", func(t *testing.T) {
		err := doc.AddLine(uuid.Nil, decimal.NewFromInt(1), decimal.Zero, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Product ID cannot be empty")
	})

	t.Run("rejects adding lines once posted", func(t *testing.T) {
		posted := createTestAdjustmentDocument(t)
		require.NoError(t, posted.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.Zero, ""))
		require.NoError(t, posted.MarkLinePosted(posted.Lines[0].ID))
		require.NoError(t, posted.Post())

		err := posted.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.Zero, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "draft")
	})
}

func TestAdjustmentDocument_RemoveLine(t *testing.T) {
	doc := createTestAdjustmentDocument(t)
	require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, ""))
	lineID := doc.Lines[0].ID

	t.Run("removes an existing line", func(t *testing.T) {
		err := doc.RemoveLine(lineID)

		require.NoError(t, err)
		assert.Empty(t, doc.Lines)
	})

	t.Run("fails for an unknown line", func(t *testing.T) {
		err := doc.RemoveLine(uuid.New())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestAdjustmentDocument_Post(t *testing.T) {
	t.Run("fails when no lines exist", func(t *testing.T) {
		doc := createTestAdjustmentDocument(t)

		err := doc.Post()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no lines")
	})

	t.Run("fails when a line has not been marked posted", func(t *testing.T) {
		doc := createTestAdjustmentDocument(t)
		require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, ""))

		err := doc.Post()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Not every line")
	})

	t.Run("transitions to posted once every line is marked", func(t *testing.T) {
		doc := createTestAdjustmentDocument(t)
		require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, ""))
		require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(-3), decimal.Zero, ""))
		for _, line := range doc.Lines {
			require.NoError(t, doc.MarkLinePosted(line.ID))
		}

		err := doc.Post()

		require.NoError(t, err)
		assert.Equal(t, AdjustmentDocumentStatusPosted, doc.Status)
		require.NotNil(t, doc.PostedAt)
	})

	t.Run("re-posting an already posted document is a no-op", func(t *testing.T) {
		doc := createTestAdjustmentDocument(t)
		require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, ""))
		require.NoError(t, doc.MarkLinePosted(doc.Lines[0].ID))
		require.NoError(t, doc.Post())
		postedAt := doc.PostedAt

		err := doc.Post()

		require.NoError(t, err)
		assert.Equal(t, postedAt, doc.PostedAt)
	})
}

func TestAdjustmentDocument_Cancel(t *testing.T) {
	t.Run("cancels a draft document", func(t *testing.T) {
		doc := createTestAdjustmentDocument(t)

		err := doc.Cancel("created in error")

		require.NoError(t, err)
		assert.Equal(t, AdjustmentDocumentStatusCancelled, doc.Status)
		assert.Equal(t, "created in error", doc.CancelReason)
		require.NotNil(t, doc.CancelledAt)
	})

	t.Run("fails to cancel a posted document", func(t *testing.T) {
		doc := createTestAdjustmentDocument(t)
		require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, ""))
		require.NoError(t, doc.MarkLinePosted(doc.Lines[0].ID))
		require.NoError(t, doc.Post())

		err := doc.Cancel("too late")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot transition")
	})
}

func TestAdjustmentDocument_AllLinesPosted(t *testing.T) {
	doc := createTestAdjustmentDocument(t)
	require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, ""))
	require.NoError(t, doc.AddLine(uuid.New(), decimal.NewFromInt(-1), decimal.Zero, ""))

	assert.False(t, doc.AllLinesPosted())

	require.NoError(t, doc.MarkLinePosted(doc.Lines[0].ID))
	assert.False(t, doc.AllLinesPosted())

	require.NoError(t, doc.MarkLinePosted(doc.Lines[1].ID))
	assert.True(t, doc.AllLinesPosted())
}
