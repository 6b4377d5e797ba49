package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/tx"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo, tx.NoopManager{}), repo
}

func TestAdjustStock_AppliesDelta(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 10)

	after, err := svc.AdjustStock(ctx, Adjustment{
		ProductID: productID,
		Delta:     5,
		Type:      MovementDelivery,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 15, after)

	qty, err := svc.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 15, qty)
}

func TestAdjustStock_NegativeDelta(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 10)

	after, err := svc.AdjustStock(ctx, Adjustment{ProductID: productID, Delta: -10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, after)
}

func TestAdjustStock_RejectsBelowZero(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 3)

	_, err := svc.AdjustStock(ctx, Adjustment{ProductID: productID, Delta: -4})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Balance and journal untouched after the failed attempt
	qty, err := svc.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, qty)
	assert.Empty(t, repo.Movements())
}

func TestAdjustStock_RejectsZeroDelta(t *testing.T) {
	svc, repo := newTestService()

	productID := id.New()
	repo.Seed(productID, 3)

	_, err := svc.AdjustStock(context.Background(), Adjustment{ProductID: productID, Delta: 0})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AdjustStock(context.Background(), Adjustment{ProductID: id.New(), Delta: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSetStock_OverwritesBalance(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 20)

	delta, err := svc.SetStock(ctx, productID, 12, MovementStocktaking, nil)
	require.NoError(t, err)
	assert.EqualValues(t, -8, delta)

	qty, err := svc.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 12, qty)
}

func TestSetStock_NoChangeWritesNoMovement(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 7)

	delta, err := svc.SetStock(ctx, productID, 7, MovementStocktaking, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, delta)
	assert.Empty(t, repo.Movements())
}

func TestSetStock_RejectsNegativeTarget(t *testing.T) {
	svc, repo := newTestService()

	productID := id.New()
	repo.Seed(productID, 7)

	_, err := svc.SetStock(context.Background(), productID, -1, MovementStocktaking, nil)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestBatchAdjust_AllOrNothing(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	first := id.New()
	second := id.New()
	repo.Seed(first, 10)
	repo.Seed(second, 1)

	err := svc.BatchAdjust(ctx, []Adjustment{
		{ProductID: first, Delta: 5, Type: MovementDelivery},
		{ProductID: second, Delta: -2, Type: MovementDelivery},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	qty, err := svc.GetStock(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 10, qty, "first product must stay untouched when the batch fails")

	qty, err = svc.GetStock(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, qty)
	assert.Empty(t, repo.Movements())
}

func TestBatchAdjust_AppliesAll(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	docID := id.New()
	first := id.New()
	second := id.New()
	repo.Seed(first, 0)
	repo.Seed(second, 4)

	err := svc.BatchAdjust(ctx, []Adjustment{
		{ProductID: first, Delta: 3, Type: MovementDelivery, DocumentID: &docID},
		{ProductID: second, Delta: 6, Type: MovementDelivery, DocumentID: &docID},
	})
	require.NoError(t, err)

	qty, err := svc.GetStock(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 3, qty)

	qty, err = svc.GetStock(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 10, qty)

	movements := repo.Movements()
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, MovementDelivery, m.Type)
		require.NotNil(t, m.DocumentID)
		assert.Equal(t, docID, *m.DocumentID)
	}
}

func TestBatchAdjust_RepeatedProduct(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 5)

	err := svc.BatchAdjust(ctx, []Adjustment{
		{ProductID: productID, Delta: 2},
		{ProductID: productID, Delta: -7},
	})
	require.NoError(t, err)

	qty, err := svc.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, qty)
}

func TestMovementJournal_SnapshotsBalances(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 10)

	_, err := svc.AdjustStock(ctx, Adjustment{ProductID: productID, Delta: 4, Type: MovementDelivery})
	require.NoError(t, err)
	_, err = svc.SetStock(ctx, productID, 8, MovementStocktaking, nil)
	require.NoError(t, err)

	history, err := svc.ListMovements(ctx, productID, MovementFilter{})
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first
	assert.Equal(t, MovementStocktaking, history[0].Type)
	assert.EqualValues(t, -6, history[0].Quantity)
	assert.EqualValues(t, 14, history[0].QuantityBefore)
	assert.EqualValues(t, 8, history[0].QuantityAfter)

	assert.Equal(t, MovementDelivery, history[1].Type)
	assert.EqualValues(t, 10, history[1].QuantityBefore)
	assert.EqualValues(t, 14, history[1].QuantityAfter)
}

func TestListMovements_DateWindow(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	productID := id.New()
	repo.Seed(productID, 0)

	atDay := func(day int) *Movement {
		m := NewMovement(productID, MovementAdjustment, 1, 0)
		m.CreatedAt = time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
		return m
	}
	require.NoError(t, repo.AppendMovements(ctx, []*Movement{atDay(1), atDay(10), atDay(20)}))

	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	history, err := svc.ListMovements(ctx, productID, MovementFilter{FromDate: &from, ToDate: &to})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 10, history[0].CreatedAt.Day())

	history, err = svc.ListMovements(ctx, productID, MovementFilter{FromDate: &from})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
