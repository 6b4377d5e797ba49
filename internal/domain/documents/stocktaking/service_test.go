package stocktaking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/numerator"
	"stockwise/internal/core/tx"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/registers/stock"
)

type fakeProducts struct {
	items []*product.Product
}

func (f *fakeProducts) ListActiveTracked(ctx context.Context) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range f.items {
		if p.IsTracked() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Exists(ctx context.Context, productID id.ID) (bool, error) {
	for _, p := range f.items {
		if p.ID == productID {
			return true, nil
		}
	}
	return false, nil
}

type testEnv struct {
	svc      *Service
	repo     *MemoryRepository
	ledger   *stock.Service
	stock    *stock.MemoryRepository
	products *fakeProducts
}

func newTestEnv() *testEnv {
	stockRepo := stock.NewMemoryRepository()
	ledger := stock.NewService(stockRepo, tx.NoopManager{})
	repo := NewMemoryRepository()
	products := &fakeProducts{}

	svc := NewService(repo, products, ledger, &numerator.MockGenerator{}, tx.NoopManager{})
	return &testEnv{
		svc:      svc,
		repo:     repo,
		ledger:   ledger,
		stock:    stockRepo,
		products: products,
	}
}

func (e *testEnv) addProduct(t *testing.T, qty types.Quantity) *product.Product {
	t.Helper()
	p := product.New("P-001", "test product", id.New().String())
	p.StockQuantity = qty
	e.products.items = append(e.products.items, p)
	e.stock.Seed(p.ID, qty)
	return p
}

func (e *testEnv) startedSession(t *testing.T) *Stocktaking {
	t.Helper()
	ctx := context.Background()
	doc := New("")
	require.NoError(t, e.svc.Create(ctx, doc))
	started, err := e.svc.Start(ctx, doc.ID)
	require.NoError(t, err)
	return started
}

func TestStart_SnapshotsTrackedProducts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tracked := env.addProduct(t, 12)
	untracked := env.addProduct(t, 5)
	untracked.TrackStock = false
	inactive := env.addProduct(t, 5)
	inactive.IsActive = false

	doc := New("user-1")
	require.NoError(t, env.svc.Create(ctx, doc))

	started, err := env.svc.Start(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, started.Status)
	require.Len(t, started.Lines, 1)
	assert.Equal(t, tracked.ID, started.Lines[0].ProductID)
	assert.EqualValues(t, 12, started.Lines[0].ExpectedQuantity)
	assert.Nil(t, started.Lines[0].CountedQuantity)
}

func TestStart_OnlyFromDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := env.startedSession(t)

	_, err := env.svc.Start(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestRecordCounts_RequiresInProgress(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.addProduct(t, 10)
	doc := New("")
	require.NoError(t, env.svc.Create(ctx, doc))

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{{ProductID: p.ID, CountedQuantity: 9}})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestRecordCounts_SetsDifference(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.addProduct(t, 10)
	doc := env.startedSession(t)

	updated, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{
		{ProductID: p.ID, CountedQuantity: 7, Notes: "shelf B"},
	})
	require.NoError(t, err)

	line := updated.FindLineByProduct(p.ID)
	require.NotNil(t, line)
	require.NotNil(t, line.CountedQuantity)
	assert.EqualValues(t, 7, *line.CountedQuantity)
	require.NotNil(t, line.Difference)
	assert.EqualValues(t, -3, *line.Difference)
	assert.Equal(t, "shelf B", line.Notes)
}

func TestRecordCounts_UnsnapshottedProductAppended(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := env.startedSession(t)

	// Product registered after the snapshot was taken
	late := env.addProduct(t, 4)

	updated, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{
		{ProductID: late.ID, CountedQuantity: 6},
	})
	require.NoError(t, err)

	line := updated.FindLineByProduct(late.ID)
	require.NotNil(t, line)
	assert.EqualValues(t, 4, line.ExpectedQuantity)
	require.NotNil(t, line.Difference)
	assert.EqualValues(t, 2, *line.Difference)
}

func TestRecordCounts_UnknownProductRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{
		{ProductID: id.New(), CountedQuantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestComplete_AppliesCountAsTruth(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.addProduct(t, 10)
	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{{ProductID: p.ID, CountedQuantity: 7}})
	require.NoError(t, err)

	completed, err := env.svc.Complete(ctx, doc.ID, true, "evening count")
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Contains(t, completed.Notes, "evening count")

	qty, err := env.ledger.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7, qty)

	movements := env.stock.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, stock.MovementStocktaking, movements[0].Type)
	require.NotNil(t, movements[0].DocumentID)
	assert.Equal(t, doc.ID, *movements[0].DocumentID)
}

func TestComplete_CountIsTruthAfterExternalDebit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.addProduct(t, 10)
	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{{ProductID: p.ID, CountedQuantity: 9}})
	require.NoError(t, err)

	// Stock moves between count and completion
	_, err = env.ledger.AdjustStock(ctx, stock.Adjustment{ProductID: p.ID, Delta: -4})
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, doc.ID, true, "")
	require.NoError(t, err)

	qty, err := env.ledger.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 9, qty, "counted value wins over interleaved movements")
}

func TestComplete_SkipsUncountedLines(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	counted := env.addProduct(t, 10)
	uncounted := env.addProduct(t, 5)
	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{{ProductID: counted.ID, CountedQuantity: 8}})
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, doc.ID, true, "")
	require.NoError(t, err)

	qty, err := env.ledger.GetStock(ctx, uncounted.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, qty, "uncounted position must stay untouched")

	qty, err = env.ledger.GetStock(ctx, counted.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, qty)
}

func TestComplete_WithoutApplyLeavesLedgerAlone(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.addProduct(t, 10)
	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{{ProductID: p.ID, CountedQuantity: 3}})
	require.NoError(t, err)

	completed, err := env.svc.Complete(ctx, doc.ID, false, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	qty, err := env.ledger.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, qty)
	assert.Empty(t, env.stock.Movements())
}

func TestComplete_SecondCallLoses(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.addProduct(t, 10)
	doc := env.startedSession(t)

	_, err := env.svc.Complete(ctx, doc.ID, true, "")
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, doc.ID, true, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestCancel_NoLedgerEffect(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := env.addProduct(t, 10)
	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{{ProductID: p.ID, CountedQuantity: 1}})
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	qty, err := env.ledger.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, qty)
	assert.Empty(t, env.stock.Movements())

	// Idempotent
	_, err = env.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)

	// No revival
	_, err = env.svc.Complete(ctx, doc.ID, true, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestDelete_OnlyDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := env.startedSession(t)
	err := env.svc.Delete(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	draft := New("")
	require.NoError(t, env.svc.Create(ctx, draft))
	require.NoError(t, env.svc.Delete(ctx, draft.ID))

	_, err = env.svc.GetByID(ctx, draft.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestHistorySummary(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	short := env.addProduct(t, 10)
	over := env.addProduct(t, 10)
	match := env.addProduct(t, 10)
	doc := env.startedSession(t)

	_, err := env.svc.RecordCounts(ctx, doc.ID, []CountInput{
		{ProductID: short.ID, CountedQuantity: 4},
		{ProductID: over.ID, CountedQuantity: 15},
		{ProductID: match.ID, CountedQuantity: 10},
	})
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, doc.ID, true, "")
	require.NoError(t, err)

	summaries, err := env.svc.HistorySummary(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, doc.ID, s.ID)
	assert.Equal(t, 3, s.ProductsCount)
	assert.Equal(t, 1, s.ShortageCount)
	assert.Equal(t, 1, s.OverageCount)
	assert.Equal(t, 1, s.MatchedCount)
}
