package delivery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/numerator"
	"stockwise/internal/core/tx"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/registers/stock"
)

type productSet map[id.ID]bool

func (p productSet) Exists(ctx context.Context, productID id.ID) (bool, error) {
	return p[productID], nil
}

type testEnv struct {
	svc      *Service
	repo     *MemoryRepository
	ledger   *stock.Service
	stock    *stock.MemoryRepository
	products productSet
}

func newTestEnv() *testEnv {
	stockRepo := stock.NewMemoryRepository()
	ledger := stock.NewService(stockRepo, tx.NoopManager{})
	repo := NewMemoryRepository()
	products := make(productSet)

	svc := NewService(repo, products, ledger, &numerator.MockGenerator{}, tx.NoopManager{})
	return &testEnv{
		svc:      svc,
		repo:     repo,
		ledger:   ledger,
		stock:    stockRepo,
		products: products,
	}
}

func (e *testEnv) addProduct(t *testing.T, initialStock types.Quantity) id.ID {
	t.Helper()
	productID := id.New()
	e.products[productID] = true
	e.stock.Seed(productID, initialStock)
	return productID
}

func TestCreate_AssignsNumberAndDraftStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := New(nil)
	require.NoError(t, env.svc.Create(ctx, doc))

	assert.Equal(t, StatusDraft, doc.Status)
	assert.True(t, strings.HasPrefix(doc.Number, "DLV-"), "number: %s", doc.Number)
}

func TestCreate_RejectsUnknownProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := New(nil)
	doc.AddLine(id.New(), 5, types.MustMoney("10"))

	err := env.svc.Create(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddItem_RecalculatesTotal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	productID := env.addProduct(t, 0)
	doc := New(nil)
	require.NoError(t, env.svc.Create(ctx, doc))

	updated, err := env.svc.AddItem(ctx, doc.ID, ItemInput{
		ProductID: productID,
		Quantity:  3,
		UnitCost:  types.MustMoney("12.50"),
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 1, updated.Lines[0].LineNo)
	assert.True(t, updated.TotalCost.Equal(types.MustMoney("37.50")),
		"total: %s", updated.TotalCost)
}

func TestUpdateItem_PatchesLine(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	productID := env.addProduct(t, 0)
	doc := New(nil)
	doc.AddLine(productID, 3, types.MustMoney("10"))
	require.NoError(t, env.svc.Create(ctx, doc))

	qty := types.Quantity(5)
	updated, err := env.svc.UpdateItem(ctx, doc.ID, 1, ItemPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.EqualValues(t, 5, updated.Lines[0].Quantity)
	assert.True(t, updated.TotalCost.Equal(types.MustMoney("50")))
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := env.addProduct(t, 0)
	second := env.addProduct(t, 0)
	doc := New(nil)
	doc.AddLine(first, 1, types.MustMoney("5"))
	doc.AddLine(second, 2, types.MustMoney("7"))
	require.NoError(t, env.svc.Create(ctx, doc))

	updated, err := env.svc.RemoveItem(ctx, doc.ID, 1)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, second, updated.Lines[0].ProductID)
	assert.True(t, updated.TotalCost.Equal(types.MustMoney("14")))

	_, err = env.svc.RemoveItem(ctx, doc.ID, 99)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceive_PostsStockAndMarksReceived(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := env.addProduct(t, 10)
	second := env.addProduct(t, 0)

	doc := New(nil)
	doc.AddLine(first, 5, types.MustMoney("2"))
	doc.AddLine(second, 7, types.MustMoney("3"))
	require.NoError(t, env.svc.Create(ctx, doc))

	received, err := env.svc.Receive(ctx, doc.ID, "checked at gate")
	require.NoError(t, err)

	assert.Equal(t, StatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	assert.True(t, received.TotalCost.Equal(types.MustMoney("31")))
	assert.Contains(t, received.Notes, "checked at gate")

	qty, err := env.ledger.GetStock(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 15, qty)

	qty, err = env.ledger.GetStock(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 7, qty)

	movements := env.stock.Movements()
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, stock.MovementDelivery, m.Type)
		require.NotNil(t, m.DocumentID)
		assert.Equal(t, doc.ID, *m.DocumentID)
	}
}

func TestReceive_SecondCallLoses(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	productID := env.addProduct(t, 0)
	doc := New(nil)
	doc.AddLine(productID, 4, types.MustMoney("1"))
	require.NoError(t, env.svc.Create(ctx, doc))

	_, err := env.svc.Receive(ctx, doc.ID, "")
	require.NoError(t, err)

	_, err = env.svc.Receive(ctx, doc.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	// Stock posted exactly once
	qty, err := env.ledger.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, qty)
}

func TestReceive_RequiresItems(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := New(nil)
	require.NoError(t, env.svc.Create(ctx, doc))

	_, err := env.svc.Receive(ctx, doc.ID, "")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReceive_CancelledDeliveryRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	productID := env.addProduct(t, 0)
	doc := New(nil)
	doc.AddLine(productID, 4, types.MustMoney("1"))
	require.NoError(t, env.svc.Create(ctx, doc))

	_, err := env.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)

	_, err = env.svc.Receive(ctx, doc.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	qty, err := env.ledger.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, qty, "cancel must not move stock")
}

func TestCancel_IsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := New(nil)
	require.NoError(t, env.svc.Create(ctx, doc))

	cancelled, err := env.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	again, err := env.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
}

func TestCancel_ReceivedDeliveryRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	productID := env.addProduct(t, 0)
	doc := New(nil)
	doc.AddLine(productID, 1, types.MustMoney("1"))
	require.NoError(t, env.svc.Create(ctx, doc))

	_, err := env.svc.Receive(ctx, doc.ID, "")
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestModify_TerminalStatesRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	productID := env.addProduct(t, 0)
	doc := New(nil)
	doc.AddLine(productID, 1, types.MustMoney("1"))
	require.NoError(t, env.svc.Create(ctx, doc))

	_, err := env.svc.Receive(ctx, doc.ID, "")
	require.NoError(t, err)

	_, err = env.svc.AddItem(ctx, doc.ID, ItemInput{ProductID: productID, Quantity: 1, UnitCost: types.Zero()})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	notes := "late edit"
	_, err = env.svc.Update(ctx, doc.ID, HeaderPatch{Notes: &notes})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestDelete_OnlyDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	doc := New(nil)
	require.NoError(t, env.svc.Create(ctx, doc))

	status := StatusPending
	_, err := env.svc.Update(ctx, doc.ID, HeaderPatch{Status: &status})
	require.NoError(t, err)

	err = env.svc.Delete(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	status = StatusDraft
	_, err = env.svc.Update(ctx, doc.ID, HeaderPatch{Status: &status})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, doc.ID))

	_, err = env.svc.GetByID(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_FiltersByStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	draft := New(nil)
	require.NoError(t, env.svc.Create(ctx, draft))

	cancelled := New(nil)
	require.NoError(t, env.svc.Create(ctx, cancelled))
	_, err := env.svc.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)

	status := StatusDraft
	result, err := env.svc.List(ctx, ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, draft.ID, result.Items[0].ID)
}
