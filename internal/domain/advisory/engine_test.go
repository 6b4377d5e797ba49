package advisory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/supplier"
)

type fakeProducts []*product.Product

func (f fakeProducts) ListActiveTracked(ctx context.Context) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range f {
		if p.IsTracked() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeProducts) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, p := range f {
		if p.IsActive {
			count++
		}
	}
	return count, nil
}

type fakeSuppliers []*supplier.Supplier

func (f fakeSuppliers) GetMany(ctx context.Context, ids []id.ID) ([]*supplier.Supplier, error) {
	var out []*supplier.Supplier
	for _, s := range f {
		for _, wanted := range ids {
			if s.ID == wanted {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func newProduct(name string, stock, min types.Quantity, unitCost string) *product.Product {
	p := product.New("P", name, name+"-sku")
	p.StockQuantity = stock
	p.MinQuantity = min
	p.UnitCost = types.MustMoney(unitCost)
	return p
}

func TestComputeAlerts_PriorityClassification(t *testing.T) {
	tests := []struct {
		name     string
		stock    types.Quantity
		want     Priority
		excluded bool
	}{
		{"zero stock is critical", 0, PriorityCritical, false},
		{"below half threshold is high", 4, PriorityHigh, false},
		{"between half and threshold is medium", 8, PriorityMedium, false},
		{"at threshold is healthy", 10, "", true},
		{"above threshold is healthy", 11, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProduct("shampoo", tt.stock, 10, "5")
			engine := NewEngine(fakeProducts{p}, nil, DefaultOptions())

			result, err := engine.ComputeAlerts(context.Background(), Filter{})
			require.NoError(t, err)

			if tt.excluded {
				assert.Empty(t, result.Suggestions)
				return
			}
			require.Len(t, result.Suggestions, 1)
			assert.Equal(t, tt.want, result.Suggestions[0].Priority)
		})
	}
}

func TestComputeAlerts_SuggestedQuantityAndCost(t *testing.T) {
	p := newProduct("conditioner", 4, 10, "2.50")
	engine := NewEngine(fakeProducts{p}, nil, DefaultOptions())

	result, err := engine.ComputeAlerts(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)

	sug := result.Suggestions[0]
	assert.EqualValues(t, 16, sug.SuggestedOrderQuantity, "replenish to twice the threshold")
	assert.True(t, sug.EstimatedCost.Equal(types.MustMoney("40")), "cost: %s", sug.EstimatedCost)
	assert.True(t, result.Summary.TotalEstimatedCost.Equal(types.MustMoney("40")))
	assert.Equal(t, 1, result.Summary.HighCount)
}

func TestComputeAlerts_SkipsUntrackedThreshold(t *testing.T) {
	noThreshold := newProduct("sample", 0, 0, "1")
	engine := NewEngine(fakeProducts{noThreshold}, nil, DefaultOptions())

	result, err := engine.ComputeAlerts(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
}

func TestComputeAlerts_FiltersByProductType(t *testing.T) {
	retail := newProduct("dye", 0, 10, "1")
	retail.Type = "retail"
	backbar := newProduct("bleach", 0, 10, "1")
	backbar.Type = "backbar"

	engine := NewEngine(fakeProducts{retail, backbar}, nil, DefaultOptions())

	result, err := engine.ComputeAlerts(context.Background(), Filter{ProductType: "retail"})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "dye", result.Suggestions[0].ProductName)
}

func TestComputeAlerts_LowTierOptIn(t *testing.T) {
	p := newProduct("towels", 11, 10, "1")

	engine := NewEngine(fakeProducts{p}, nil, Options{LowBufferFactor: 1.2, IncludeLow: true})
	result, err := engine.ComputeAlerts(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, PriorityLow, result.Suggestions[0].Priority)
	assert.EqualValues(t, 9, result.Suggestions[0].SuggestedOrderQuantity)
	assert.Equal(t, 1, result.Summary.LowCount)
}

func TestComputeAlerts_ResolvesSupplierNames(t *testing.T) {
	sup := supplier.New("S-001", "Beauty Wholesale")
	p := newProduct("gloves", 0, 10, "1")
	p.DefaultSupplierID = &sup.ID

	engine := NewEngine(fakeProducts{p}, fakeSuppliers{sup}, DefaultOptions())
	result, err := engine.ComputeAlerts(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "Beauty Wholesale", result.Suggestions[0].SupplierName)
}

func TestGroupBySupplier_Totals(t *testing.T) {
	supplierOne := id.New()
	supplierTwo := id.New()

	suggestions := []Suggestion{
		{ProductName: "a", SupplierID: &supplierOne, SupplierName: "One", EstimatedCost: types.MustMoney("50")},
		{ProductName: "b", SupplierID: &supplierOne, SupplierName: "One", EstimatedCost: types.MustMoney("30")},
		{ProductName: "c", SupplierID: &supplierTwo, SupplierName: "Two", EstimatedCost: types.MustMoney("20")},
	}

	engine := NewEngine(nil, nil, DefaultOptions())
	groups := engine.GroupBySupplier(suggestions)
	require.Len(t, groups, 2)

	byName := make(map[string]SupplierGroup)
	for _, g := range groups {
		byName[g.SupplierName] = g
	}

	one := byName["One"]
	assert.Len(t, one.Suggestions, 2)
	assert.True(t, one.TotalCost.Equal(types.MustMoney("80")), "total: %s", one.TotalCost)

	two := byName["Two"]
	assert.Len(t, two.Suggestions, 1)
	assert.True(t, two.TotalCost.Equal(types.MustMoney("20")))
}

func TestGroupBySupplier_NoSupplierSentinel(t *testing.T) {
	suggestions := []Suggestion{
		{ProductName: "orphan", EstimatedCost: types.MustMoney("10")},
	}

	engine := NewEngine(nil, nil, DefaultOptions())
	groups := engine.GroupBySupplier(suggestions)
	require.Len(t, groups, 1)
	assert.True(t, id.IsNil(groups[0].SupplierID))
	assert.True(t, groups[0].TotalCost.Equal(types.MustMoney("10")))
}

func TestStockSummary_Partitions(t *testing.T) {
	untracked := newProduct("service item", 0, 0, "1")
	untracked.TrackStock = false

	inactive := newProduct("discontinued", 0, 10, "1")
	inactive.IsActive = false

	products := fakeProducts{
		newProduct("out", 0, 10, "1"),
		newProduct("low", 4, 10, "1"),
		newProduct("healthy", 15, 10, "1"),
		newProduct("unthresholded", 3, 0, "1"),
		untracked,
		inactive,
	}

	engine := NewEngine(products, nil, DefaultOptions())
	summary, err := engine.StockSummary(context.Background())
	require.NoError(t, err)

	// Total spans every active product, including the untracked one
	assert.Equal(t, 5, summary.TotalProducts)
	assert.Equal(t, 3, summary.TrackedProducts)
	assert.Equal(t, 1, summary.OutOfStockCount)
	assert.Equal(t, 1, summary.LowStockCount)
	assert.Equal(t, 1, summary.HealthyStockCount)
}
