package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockwise/internal/core/entity"
)

type testCatalog struct {
	entity.Catalog
	SKU      string `db:"sku" json:"sku"`
	Internal string `db:"-" json:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expected := []string{"id", "version", "code", "name", "is_active", "sku"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		Catalog:  entity.NewCatalog("PRD-001", "Shampoo"),
		SKU:      "SHMP-250",
		Internal: "skip me",
	}
	cat.Version = 3

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, "PRD-001", m["code"])
	assert.Equal(t, "Shampoo", m["name"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "SHMP-250", m["sku"])
	assert.NotContains(t, m, "-")
}

func TestStructToMap_Pointer(t *testing.T) {
	cat := &testCatalog{
		Catalog: entity.NewCatalog("PRD-002", "Conditioner"),
		SKU:     "COND-250",
	}

	m := StructToMap(cat)

	assert.Equal(t, "PRD-002", m["code"])
	assert.Equal(t, "COND-250", m["sku"])
}
