package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
)

type receiptRow struct {
	entity.Document

	SupplierID  id.ID  `db:"supplier_id" json:"supplierId"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Payment     string `db:"payment_status" json:"paymentStatus"`

	Items    []string `db:"-" json:"items"`
	Internal string   `json:"internal"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[receiptRow]()

	// Embedded Document (and its BaseDocument/BaseEntity) columns come first.
	for _, want := range []string{
		"id", "version", "created_at", "updated_at",
		"number", "date", "status", "notes", "created_by", "approved_by",
		"supplier_id", "warehouse_id", "payment_status",
	} {
		assert.Contains(t, cols, want)
	}

	assert.NotContains(t, cols, "-", "db:\"-\" fields must be skipped")
	assert.NotContains(t, cols, "Items")
	assert.NotContains(t, cols, "Internal", "untagged fields must be skipped")
}

func TestExtractDBColumnsPointer(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[receiptRow](), ExtractDBColumns[*receiptRow]())
}

func TestStructToMap(t *testing.T) {
	supplier := id.New()
	warehouse := id.New()

	row := receiptRow{
		Document:    entity.NewDocument(entity.StatusDraft),
		SupplierID:  supplier,
		WarehouseID: warehouse,
		Payment:     "UNPAID",
		Items:       []string{"should not leak"},
		Internal:    "should not leak",
	}
	row.Number = "GR-2026-00042"
	row.Notes = "dock 3"

	m := StructToMap(&row)
	require.NotNil(t, m)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, "GR-2026-00042", m["number"])
	assert.Equal(t, entity.StatusDraft, m["status"])
	assert.Equal(t, "dock 3", m["notes"])
	assert.Equal(t, supplier, m["supplier_id"])
	assert.Equal(t, warehouse, m["warehouse_id"])
	assert.Equal(t, "UNPAID", m["payment_status"])

	_, hasItems := m["-"]
	assert.False(t, hasItems)
	assert.NotContains(t, m, "Internal")
}

func TestStructToMapAcceptsValueAndPointer(t *testing.T) {
	row := receiptRow{Document: entity.NewDocument(entity.StatusPending)}
	row.Number = "CR-2026-00001"

	byValue := StructToMap(row)
	byPointer := StructToMap(&row)

	assert.Equal(t, byValue["number"], byPointer["number"])
	assert.Equal(t, byValue["status"], byPointer["status"])
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("nope"))
	assert.Nil(t, StructToMap(time.Now))
}
