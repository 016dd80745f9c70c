package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"woodline/internal/core/entity"
	"woodline/internal/core/id"
)

type testCatalog struct {
	entity.Catalog
	Phone string `db:"phone" json:"phone"`
}

type testDocument struct {
	entity.BaseDocument
	Number  string    `db:"number" json:"number"`
	SoldAt  time.Time `db:"sold_at" json:"soldAt"`
	Ignored string    `db:"-" json:"-"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "phone"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.Len(t, cols, len(expected))
}

func TestExtractDBColumns_Document(t *testing.T) {
	cols := ExtractDBColumns[testDocument]()

	assert.Contains(t, cols, "created_at")
	assert.Contains(t, cols, "number")
	assert.Contains(t, cols, "sold_at")
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Ignored")
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
			Code: "C-00001",
			Name: "Aziz Karimov",
		},
		Phone: "+998901234567",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "C-00001", m["code"])
	assert.Equal(t, "Aziz Karimov", m["name"])
	assert.Equal(t, "+998901234567", m["phone"])
}

func TestStructToMap_Pointer(t *testing.T) {
	doc := &testDocument{
		BaseDocument: entity.NewBaseDocument(),
		Number:       "S-2026-00001",
	}

	m := StructToMap(doc)

	assert.Equal(t, "S-2026-00001", m["number"])
	assert.Equal(t, doc.ID, m["id"])
}
