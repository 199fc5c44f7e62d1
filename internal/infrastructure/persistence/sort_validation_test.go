package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(" ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("ASC; DROP TABLE bills"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "bill_number", ValidateSortField("bill_number", BillSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", BillSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("nonexistent", BillSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("bill_number; --", BillSortFields, "created_at"))
}
