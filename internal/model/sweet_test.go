package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotComputesTotalFromUnitPrice(t *testing.T) {
	s := Sweet{
		ID:       9,
		Name:     "Fudge",
		Category: "Chocolate",
		Price:    decimal.RequireFromString("5.00"),
		Quantity: 10,
	}
	rec := s.Snapshot(2, 3)

	assert.Equal(t, uint64(2), rec.UserID)
	assert.Equal(t, uint64(9), rec.SweetID)
	assert.Equal(t, "Fudge", rec.SweetName)
	assert.Equal(t, "Chocolate", rec.Category)
	assert.Equal(t, uint32(3), rec.Quantity)
	assert.Equal(t, "15.00", rec.TotalPrice.StringFixed(2))
	// The snapshot price is the unit price, not the total.
	assert.True(t, rec.Price.Equal(s.Price))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superadmin"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("Admin")) // role values are lower case
}
