package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sweet represents a catalog item as stored in the `sweets` table.
// Price is a DECIMAL(10,2) column and is handled as a fixed-point
// decimal throughout; it is never converted to a float. Quantity is
// the units currently in stock and can never go negative: purchases
// decrement it with a conditional UPDATE so that two concurrent
// buyers cannot oversell the row.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the sweet.
//  Category  – free-form category label (e.g. "Chocolate").
//  Price     – unit price, two decimal places.
//  Quantity  – units in stock (non-negative).
//  CreatedBy – id of the admin who created the row; nil for
//              legacy/system rows. Only the owning admin may edit
//              or delete an owned sweet. Restock is intentionally
//              exempt from this check.
//  CreatedAt – creation timestamp.
//  UpdatedAt – bumped on every mutation.
type Sweet struct {
	ID        uint64          // sweets.id
	Name      string          // sweets.name
	Category  string          // sweets.category
	Price     decimal.Decimal // sweets.price
	Quantity  uint32          // sweets.quantity
	CreatedBy *uint64         // sweets.created_by (nullable)
	CreatedAt time.Time       // sweets.created_at
	UpdatedAt time.Time       // sweets.updated_at
}

// Snapshot builds the immutable purchase record for buying qty units
// of this sweet at its current price. The total is computed from the
// snapshot price, so later edits to the catalog row cannot change it.
func (s Sweet) Snapshot(buyerID uint64, qty uint32) PurchaseRecord {
	return PurchaseRecord{
		UserID:     buyerID,
		SweetID:    s.ID,
		SweetName:  s.Name,
		Category:   s.Category,
		Price:      s.Price,
		Quantity:   qty,
		TotalPrice: s.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}
