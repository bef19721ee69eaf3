package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord is an immutable row in the `purchase_history`
// table, written exactly once per successful purchase and never
// updated or deleted. Name, category and price are snapshots of the
// sweet at purchase time so that later catalog edits do not
// retroactively change historical totals.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – buyer.
//  SweetID     – purchased sweet (the sweet row may be deleted later).
//  SweetName   – name at purchase time.
//  Category    – category at purchase time.
//  Price       – unit price at purchase time.
//  Quantity    – units bought.
//  TotalPrice  – Price × Quantity, computed from the snapshot.
//  PurchasedAt – when the purchase committed.
type PurchaseRecord struct {
	ID          uint64          // purchase_history.id
	UserID      uint64          // purchase_history.user_id
	SweetID     uint64          // purchase_history.sweet_id
	SweetName   string          // purchase_history.sweet_name
	Category    string          // purchase_history.category
	Price       decimal.Decimal // purchase_history.price
	Quantity    uint32          // purchase_history.quantity
	TotalPrice  decimal.Decimal // purchase_history.total_price
	PurchasedAt time.Time       // purchase_history.purchased_at
}
