// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseCompletedEvent is published when a purchase commits. It
// carries the purchase snapshot so downstream consumers (receipts,
// stock alerts, analytics) can react without querying the primary
// database. Prices are serialized as fixed-point decimal strings.
type PurchaseCompletedEvent struct {
	PurchaseID  uint64 `json:"purchase_id"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	SweetID     uint64 `json:"sweet_id"`
	SweetName   string `json:"sweet_name"`
	Category    string `json:"category"`
	Quantity    uint32 `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
	Remaining   uint32 `json:"remaining_quantity"`
	PurchasedAt string `json:"purchased_at"`
}
