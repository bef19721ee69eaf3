package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/sweet-shop-api/internal/model"
)

// PurchaseRepo provides access to the append-only purchase_history
// table. Rows are only ever inserted, inside the purchase transaction
// owned by the handler, and read back for reporting; there is no
// update or delete path.
type PurchaseRepo struct{ db *sql.DB }

// NewPurchaseRepo returns a new PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// InsertTx appends a purchase record within the scope of an existing
// transaction. It populates the generated ID and the stored
// purchased_at timestamp on the provided record. The caller must
// commit or roll back the transaction together with the stock
// decrement so that neither outlives the other.
func (r *PurchaseRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.PurchaseRecord) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO purchase_history (user_id, sweet_id, sweet_name, category, price, quantity, total_price) VALUES (?,?,?,?,?,?,?)",
		rec.UserID, rec.SweetID, rec.SweetName, rec.Category, rec.Price, rec.Quantity, rec.TotalPrice)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	// Query back the stored timestamp so the response reflects the
	// database clock rather than the application's.
	return tx.QueryRowContext(ctx,
		"SELECT purchased_at FROM purchase_history WHERE id=?", rec.ID).Scan(&rec.PurchasedAt)
}

// HistoryEntry is a purchase row as returned to the buyer. Fields are
// the snapshot taken at purchase time.
type HistoryEntry struct {
	ID          uint64          `json:"id"`
	SweetID     uint64          `json:"sweet_id"`
	SweetName   string          `json:"sweet_name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    uint32          `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

// AdminHistoryEntry extends HistoryEntry with the buyer's identity for
// the per-admin catalog report. The username is resolved at query time
// from the users table, not snapshotted.
type AdminHistoryEntry struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"user_id"`
	Username    string          `json:"username"`
	SweetName   string          `json:"sweet_name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    uint32          `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

// ListByUser returns every purchase made by the given user, most
// recent first.
func (r *PurchaseRepo) ListByUser(ctx context.Context, userID uint64) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, sweet_id, sweet_name, category, price, quantity, total_price, purchased_at FROM purchase_history WHERE user_id=? ORDER BY purchased_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SweetID, &e.SweetName, &e.Category, &e.Price, &e.Quantity, &e.TotalPrice, &e.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListByAdminCatalog returns purchases of sweets created by the given
// admin, restricted to buyers whose current role is 'user', most
// recent first. The rows themselves are snapshots; scoping runs
// against the live sweets table, so a deleted sweet leaves this
// report while its history rows stay in the table.
func (r *PurchaseRepo) ListByAdminCatalog(ctx context.Context, adminID uint64) ([]AdminHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ph.id, ph.user_id, u.username, ph.sweet_name, ph.category, ph.price, ph.quantity, ph.total_price, ph.purchased_at
		 FROM purchase_history ph
		 JOIN users u ON u.id = ph.user_id
		 WHERE u.role = 'user'
		   AND ph.sweet_id IN (SELECT id FROM sweets WHERE created_by = ?)
		 ORDER BY ph.purchased_at DESC`,
		adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AdminHistoryEntry, 0)
	for rows.Next() {
		var e AdminHistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.SweetName, &e.Category, &e.Price, &e.Quantity, &e.TotalPrice, &e.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
