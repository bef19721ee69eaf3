package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/sweet-shop-api/internal/model"
)

// SweetRepo provides CRUD operations for the sweets catalog together
// with the stock transitions (purchase decrement, restock increment).
// The purchase decrement is exposed as Tx methods so the handler can
// commit it together with the purchase_history insert; everything else
// is a single-row statement on the pool.
type SweetRepo struct{ db *sql.DB }

// NewSweetRepo returns a new SweetRepo bound to the given database.
func NewSweetRepo(db *sql.DB) *SweetRepo { return &SweetRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions
// spanning the sweets and purchase_history tables.
func (r *SweetRepo) DB() *sql.DB { return r.db }

const sweetCols = "id, name, category, price, quantity, created_by, created_at, updated_at"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanSweet(row rowScanner) (model.Sweet, error) {
	var (
		s       model.Sweet
		creator sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &creator, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Sweet{}, err
	}
	if creator.Valid {
		id := uint64(creator.Int64)
		s.CreatedBy = &id
	}
	return s, nil
}

// Create inserts a new sweet and populates its ID and timestamps from
// the stored row. CreatedBy must already be set to the acting admin.
func (r *SweetRepo) Create(ctx context.Context, s *model.Sweet) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO sweets (name, category, price, quantity, created_by) VALUES (?,?,?,?,?)",
		s.Name, s.Category, s.Price, s.Quantity, s.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	fresh, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = fresh
	return nil
}

// GetByID fetches a single sweet. Absence maps to ErrSweetNotFound.
func (r *SweetRepo) GetByID(ctx context.Context, id uint64) (model.Sweet, error) {
	s, err := scanSweet(r.db.QueryRowContext(ctx,
		"SELECT "+sweetCols+" FROM sweets WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Sweet{}, ErrSweetNotFound
	}
	return s, err
}

// List returns every sweet in the catalog. No ordering is guaranteed.
func (r *SweetRepo) List(ctx context.Context) ([]model.Sweet, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+sweetCols+" FROM sweets")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Sweet, 0)
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SweetFilter holds the optional search predicates. Nil fields are
// skipped; present fields combine with AND.
type SweetFilter struct {
	Name     *string          // case-insensitive substring on name
	Category *string          // case-insensitive substring on category
	MinPrice *decimal.Decimal // inclusive lower bound
	MaxPrice *decimal.Decimal // inclusive upper bound
}

// Search returns the sweets matching every present filter predicate.
func (r *SweetRepo) Search(ctx context.Context, f SweetFilter) ([]model.Sweet, error) {
	query := "SELECT " + sweetCols + " FROM sweets"
	var (
		clauses []string
		args    []any
	)
	if f.Name != nil {
		clauses = append(clauses, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(*f.Name)+"%")
	}
	if f.Category != nil {
		clauses = append(clauses, "LOWER(category) LIKE ?")
		args = append(args, "%"+strings.ToLower(*f.Category)+"%")
	}
	if f.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Sweet, 0)
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SweetPatch carries the optional fields of a partial update. A nil
// field means "leave unchanged"; a present field is written even when
// it equals the current value.
type SweetPatch struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
	Quantity *uint32
}

// checkOwnership loads the sweet's creator and enforces the ownership
// rule shared by Update and Delete: a sweet with a non-null created_by
// may only be touched by that admin.
func (r *SweetRepo) checkOwnership(ctx context.Context, id, actorID uint64) error {
	var creator sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT created_by FROM sweets WHERE id=? LIMIT 1", id).Scan(&creator)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSweetNotFound
	}
	if err != nil {
		return err
	}
	if creator.Valid && uint64(creator.Int64) != actorID {
		return ErrForbidden
	}
	return nil
}

// Update applies the present patch fields to the sweet and bumps
// updated_at. The acting admin must own the sweet (or the sweet must
// be unowned). Returns the refreshed row.
func (r *SweetRepo) Update(ctx context.Context, id uint64, patch SweetPatch, actorID uint64) (model.Sweet, error) {
	if err := r.checkOwnership(ctx, id, actorID); err != nil {
		return model.Sweet{}, err
	}
	sets := []string{"updated_at=NOW()"}
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *patch.Name)
	}
	if patch.Category != nil {
		sets = append(sets, "category=?")
		args = append(args, *patch.Category)
	}
	if patch.Price != nil {
		sets = append(sets, "price=?")
		args = append(args, *patch.Price)
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity=?")
		args = append(args, *patch.Quantity)
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE sweets SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return model.Sweet{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the sweet entirely. Same ownership rule as Update.
// Purchase history rows referencing the sweet are left untouched.
func (r *SweetRepo) Delete(ctx context.Context, id, actorID uint64) error {
	if err := r.checkOwnership(ctx, id, actorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM sweets WHERE id=?", id)
	return err
}

// Restock increments the stock unconditionally and returns the
// refreshed row. There is deliberately no ownership check here: any
// admin may restock any sweet, unlike Update/Delete.
func (r *SweetRepo) Restock(ctx context.Context, id uint64, qty uint32) (model.Sweet, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Sweet{}, err
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE sweets SET quantity = quantity + ?, updated_at=NOW() WHERE id=?", qty, id)
	if err != nil {
		return model.Sweet{}, err
	}
	return r.GetByID(ctx, id)
}

// GetForUpdateTx loads a sweet inside the purchase transaction with a
// row lock, so concurrent purchases of the same sweet serialize on the
// database instead of racing on a read-then-write pair.
func (r *SweetRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Sweet, error) {
	s, err := scanSweet(tx.QueryRowContext(ctx,
		"SELECT "+sweetCols+" FROM sweets WHERE id=? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Sweet{}, ErrSweetNotFound
	}
	return s, err
}

// DecrementStockTx subtracts qty from the sweet's stock inside the
// purchase transaction. The WHERE clause re-checks the remaining
// quantity so the row can never go negative even if the caller's view
// was stale; in that case ErrInsufficientStock is returned and the
// caller rolls back.
func (r *SweetRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE sweets SET quantity = quantity - ?, updated_at=NOW() WHERE id=? AND quantity >= ?",
		qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// GetByIDTx re-reads the sweet inside an open transaction, used to
// return the post-decrement state to the buyer.
func (r *SweetRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Sweet, error) {
	s, err := scanSweet(tx.QueryRowContext(ctx,
		"SELECT "+sweetCols+" FROM sweets WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Sweet{}, ErrSweetNotFound
	}
	return s, err
}
