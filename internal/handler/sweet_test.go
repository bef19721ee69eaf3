package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sweet-shop-api/internal/queue"
	"github.com/iliyamo/sweet-shop-api/internal/repository"
)

var sweetColumns = []string{"id", "name", "category", "price", "quantity", "created_by", "created_at", "updated_at"}

func sweetRow(id uint64, name, category, price string, qty uint32, createdBy any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(sweetColumns).AddRow(id, name, category, price, qty, createdBy, now, now)
}

func newSweetHandler(t *testing.T) (*SweetHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewSweetHandler(repository.NewSweetRepo(db), repository.NewPurchaseRepo(db))
	// Tests never dial the broker.
	h.publish = func(context.Context, queue.PurchaseCompletedEvent) error { return nil }
	return h, mock
}

// authedCtx builds a context the way JWTAuth leaves it for a regular
// buyer, with an optional :id path parameter and JSON body.
func authedCtx(t *testing.T, method, target, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	if body == "" {
		body = "{}"
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(2))
	c.Set("username", "bob")
	c.Set("role", "user")
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func TestPurchaseSuccess(t *testing.T) {
	h, mock := newSweetHandler(t)
	var event queue.PurchaseCompletedEvent
	h.publish = func(_ context.Context, ev queue.PurchaseCompletedEvent) error {
		event = ev
		return nil
	}
	purchasedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? FOR UPDATE")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "5.00", 10, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sweets SET quantity = quantity - ?, updated_at=NOW() WHERE id=? AND quantity >= ?")).
		WithArgs(3, 9, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO purchase_history")).
		WithArgs(2, 9, "Fudge", "Chocolate", sqlmock.AnyArg(), 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT purchased_at FROM purchase_history WHERE id=?")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"purchased_at"}).AddRow(purchasedAt))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "5.00", 7, nil))
	mock.ExpectCommit()

	c, rec := authedCtx(t, http.MethodPost, "/v1/sweets/9/purchase", `{"quantity":3}`, "9")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":7`)
	assert.Contains(t, rec.Body.String(), `"price":"5.00"`)
	assert.NoError(t, mock.ExpectationsWereMet())

	// The emitted event snapshots the purchase, not the catalog row.
	assert.Equal(t, uint64(11), event.PurchaseID)
	assert.Equal(t, "bob", event.Username)
	assert.Equal(t, uint32(3), event.Quantity)
	assert.Equal(t, "5.00", event.UnitPrice)
	assert.Equal(t, "15.00", event.TotalPrice)
	assert.Equal(t, uint32(7), event.Remaining)
}

func TestPurchaseDefaultsQuantityToOne(t *testing.T) {
	h, mock := newSweetHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? FOR UPDATE")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "5.00", 10, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sweets SET quantity = quantity - ?")).
		WithArgs(1, 9, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO purchase_history")).
		WithArgs(2, 9, "Fudge", "Chocolate", sqlmock.AnyArg(), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT purchased_at FROM purchase_history WHERE id=?")).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows([]string{"purchased_at"}).AddRow(time.Now().UTC()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "5.00", 9, nil))
	mock.ExpectCommit()

	c, rec := authedCtx(t, http.MethodPost, "/v1/sweets/9/purchase", "", "9")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseZeroQuantityRejectedBeforeDB(t *testing.T) {
	h, mock := newSweetHandler(t)
	c, rec := authedCtx(t, http.MethodPost, "/v1/sweets/9/purchase", `{"quantity":0}`, "9")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be at least 1")
	// No transaction was opened.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseSweetNotFound(t *testing.T) {
	h, mock := newSweetHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? FOR UPDATE")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := authedCtx(t, http.MethodPost, "/v1/sweets/404/purchase", `{"quantity":1}`, "404")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "sweet not found")
}

func TestPurchaseOutOfStock(t *testing.T) {
	h, mock := newSweetHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? FOR UPDATE")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "5.00", 0, nil))
	mock.ExpectRollback()

	c, rec := authedCtx(t, http.MethodPost, "/v1/sweets/9/purchase", `{"quantity":1}`, "9")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sweet is out of stock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseInsufficientStock(t *testing.T) {
	h, mock := newSweetHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? FOR UPDATE")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "5.00", 2, nil))
	mock.ExpectRollback()

	c, rec := authedCtx(t, http.MethodPost, "/v1/sweets/9/purchase", `{"quantity":5}`, "9")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient quantity available")
	// The stock row was never written.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReturnsCatalog(t *testing.T) {
	h, mock := newSweetHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets")).
		WillReturnRows(sweetRow(1, "Fudge", "Chocolate", "3.00", 10, nil).
			AddRow(2, "Lollipop", "Candy", "1.25", 50, nil, time.Now().UTC(), time.Now().UTC()))

	c, rec := authedCtx(t, http.MethodGet, "/v1/sweets", "", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"1.25"`)
}

func TestSearchRejectsBadMinPrice(t *testing.T) {
	h, mock := newSweetHandler(t)
	c, rec := authedCtx(t, http.MethodGet, "/v1/sweets/search?min_price=abc", "", "")
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid min_price")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPassesFiltersThrough(t *testing.T) {
	h, mock := newSweetHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE LOWER(name) LIKE ? AND price <= ?")).
		WithArgs("%fudge%", sqlmock.AnyArg()).
		WillReturnRows(sweetRow(1, "Fudge", "Chocolate", "3.00", 10, nil))

	c, rec := authedCtx(t, http.MethodGet, "/v1/sweets/search?name=Fudge&max_price=4", "", "")
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fudge")
}

func TestHistoryListsOwnPurchases(t *testing.T) {
	h, mock := newSweetHandler(t)
	rows := sqlmock.NewRows([]string{"id", "sweet_id", "sweet_name", "category", "price", "quantity", "total_price", "purchased_at"}).
		AddRow(4, 9, "Fudge", "Chocolate", "3.00", 2, "6.00", time.Now().UTC())
	mock.ExpectQuery(regexp.QuoteMeta("FROM purchase_history WHERE user_id=? ORDER BY purchased_at DESC")).
		WithArgs(2).
		WillReturnRows(rows)

	c, rec := authedCtx(t, http.MethodGet, "/v1/purchase-history", "", "")
	require.NoError(t, h.History(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_price":"6.00"`)
}
