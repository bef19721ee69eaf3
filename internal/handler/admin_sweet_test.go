package handler

import (
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

	"github.com/iliyamo/sweet-shop-api/internal/repository"
)

func newAdminHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAdminHandler(repository.NewSweetRepo(db), repository.NewPurchaseRepo(db)), mock
}

// adminCtx builds a context the way JWTAuth + RequireAdmin leave it
// for admin id 5.
func adminCtx(t *testing.T, method, target, body, id string) (echo.Context, *httptest.ResponseRecorder) {
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
	c.Set("user_id", uint64(5))
	c.Set("username", "root")
	c.Set("role", "admin")
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func TestAdminCreateSweet(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sweets (name, category, price, quantity, created_by) VALUES (?,?,?,?,?)")).
		WithArgs("Fudge", "Chocolate", sqlmock.AnyArg(), 10, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "3.50", 10, 5))

	c, rec := adminCtx(t, http.MethodPost, "/v1/sweets", `{"name":"Fudge","category":"Chocolate","price":"3.50","quantity":10}`, "")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"3.50"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateRejectsNonPositivePrice(t *testing.T) {
	h, mock := newAdminHandler(t)
	c, rec := adminCtx(t, http.MethodPost, "/v1/sweets", `{"name":"Fudge","category":"Chocolate","price":"0","quantity":10}`, "")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price must be greater than zero")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateRequiresName(t *testing.T) {
	h, _ := newAdminHandler(t)
	c, _ := adminCtx(t, http.MethodPost, "/v1/sweets", `{"category":"Chocolate","price":"1.00"}`, "")
	err := h.Create(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAdminUpdateForbiddenForForeignSweet(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_by FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"created_by"}).AddRow(99))

	c, rec := adminCtx(t, http.MethodPut, "/v1/sweets/9", `{"name":"New Name"}`, "9")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "you can only edit sweets that you created")
}

func TestAdminUpdateAppliesPatch(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_by FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"created_by"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sweets SET updated_at=NOW(), name=? WHERE id=?")).
		WithArgs("Dark Fudge", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Dark Fudge", "Chocolate", "3.50", 10, 5))

	c, rec := adminCtx(t, http.MethodPut, "/v1/sweets/9", `{"name":"Dark Fudge"}`, "9")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dark Fudge")
}

func TestAdminUpdateRejectsEmptyName(t *testing.T) {
	h, mock := newAdminHandler(t)
	c, rec := adminCtx(t, http.MethodPut, "/v1/sweets/9", `{"name":""}`, "9")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name cannot be empty")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminDeleteOwnSweet(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_by FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"created_by"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sweets WHERE id=?")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := adminCtx(t, http.MethodDelete, "/v1/sweets/9", "", "9")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAdminDeleteMissingSweet(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_by FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	c, rec := adminCtx(t, http.MethodDelete, "/v1/sweets/404", "", "404")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRestock(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "3.50", 2, 99)) // owned by another admin: restock is still allowed
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sweets SET quantity = quantity + ?, updated_at=NOW() WHERE id=?")).
		WithArgs(10, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sweets WHERE id=? LIMIT 1")).
		WithArgs(9).
		WillReturnRows(sweetRow(9, "Fudge", "Chocolate", "3.50", 12, 99))

	c, rec := adminCtx(t, http.MethodPost, "/v1/sweets/9/restock", `{"quantity":10}`, "9")
	require.NoError(t, h.Restock(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":12`)
}

func TestAdminRestockRequiresQuantity(t *testing.T) {
	h, mock := newAdminHandler(t)
	c, rec := adminCtx(t, http.MethodPost, "/v1/sweets/9/restock", `{}`, "9")
	require.NoError(t, h.Restock(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be at least 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminHistoryScopedToOwnCatalog(t *testing.T) {
	h, mock := newAdminHandler(t)
	rows := sqlmock.NewRows([]string{"id", "user_id", "username", "sweet_name", "category", "price", "quantity", "total_price", "purchased_at"}).
		AddRow(4, 2, "bob", "Fudge", "Chocolate", "3.00", 2, "6.00", time.Now().UTC())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.role = 'user'")).
		WithArgs(5).
		WillReturnRows(rows)

	c, rec := adminCtx(t, http.MethodGet, "/v1/admin/purchase-history", "", "")
	require.NoError(t, h.History(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"bob"`)
}
