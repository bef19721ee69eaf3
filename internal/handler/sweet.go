package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/sweet-shop-api/internal/queue"
	"github.com/iliyamo/sweet-shop-api/internal/repository"
	queue_publisher "github.com/iliyamo/sweet-shop-api/internal/service"
)

// SweetHandler serves the catalog endpoints available to every
// authenticated user: list, search, purchase and purchase history.
// The purchase runs the stock decrement and the history insert in one
// transaction owned here; repositories only expose the Tx pieces.
type SweetHandler struct {
	Sweets    *repository.SweetRepo
	Purchases *repository.PurchaseRepo
	// publish is swapped out in tests; production wiring points it at
	// the RabbitMQ publisher.
	publish func(context.Context, queue.PurchaseCompletedEvent) error
}

func NewSweetHandler(s *repository.SweetRepo, p *repository.PurchaseRepo) *SweetHandler {
	if s == nil || p == nil {
		panic("nil repository passed to NewSweetHandler")
	}
	return &SweetHandler{Sweets: s, Purchases: p, publish: queue_publisher.PublishPurchaseCompleted}
}

// List handles GET /v1/sweets and returns the whole catalog.
func (h *SweetHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sweets, err := h.Sweets.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list sweets failed"})
	}
	return c.JSON(http.StatusOK, toSweetResps(sweets))
}

// Search handles GET /v1/sweets/search. Filters arrive as query
// parameters; absent parameters are skipped and present ones combine
// with AND.
func (h *SweetHandler) Search(c echo.Context) error {
	var f repository.SweetFilter
	if v := c.QueryParam("name"); v != "" {
		f.Name = &v
	}
	if v := c.QueryParam("category"); v != "" {
		f.Category = &v
	}
	if v := c.QueryParam("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_price"})
		}
		f.MinPrice = &d
	}
	if v := c.QueryParam("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price"})
		}
		f.MaxPrice = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sweets, err := h.Sweets.Search(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search sweets failed"})
	}
	return c.JSON(http.StatusOK, toSweetResps(sweets))
}

// Purchase handles POST /v1/sweets/:id/purchase. The checks run in a
// fixed order so the buyer always gets the most specific failure:
// missing sweet, then empty stock, then a request larger than stock.
// On success the decrement and the history row commit together.
func (h *SweetHandler) Purchase(c echo.Context) error {
	buyerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sweetID, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sweet id"})
	}
	var body struct {
		Quantity *uint32 `json:"quantity"` // omitted means 1
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	qty := uint32(1)
	if body.Quantity != nil {
		qty = *body.Quantity
	}
	if qty < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tx, err := h.Sweets.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin transaction failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sweets.GetForUpdateTx(ctx, tx, sweetID)
	if err != nil {
		if errors.Is(err, repository.ErrSweetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sweet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sweet failed"})
	}
	if s.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrOutOfStock.Error()})
	}
	if qty > s.Quantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrInsufficientStock.Error()})
	}

	if err := h.Sweets.DecrementStockTx(ctx, tx, sweetID, qty); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrInsufficientStock.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update stock failed"})
	}

	rec := s.Snapshot(buyerID, qty)
	if err := h.Purchases.InsertTx(ctx, tx, &rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record purchase failed"})
	}
	fresh, err := h.Sweets.GetByIDTx(ctx, tx, sweetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sweet failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	// Best-effort event; a broker outage must not fail the purchase.
	_ = h.publish(c.Request().Context(), queue.PurchaseCompletedEvent{
		PurchaseID:  rec.ID,
		UserID:      buyerID,
		Username:    getUsername(c),
		SweetID:     s.ID,
		SweetName:   rec.SweetName,
		Category:    rec.Category,
		Quantity:    qty,
		UnitPrice:   rec.Price.StringFixed(2),
		TotalPrice:  rec.TotalPrice.StringFixed(2),
		Remaining:   fresh.Quantity,
		PurchasedAt: rec.PurchasedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toSweetResp(fresh))
}

// History handles GET /v1/purchase-history for the current user.
func (h *SweetHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Purchases.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load purchase history failed"})
	}
	return c.JSON(http.StatusOK, entries)
}
