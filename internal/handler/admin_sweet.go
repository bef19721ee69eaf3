package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/sweet-shop-api/internal/model"
	"github.com/iliyamo/sweet-shop-api/internal/repository"
)

// AdminHandler serves the admin-gated catalog endpoints: create,
// update, delete, restock and the per-admin purchase report. The
// router mounts every route here behind RequireAdmin, so handlers can
// assume the principal's stored role was already checked.
type AdminHandler struct {
	Sweets    *repository.SweetRepo
	Purchases *repository.PurchaseRepo
}

func NewAdminHandler(s *repository.SweetRepo, p *repository.PurchaseRepo) *AdminHandler {
	if s == nil || p == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Sweets: s, Purchases: p}
}

type createSweetReq struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity uint32          `json:"quantity"`
}

type updateSweetReq struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *uint32          `json:"quantity"`
}

type quantityReq struct {
	Quantity *uint32 `json:"quantity"`
}

// Create handles POST /v1/sweets. The new row is owned by the acting
// admin: only they may later edit or delete it.
func (h *AdminHandler) Create(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSweetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Price.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be greater than zero"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := model.Sweet{
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Quantity:  req.Quantity,
		CreatedBy: &adminID,
	}
	if err := h.Sweets.Create(ctx, &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create sweet failed"})
	}
	return c.JSON(http.StatusCreated, toSweetResp(s))
}

// Update handles PUT /v1/sweets/:id. Only the provided fields change;
// a sweet created by a different admin is rejected.
func (h *AdminHandler) Update(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sweetID, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sweet id"})
	}
	var req updateSweetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be greater than zero"})
	}
	if req.Name != nil && *req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
	}
	if req.Category != nil && *req.Category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category cannot be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	patch := repository.SweetPatch{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	s, err := h.Sweets.Update(ctx, sweetID, patch, adminID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSweetNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sweet not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit sweets that you created"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update sweet failed"})
	}
	return c.JSON(http.StatusOK, toSweetResp(s))
}

// Delete handles DELETE /v1/sweets/:id with the same ownership rule
// as Update.
func (h *AdminHandler) Delete(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sweetID, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sweet id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sweets.Delete(ctx, sweetID, adminID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSweetNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sweet not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only delete sweets that you created"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete sweet failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Restock handles POST /v1/sweets/:id/restock. Any admin may restock
// any sweet; ownership is deliberately not checked here, unlike
// Update and Delete.
func (h *AdminHandler) Restock(c echo.Context) error {
	sweetID, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sweet id"})
	}
	var req quantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity == nil || *req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Sweets.Restock(ctx, sweetID, *req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrSweetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sweet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restock sweet failed"})
	}
	return c.JSON(http.StatusOK, toSweetResp(s))
}

// History handles GET /v1/admin/purchase-history: purchases of the
// acting admin's sweets made by regular users, newest first.
func (h *AdminHandler) History(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Purchases.ListByAdminCatalog(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load purchase history failed"})
	}
	return c.JSON(http.StatusOK, entries)
}
