package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sweet-shop-api/internal/model"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user's id from echo.Context.
// JWTAuth stores it as uint64; anything else means the middleware did
// not run.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get("user_id").(uint64); ok {
		return id, nil
	}
	return 0, errors.New("no authenticated user in context")
}

// getUsername returns the authenticated username stored by JWTAuth.
func getUsername(c echo.Context) string {
	if s, ok := c.Get("username").(string); ok {
		return s
	}
	return ""
}

// paramID parses the :id path parameter.
func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// sweetResp is the JSON shape of a catalog item shared by all sweet
// endpoints. Price serializes as a fixed-point decimal string.
type sweetResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     string    `json:"price"`
	Quantity  uint32    `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSweetResp(s model.Sweet) sweetResp {
	return sweetResp{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Price:     s.Price.StringFixed(2),
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSweetResps(ss []model.Sweet) []sweetResp {
	out := make([]sweetResp, 0, len(ss))
	for _, s := range ss {
		out = append(out, toSweetResp(s))
	}
	return out
}
