package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dmarzotto/asta/internal/domain/auctions"
	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/pkg/auth"
)

// ItemHandler serves the item catalog endpoints
type ItemHandler struct {
	items  *items.Service
	logger *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *items.Service, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: itemService, logger: logger}
}

// Create registers a new item owned by the caller
func (h *ItemHandler) Create(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	item, err := h.items.CreateItem(c.Request().Context(), items.CreateItemCommand{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		ImageKey:    req.ImageKey,
		BasePrice:   auctions.ToCents(req.BasePrice),
		OwnerID:     userID,
	})
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, toItemResponse(item))
}

// Get returns a single item
func (h *ItemHandler) Get(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id"})
	}

	item, err := h.items.GetItem(c.Request().Context(), itemID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toItemResponse(item))
}

// ListAvailable returns the caller's items not tied up in an auction
func (h *ItemHandler) ListAvailable(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	available, err := h.items.ListAvailableByOwner(c.Request().Context(), userID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toItemResponses(available))
}
