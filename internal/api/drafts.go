package api

import (
	"errors"

	"github.com/dpperalta/crmclient/internal/entity"
	"github.com/dpperalta/crmclient/internal/service"
	"github.com/labstack/echo/v4"
)

// OpenDraft starts a new composition session --> /drafts
func (h *Handler) OpenDraft(c echo.Context) error {
	return c.JSON(201, h.drafts.Open())
}

// GetDraft returns the current snapshot --> /drafts/:id
func (h *Handler) GetDraft(c echo.Context) error {
	draft, err := h.drafts.Snapshot(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": "Draft not found"})
	}
	return c.JSON(200, draft)
}

// AssignCustomer selects the draft's customer --> /drafts/:id/customer
func (h *Handler) AssignCustomer(c echo.Context) error {
	customer := entity.Customer{}
	if err := c.Bind(&customer); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if customer.ID == "" {
		return c.JSON(400, map[string]string{"error": "A customer id is required"})
	}

	draft, err := h.drafts.SetCustomer(c.Param("id"), customer)
	if err != nil {
		return c.JSON(404, map[string]string{"error": "Draft not found"})
	}
	return c.JSON(200, draft)
}

// AssignProducts replaces the draft's product selection --> /drafts/:id/products
func (h *Handler) AssignProducts(c echo.Context) error {
	products := []entity.Product{}
	if err := c.Bind(&products); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	for _, p := range products {
		if p.ID == "" {
			return c.JSON(400, map[string]string{"error": "Every product needs an id"})
		}
	}

	draft, err := h.drafts.SetProducts(c.Param("id"), products)
	if err != nil {
		return c.JSON(404, map[string]string{"error": "Draft not found"})
	}
	return c.JSON(200, draft)
}

// SetLineQuantity updates one line --> /drafts/:id/lines/:productId
// The quantity travels as the raw editor text; coercion happens in the
// composer, so "abc" lands as zero rather than a rejected request.
func (h *Handler) SetLineQuantity(c echo.Context) error {
	body := struct {
		Quantity string `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	draft, err := h.drafts.SetLineQuantity(c.Param("id"), c.Param("productId"), body.Quantity)
	if err != nil {
		return c.JSON(404, map[string]string{"error": "Draft not found"})
	}
	return c.JSON(200, draft)
}

// SubmitDraft sends the draft to the API --> /drafts/:id/submit
// On success the client is pointed at the order list; on rejection the cleaned
// message comes back and also shows up as the draft's transient notice.
func (h *Handler) SubmitDraft(c echo.Context) error {
	order, err := h.drafts.Submit(c.Request().Context(), c.Param("id"), bearerToken(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			return c.JSON(404, map[string]string{"error": "Draft not found"})
		case errors.Is(err, service.ErrNotSubmittable):
			return c.JSON(400, map[string]string{"error": "Draft is not ready to submit"})
		case errors.Is(err, service.ErrSubmitInFlight), errors.Is(err, service.ErrDraftSubmitted):
			return c.JSON(409, map[string]string{"error": err.Error()})
		}
		return remoteStatus(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, "/orders")
	return c.JSON(201, map[string]any{
		"order":    order,
		"location": "/orders",
		"message":  "Order saved successfully",
	})
}

// DiscardDraft abandons a session --> /drafts/:id
func (h *Handler) DiscardDraft(c echo.Context) error {
	h.drafts.Discard(c.Param("id"))
	return c.JSON(200, map[string]string{"message": "Draft discarded"})
}
