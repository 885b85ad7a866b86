package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/apierror"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// orderCode extracts the order code path param. Codes contain a slash
// ("003/DH.25"), so clients URL-encode it and the router keeps the raw path.
func orderCode(c *gin.Context) string {
	return c.Param("code")
}

// Create godoc
// @Summary      Create order
// @Description  Creates a new order as a quote. The code is allocated from the yearly sequence and the financial snapshot is derived from the items.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Customer, items and salesperson"
// @Success      201  {object} dto.OrderResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List orders
// @Description  Returns a paginated order list filtered by pipeline stage and salesperson.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "quote | design | production | delivery | debt | done | all"
// @Param        staff  query string false "Salesperson name"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200    {object} dto.OrderListResponse
// @Router       /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Order code, URL-encoded (003%2FDH.25)"
// @Success      200  {object} dto.OrderResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/orders/{code} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), orderCode(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Advance godoc
// @Summary      Advance order
// @Description  Moves the order one pipeline stage forward. Debt resolves only through payment; done is terminal.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Order code, URL-encoded"
// @Success      200  {object} dto.OrderResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/orders/{code}/advance [post]
func (h *OrdersHandler) Advance(c *gin.Context) {
	resp, err := h.svc.Advance(c.Request.Context(), orderCode(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordPayment godoc
// @Summary      Record payment
// @Description  Records a customer payment against the order and appends the matching cashbook inflow in the same transaction. Overpayment is rejected.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code path string                  true "Order code, URL-encoded"
// @Param        body body dto.RecordPaymentRequest true "Amount and method"
// @Success      200  {object} dto.OrderResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/orders/{code}/payments [post]
func (h *OrdersHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPayment(c.Request.Context(), orderCode(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Edit godoc
// @Summary      Edit order
// @Description  Replaces customer, items and salesperson and recomputes the financial snapshot. Allowed at every stage; the amount already paid is preserved.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code path string              true "Order code, URL-encoded"
// @Param        body body dto.EditOrderRequest true "New order content"
// @Success      200  {object} dto.OrderResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/orders/{code} [put]
func (h *OrdersHandler) Edit(c *gin.Context) {
	var req dto.EditOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Edit(c.Request.Context(), orderCode(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete order
// @Description  Deletes an order. Only quotes can be deleted; committed work stays on record.
// @Tags         orders
// @Security     BearerAuth
// @Param        code path string true "Order code, URL-encoded"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/orders/{code} [delete]
func (h *OrdersHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), orderCode(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetCommission godoc
// @Summary      Set commission settlement
// @Description  Marks the salesperson commission of the order as paid or not paid.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code path string                  true "Order code, URL-encoded"
// @Param        body body dto.SetCommissionRequest true "Settlement flag"
// @Success      200  {object} dto.OrderResponse
// @Router       /v1/orders/{code}/commission [patch]
func (h *OrdersHandler) SetCommission(c *gin.Context) {
	var req dto.SetCommissionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetCommissionPaid(c.Request.Context(), orderCode(c), *req.Paid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
