package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/apierror"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
)

type CustomersHandler struct{ svc service.OrderService }

func NewCustomersHandler(svc service.OrderService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// Lookup godoc
// @Summary      Look up customer by phone
// @Description  Returns the customer block of the most recent order with a matching phone, for prefilling the order form.
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        phone query string true "Phone number"
// @Success      200   {object} dto.CustomerResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/customers/lookup [get]
func (h *CustomersHandler) Lookup(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, apierror.New("phone is required"))
		return
	}
	resp, err := h.svc.LookupCustomer(c.Request.Context(), phone)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
