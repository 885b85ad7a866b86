package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/apierror"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
)

type CashbookHandler struct{ svc service.CashbookService }

func NewCashbookHandler(svc service.CashbookService) *CashbookHandler {
	return &CashbookHandler{svc: svc}
}

// Append godoc
// @Summary      Append cashbook entry
// @Description  Records a manual inflow or outflow. The ledger is append-only; corrections are new inverse entries.
// @Tags         cashbook
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AppendEntryRequest true "Entry"
// @Success      201  {object} dto.CashbookEntryResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/cashbook [post]
func (h *CashbookHandler) Append(c *gin.Context) {
	var req dto.AppendEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Append(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List cashbook entries
// @Tags         cashbook
// @Produce      json
// @Security     BearerAuth
// @Param        month query string false "YYYY-MM"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Rows per page (default 50)"
// @Success      200   {object} dto.CashbookListResponse
// @Router       /v1/cashbook [get]
func (h *CashbookHandler) List(c *gin.Context) {
	var filter dto.CashbookFilter
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

// Summary godoc
// @Summary      Cashbook balance summary
// @Description  Running balance of the whole ledger, broken down by payment method.
// @Tags         cashbook
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CashbookSummaryResponse
// @Router       /v1/cashbook/summary [get]
func (h *CashbookHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
