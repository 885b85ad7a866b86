package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
)

type DocumentsHandler struct{ svc service.DocumentService }

func NewDocumentsHandler(svc service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

// Request godoc
// @Summary      Request document render
// @Description  Queues a quote or delivery note PDF for the order. Rendering is asynchronous; poll the document list for the outcome.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code path string                     true "Order code, URL-encoded"
// @Param        body body dto.RequestDocumentRequest true "Kind and optional email"
// @Success      202  {object} dto.DocumentResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/orders/{code}/documents [post]
func (h *DocumentsHandler) Request(c *gin.Context) {
	var req dto.RequestDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RequestRender(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// ListByOrder godoc
// @Summary      List order documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Order code, URL-encoded"
// @Success      200  {array} dto.DocumentResponse
// @Router       /v1/orders/{code}/documents [get]
func (h *DocumentsHandler) ListByOrder(c *gin.Context) {
	resp, err := h.svc.ListByOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Download godoc
// @Summary      Download rendered PDF
// @Tags         documents
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Document UUID"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/documents/{id}/download [get]
func (h *DocumentsHandler) Download(c *gin.Context) {
	path, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.FileAttachment(path, "document.pdf")
}
