package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/apierror"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary      Log in
// @Description  Exchanges username/password for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credentials"
// @Success      200  {object} dto.LoginResponse
// @Failure      401  {object} apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid username or password"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
