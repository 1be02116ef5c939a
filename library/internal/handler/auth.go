package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

// Login godoc
// @Summary  Log in as reader or staff
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body model.LoginRequest true "credentials"
// @Success  200 {object} model.TokenResponse
// @Failure  400,401,403 {object} errs.Response
// @Router   /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, res)
}

// RegisterReader godoc
// @Summary  Self-register a reader account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body model.RegisterReaderRequest true "new reader"
// @Success  201 {object} model.TokenResponse
// @Failure  400,404,409 {object} errs.Response
// @Router   /auth/register-reader [post]
func (h *Handler) RegisterReader(c echo.Context) error {
	var req model.RegisterReaderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.librarySvc.RegisterReader(c.Request().Context(), req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}
