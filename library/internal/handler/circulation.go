package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

// Borrow godoc
// @Summary  Borrow a copy
// @Tags     circulation
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    body body model.BorrowRequest true "copy and, for staff, the reader"
// @Success  201 {object} model.BorrowRecord
// @Failure  400,403,404,409 {object} errs.Response
// @Router   /borrow [post]
func (h *Handler) Borrow(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req model.BorrowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rec, err := h.librarySvc.Borrow(c.Request().Context(), caller, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// Return godoc
// @Summary  Return a borrowed copy, assessing overdue and damage fines
// @Tags     circulation
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    body body model.ReturnRequest true "borrow and damage report"
// @Success  200 {object} model.BorrowRecord
// @Failure  400,403,404,409 {object} errs.Response
// @Router   /return [post]
func (h *Handler) Return(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req model.ReturnRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rec, err := h.librarySvc.Return(c.Request().Context(), caller, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// PayFine godoc
// @Summary  Pay an unpaid fine in full
// @Tags     circulation
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id   path int              true "fine id"
// @Param    body body model.PayRequest false "payment method"
// @Success  200 {object} model.PayResponse
// @Failure  403,404,409 {object} errs.Response
// @Router   /fines/{id}/pay [post]
func (h *Handler) PayFine(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	fineID, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.PayRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	p, err := h.librarySvc.PayFine(c.Request().Context(), caller, fineID, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.PayResponse{OK: true, Payment: p})
}

// filter reads the optional status and reader_id query parameters.
func filter(c echo.Context) (model.ListFilter, error) {
	readerID, err := queryID(c, "reader_id")
	if err != nil {
		return model.ListFilter{}, err
	}
	return model.ListFilter{ReaderID: readerID, Status: c.QueryParam("status")}, nil
}

func (h *Handler) ListBorrows(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	f, err := filter(c)
	if err != nil {
		return err
	}
	list, err := h.librarySvc.ListBorrows(c.Request().Context(), caller, f)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ListFines(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	f, err := filter(c)
	if err != nil {
		return err
	}
	list, err := h.librarySvc.ListFines(c.Request().Context(), caller, f)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ListPayments(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	f, err := filter(c)
	if err != nil {
		return err
	}
	list, err := h.librarySvc.ListPayments(c.Request().Context(), caller, f)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}
