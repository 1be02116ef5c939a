package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

func (h *Handler) ListCategories(c echo.Context) error {
	list, err := h.librarySvc.ListCategories(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req model.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.librarySvc.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.librarySvc.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteCategory(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, okBody)
}

func (h *Handler) ListReaders(c echo.Context) error {
	list, err := h.librarySvc.ListReaders(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetReader(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	r, err := h.librarySvc.GetReader(c.Request().Context(), caller, id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateReader(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var upd model.ReaderUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}
	r, err := h.librarySvc.UpdateReader(c.Request().Context(), id, upd)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReader(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteReader(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, okBody)
}
