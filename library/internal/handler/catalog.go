package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

func (h *Handler) ListPublishers(c echo.Context) error {
	list, err := h.librarySvc.ListPublishers(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CreatePublisher(c echo.Context) error {
	var req model.PublisherRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.librarySvc.CreatePublisher(c.Request().Context(), req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePublisher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.PublisherRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.librarySvc.UpdatePublisher(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePublisher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeletePublisher(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, okBody)
}

// ListBooks godoc
// @Summary  List books, newest first
// @Tags     books
// @Produce  json
// @Security Bearer
// @Success  200 {array} model.Book
// @Router   /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	list, err := h.librarySvc.ListBooks(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	b, err := h.librarySvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.librarySvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.librarySvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBook godoc
// @Summary  Delete a book without copies
// @Tags     books
// @Produce  json
// @Security Bearer
// @Param    id path int true "book id"
// @Success  200 {object} okResponse
// @Failure  404,409 {object} errs.Response
// @Router   /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, okBody)
}

func (h *Handler) ListCopies(c echo.Context) error {
	bookID, err := queryID(c, "book_id")
	if err != nil {
		return err
	}
	list, err := h.librarySvc.ListCopies(c.Request().Context(), bookID)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCopy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	cp, err := h.librarySvc.GetCopy(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *Handler) CreateCopy(c echo.Context) error {
	var req model.CopyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cp, err := h.librarySvc.CreateCopy(c.Request().Context(), req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *Handler) UpdateCopy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.CopyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cp, err := h.librarySvc.UpdateCopy(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *Handler) DeleteCopy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteCopy(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, okBody)
}
