package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

type BookHandler struct {
	service ports.BookService
}

func NewBookHandler(service ports.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /users/bookList.
//
// @Summary      List demo books
// @Tags         books
// @Produce      json
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        pageSize   query     int     false  "Page size (max 100)"
// @Param        searchKey  query     string  false  "Matches localized names, author, isbn or category"
// @Param        sortBy     query     string  false  "bookName, author, price, stock, category or isbn"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Success      200        {object}  Envelope{data=[]domain.Book}
// @Failure      400        {object}  Envelope
// @Router       /users/bookList [get]
func (h *BookHandler) List(c echo.Context) error {
	var q listBooksQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	res, err := h.service.ListBooks(c.Request().Context(), ports.ListBooksInput{
		Page:      q.Page,
		PageSize:  q.PageSize,
		SearchKey: q.SearchKey,
		SortBy:    q.SortBy,
		SortOrder: query.ParseOrder(q.SortOrder),
	})
	if err != nil {
		return err
	}
	return Paged(c, res.Items, res.Page)
}
