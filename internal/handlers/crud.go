package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

// CRUDHandler serves the common REST operations of one resource.
type CRUDHandler[T, C, U any] struct {
	svc     service.CRUDService[T, C, U]
	baseURL string
}

// NewCRUDHandler builds the handler. baseURL, when set, is the public origin
// used for pagination links instead of the request's Host.
func NewCRUDHandler[T, C, U any](svc service.CRUDService[T, C, U], baseURL string) *CRUDHandler[T, C, U] {
	return &CRUDHandler[T, C, U]{svc: svc, baseURL: baseURL}
}

// List returns one page of records in the pagination envelope.
func (h *CRUDHandler[T, C, U]) List(c *gin.Context) {
	p, err := models.ParsePage(c.Query("page"), c.Query("limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	items, total, err := h.svc.Paginate(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginated(items, total, p, listURL(c, h.baseURL)))
}

// Get returns a single record
func (h *CRUDHandler[T, C, U]) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Create stores a new record and returns it with 201.
func (h *CRUDHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Update patches a record
func (h *CRUDHandler[T, C, U]) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete removes a record and answers 204.
func (h *CRUDHandler[T, C, U]) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// nested adapts a by-parent read such as "products of brand :id".
func nested[T any](read func(c *gin.Context, id int) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}

		items, err := read(c, id)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

// paramID parses the :id path parameter. On failure it records the error
// and returns false.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		_ = c.Error(errNotNumeric)
		return 0, false
	}
	return id, true
}

// listURL is the absolute URL of the current listing without its query.
func listURL(c *gin.Context, base string) string {
	if base != "" {
		return strings.TrimRight(base, "/") + c.Request.URL.Path
	}
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return scheme + "://" + host + c.Request.URL.Path
}
