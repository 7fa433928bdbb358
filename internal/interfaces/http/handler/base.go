// Package handler implements the REST endpoints. Handlers bind and
// validate the request, call one application service method, and shape the
// response; no business logic lives here.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccess(data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccess(data))
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func paginated[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginated(page))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewError(shared.CodeValidation, message))
}

// fail translates a service error into the JSON error envelope. Domain
// errors map to their status; anything else is a 500 with a generic
// message so internals never leak.
func fail(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.HTTPStatus(domainErr.Code), dto.NewError(domainErr.Code, domainErr.Message))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError,
		dto.NewError(shared.CodeInternal, "internal server error"))
}

// pathUUID parses a uuid path parameter, writing a 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// bindListQuery binds pagination query params into a domain filter.
func bindListQuery(c *gin.Context) (shared.Filter, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return shared.Filter{}, false
	}
	return q.Filter(), true
}

// mustUUID parses a required uuid string from a request body field.
func mustUUID(c *gin.Context, field, value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		badRequest(c, "invalid "+field)
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses an optional uuid string, empty means nil.
func optionalUUID(c *gin.Context, field, value string) (*uuid.UUID, bool) {
	if value == "" {
		return nil, true
	}
	id, err := uuid.Parse(value)
	if err != nil {
		badRequest(c, "invalid "+field)
		return nil, false
	}
	return &id, true
}
