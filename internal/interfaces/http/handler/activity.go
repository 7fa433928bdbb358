package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appaudit "github.com/retailcore/backend/internal/application/audit"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// ActivityHandler serves the audit trail.
type ActivityHandler struct {
	audit *appaudit.Service
}

// NewActivityHandler wires the activity endpoints.
func NewActivityHandler(audit *appaudit.Service) *ActivityHandler {
	return &ActivityHandler{audit: audit}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	activities := rg.Group("/activities")
	activities.GET("", h.list)
	activities.GET("/recent", h.recent)
}

func (h *ActivityHandler) list(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	activityFilter := audit.ActivityFilter{Filter: filter}
	userID, valid := optionalUUID(c, "user_id", c.Query("user_id"))
	if !valid {
		return
	}
	activityFilter.UserID = userID
	if entity := c.Query("entity"); entity != "" {
		activityFilter.Entity = &entity
	}
	from, valid := optionalTime(c, "from")
	if !valid {
		return
	}
	activityFilter.From = from
	to, valid := optionalTime(c, "to")
	if !valid {
		return
	}
	activityFilter.To = to

	page, err := h.audit.List(c.Request.Context(), middleware.CompanyID(c), activityFilter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

// recent serves the in-memory buffer; it never hits the database.
func (h *ActivityHandler) recent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	ok(c, h.audit.Recent(middleware.CompanyID(c), limit))
}
