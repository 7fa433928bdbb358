package handler

import (
	"github.com/gin-gonic/gin"

	appreport "github.com/retailcore/backend/internal/application/report"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// ReportHandler serves reconciliation reads.
type ReportHandler struct {
	reports *appreport.Service
}

// NewReportHandler wires the report endpoints.
func NewReportHandler(reports *appreport.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/stock-reconciliation/:productId", h.reconcileProduct)
}

// reconcileProduct recomputes the signed movement sum per warehouse and
// compares it against the materialized balances.
func (h *ReportHandler) reconcileProduct(c *gin.Context) {
	productID, valid := pathUUID(c, "productId")
	if !valid {
		return
	}
	checks, err := h.reports.ReconcileProduct(c.Request.Context(), middleware.CompanyID(c), productID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, checks)
}
