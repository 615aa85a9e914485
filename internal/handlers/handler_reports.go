package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/middleware"
)

// reportHandler handles the summary report endpoints.
type reportHandler struct {
	reportService portssvc.ReportSvcFacade
}

func newReportHandler(reportService portssvc.ReportSvcFacade) *reportHandler {
	return &reportHandler{reportService: reportService}
}

// registerReportRoutes registers report routes on the authenticated group.
func registerReportRoutes(rg *gin.RouterGroup, reportService portssvc.ReportSvcFacade) {
	h := newReportHandler(reportService)

	reports := rg.Group("/finance/reports")
	{
		reports.GET("/summary", h.getSummary)
	}
}

// getSummary godoc
// @Summary Generate a ledger summary report
// @Description Aggregates approved entries by payment mode, party, head or day. The payment-mode report includes balance integrity rows.
// @Tags reports
// @Produce json
// @Param type query string true "payment-mode, party-wise, head-wise or day-wise"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} dto.APIResponse{data=dto.SummaryResponse}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Security BearerAuth
// @Router /finance/reports/summary [get]
func (h *reportHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var params dto.SummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	var startDate, endDate *time.Time
	if params.StartDate != "" {
		t, err := time.Parse("2006-01-02", params.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Fail("Invalid startDate format. Use YYYY-MM-DD"))
			return
		}
		startDate = &t
	}
	if params.EndDate != "" {
		t, err := time.Parse("2006-01-02", params.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Fail("Invalid endDate format. Use YYYY-MM-DD"))
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		endDate = &end
	}

	report, err := h.reportService.GetSummary(c.Request.Context(), params.Type, startDate, endDate, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Summary report generated", slog.String("type", params.Type), slog.Int("group_count", len(report.Groups)))
	c.JSON(http.StatusOK, dto.OK(report))
}
