package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/SscSPs/furniture_erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for ledger reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers routes for reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.POST("/aging", h.getAgingReport)
		reports.GET("/general-ledger/:accountID", h.getGeneralLedger)
		reports.GET("/reconciliation", h.getReconciliation)
	}
}

// getAgingReport godoc
// @Summary Aging report
// @Description Buckets the supplied open receivables or payables by days outstanding as of a date
// @Tags reports
// @Accept  json
// @Produce  json
// @Param   request body dto.AgingReportRequest true "Open documents and as-of date"
// @Success 200 {object} domain.AgingReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute aging report"
// @Security BearerAuth
// @Router /reports/aging [post]
func (h *reportingHandler) getAgingReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AgingReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AgingReport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	records, asOf, err := req.ToDomain()
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute aging report")
		return
	}

	report, err := h.reportingService.ComputeAging(c.Request.Context(), req.Kind, records, asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute aging report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getGeneralLedger godoc
// @Summary General ledger of an account
// @Description Lists the account's lines in a date range with a running balance
// @Tags reports
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   fromDate query string true "First date (YYYY-MM-DD)"
// @Param   toDate query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} dto.GeneralLedgerResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to build general ledger"
// @Security BearerAuth
// @Router /reports/general-ledger/{accountID} [get]
func (h *reportingHandler) getGeneralLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	var params dto.GeneralLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for GeneralLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	from, err := dto.ParseDate("fromDate", params.FromDate)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build general ledger")
		return
	}
	to, err := dto.ParseDate("toDate", params.ToDate)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build general ledger")
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	gl, err := h.reportingService.ProjectGeneralLedger(c.Request.Context(), accountID, from, to)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build general ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToGeneralLedgerResponse(gl))
}

// getReconciliation godoc
// @Summary Ledger consistency check
// @Description Recomputes every balance from posted lines. Drift is reported with 409 and never corrected.
// @Tags reports
// @Produce  json
// @Success 200 {object} domain.ConsistencyReport
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} consistencyResponse "Drift detected"
// @Failure 500 {object} map[string]string "Failed to check consistency"
// @Security BearerAuth
// @Router /reports/reconciliation [get]
func (h *reportingHandler) getReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	report, err := h.reportingService.CheckConsistency(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrConsistency) && report != nil {
			logger.Error("Ledger drift detected",
				slog.Int("account_drifts", len(report.AccountDrifts)),
				slog.Int("entry_imbalances", len(report.EntryImbalances)))
			c.JSON(http.StatusConflict, consistencyResponse{Error: err.Error(), Report: report})
			return
		}
		respondWithError(c, logger, err, "Failed to check consistency")
		return
	}
	c.JSON(http.StatusOK, report)
}
