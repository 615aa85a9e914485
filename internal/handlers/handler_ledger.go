package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/middleware"
)

// ledgerHandler handles the ledger entry lifecycle endpoints.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers the ledger entry routes on the authenticated group.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/finance/ledger")
	{
		ledger.POST("", h.createEntry)
		ledger.GET("", h.listEntries)
		ledger.GET("/:entry_id", h.getEntry)
		ledger.POST("/:entry_id/approve", h.approveEntry)
		ledger.POST("/:entry_id/reject", h.rejectEntry)
		ledger.POST("/:entry_id/edit-request", h.requestEdit)
		ledger.POST("/:entry_id/approve-edit", h.approveEdit)
		ledger.POST("/:entry_id/reject-edit", h.rejectEdit)
		ledger.POST("/:entry_id/undo", h.undoLastAction)
		ledger.DELETE("/:entry_id", h.deleteEntry)
		ledger.GET("/:entry_id/audit-logs", h.listAuditTrail)
	}
}

// createEntry godoc
// @Summary Create a ledger entry
// @Description Creates a ledger entry. Credits are approved immediately and move the payment mode balance; debits and self-transfers await approval.
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body dto.CreateLedgerEntryRequest true "Entry details"
// @Success 201 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Security BearerAuth
// @Router /finance/ledger [post]
func (h *ledgerHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid create entry request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.CreateEntry(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ToLedgerEntryResponse(entry)
	c.JSON(http.StatusCreated, dto.OKWithMessage(resp, "Entry "+entry.SerialNumber+" created"))
}

// listEntries godoc
// @Summary List ledger entries
// @Description Lists non-deleted entries with filters and offset pagination
// @Tags ledger
// @Produce json
// @Param transactionType query string false "CREDIT, DEBIT or SELF_TRANSFER"
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param partyId query string false "Party ID"
// @Param headId query string false "Head ID"
// @Param paymentModeId query string false "Payment mode ID (matches either transfer leg)"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param search query string false "Matches serial number, description or party name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 200)" default(50)
// @Success 200 {object} dto.APIResponse{data=dto.ListLedgerEntriesResponse}
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Security BearerAuth
// @Router /finance/ledger [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	page, err := h.ledgerService.ListEntries(c.Request.Context(), params, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(page))
}

// getEntry godoc
// @Summary Get one ledger entry
// @Tags ledger
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), c.Param("entry_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.ToLedgerEntryResponse(entry)))
}

// approveEntry godoc
// @Summary Approve a pending entry
// @Description Approves a PENDING entry and applies its balance effect
// @Tags ledger
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "Entry deleted"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 409 {object} dto.APIResponse "Not pending"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/approve [post]
func (h *ledgerHandler) approveEntry(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.ApproveEntry(c.Request.Context(), c.Param("entry_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(dto.ToLedgerEntryResponse(entry), "Entry approved"))
}

// rejectEntry godoc
// @Summary Reject a pending entry
// @Description Rejects a PENDING entry with a mandatory reason. The balance is not touched.
// @Tags ledger
// @Accept json
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Param request body dto.RejectEntryRequest true "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "Missing reason or entry deleted"
// @Failure 409 {object} dto.APIResponse "Not pending"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/reject [post]
func (h *ledgerHandler) rejectEntry(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.RejectEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Rejection reason is required"))
		return
	}

	entry, err := h.ledgerService.RejectEntry(c.Request.Context(), c.Param("entry_id"), req.Reason, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(dto.ToLedgerEntryResponse(entry), "Entry rejected"))
}

// requestEdit godoc
// @Summary Submit an edit request
// @Description Attaches a proposed-change payload to an entry for approval
// @Tags ledger
// @Accept json
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Param request body dto.EditRequestRequest true "Proposed changes"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "Empty changes or edit already pending"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/edit-request [post]
func (h *ledgerHandler) requestEdit(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.EditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.RequestEdit(c.Request.Context(), c.Param("entry_id"), req.Changes, req.Reason, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(dto.ToLedgerEntryResponse(entry), "Edit request submitted"))
}

// approveEdit godoc
// @Summary Approve a pending edit request
// @Description Merges the proposed changes onto the entry. The payment mode balance is not recalculated.
// @Tags ledger
// @Accept json
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Param request body dto.ReasonRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "No pending edit request found"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/approve-edit [post]
func (h *ledgerHandler) approveEdit(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.ReasonRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	entry, err := h.ledgerService.ApproveEdit(c.Request.Context(), c.Param("entry_id"), req.Reason, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(dto.ToLedgerEntryResponse(entry), "Edit request approved"))
}

// rejectEdit godoc
// @Summary Reject a pending edit request
// @Tags ledger
// @Accept json
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Param request body dto.ReasonRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "No pending edit request found"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/reject-edit [post]
func (h *ledgerHandler) rejectEdit(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.ReasonRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	entry, err := h.ledgerService.RejectEdit(c.Request.Context(), c.Param("entry_id"), req.Reason, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(dto.ToLedgerEntryResponse(entry), "Edit request rejected"))
}

// undoLastAction godoc
// @Summary Undo the caller's last approval or rejection
// @Description Reverses the caller's own most recent approval/rejection on the entry, restoring balances where needed
// @Tags ledger
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.LedgerEntryResponse}
// @Failure 400 {object} dto.APIResponse "Nothing to undo"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/undo [post]
func (h *ledgerHandler) undoLastAction(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.UndoLastAction(c.Request.Context(), c.Param("entry_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(dto.ToLedgerEntryResponse(entry), "Action undone"))
}

// deleteEntry godoc
// @Summary Soft-delete an entry
// @Description Marks an entry deleted. Deleted entries accept no further transitions.
// @Tags ledger
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Already deleted"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id} [delete]
func (h *ledgerHandler) deleteEntry(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteEntry(c.Request.Context(), c.Param("entry_id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(nil, "Entry deleted"))
}

// listAuditTrail godoc
// @Summary List an entry's audit trail
// @Description Returns the append-only audit rows for an entry, oldest first
// @Tags ledger
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=[]domain.LedgerAuditLog}
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/ledger/{entry_id}/audit-logs [get]
func (h *ledgerHandler) listAuditTrail(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	logs, err := h.ledgerService.ListAuditTrail(c.Request.Context(), c.Param("entry_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(logs))
}
