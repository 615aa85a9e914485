package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
)

// masterHandler handles the reference-data endpoints: payment modes, parties,
// heads and payment types.
type masterHandler struct {
	masterService portssvc.MasterSvcFacade
	ledgerService portssvc.LedgerSvcFacade
	reportService portssvc.ReportSvcFacade
}

func newMasterHandler(masterService portssvc.MasterSvcFacade, ledgerService portssvc.LedgerSvcFacade, reportService portssvc.ReportSvcFacade) *masterHandler {
	return &masterHandler{
		masterService: masterService,
		ledgerService: ledgerService,
		reportService: reportService,
	}
}

// registerMasterRoutes registers the reference-data routes on the authenticated group.
func registerMasterRoutes(rg *gin.RouterGroup, masterService portssvc.MasterSvcFacade, ledgerService portssvc.LedgerSvcFacade, reportService portssvc.ReportSvcFacade) {
	h := newMasterHandler(masterService, ledgerService, reportService)

	modes := rg.Group("/finance/payment-modes")
	{
		modes.POST("", h.createPaymentMode)
		modes.GET("", h.listPaymentModes)
		modes.GET("/:mode_id", h.getPaymentMode)
		modes.DELETE("/:mode_id", h.deactivatePaymentMode)
		modes.GET("/:mode_id/integrity", h.verifyPaymentModeIntegrity)
		modes.GET("/:mode_id/balance-preview", h.previewBalanceImpact)
	}

	parties := rg.Group("/finance/parties")
	{
		parties.POST("", h.createParty)
		parties.GET("", h.listParties)
		parties.DELETE("/:party_id", h.deactivateParty)
	}

	heads := rg.Group("/finance/heads")
	{
		heads.POST("", h.createHead)
		heads.GET("", h.listHeads)
		heads.DELETE("/:head_id", h.deactivateHead)
	}

	types := rg.Group("/finance/payment-types")
	{
		types.POST("", h.createPaymentType)
		types.GET("", h.listPaymentTypes)
		types.DELETE("/:type_id", h.deactivatePaymentType)
	}
}

func includeInactiveParam(c *gin.Context) bool {
	return c.Query("includeInactive") == "true"
}

// createPaymentMode godoc
// @Summary Create a payment mode
// @Description Creates a cash/bank account with an opening balance. Admin only.
// @Tags masters
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentModeRequest true "Payment mode details"
// @Success 201 {object} dto.APIResponse{data=domain.PaymentMode}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 409 {object} dto.APIResponse "Name taken"
// @Security BearerAuth
// @Router /finance/payment-modes [post]
func (h *masterHandler) createPaymentMode(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	mode, err := h.masterService.CreatePaymentMode(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(mode))
}

// listPaymentModes godoc
// @Summary List payment modes
// @Tags masters
// @Produce json
// @Param includeInactive query bool false "Include deactivated modes"
// @Success 200 {object} dto.APIResponse{data=[]domain.PaymentMode}
// @Security BearerAuth
// @Router /finance/payment-modes [get]
func (h *masterHandler) listPaymentModes(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	modes, err := h.masterService.ListPaymentModes(c.Request.Context(), includeInactiveParam(c), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(modes))
}

// getPaymentMode godoc
// @Summary Get one payment mode
// @Tags masters
// @Produce json
// @Param mode_id path string true "Payment mode ID"
// @Success 200 {object} dto.APIResponse{data=domain.PaymentMode}
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/payment-modes/{mode_id} [get]
func (h *masterHandler) getPaymentMode(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	mode, err := h.masterService.GetPaymentModeByID(c.Request.Context(), c.Param("mode_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(mode))
}

// deactivatePaymentMode godoc
// @Summary Deactivate a payment mode
// @Description Hides the mode from new entries; existing history keeps resolving
// @Tags masters
// @Produce json
// @Param mode_id path string true "Payment mode ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/payment-modes/{mode_id} [delete]
func (h *masterHandler) deactivatePaymentMode(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.masterService.DeactivatePaymentMode(c.Request.Context(), c.Param("mode_id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(nil, "Payment mode deactivated"))
}

// verifyPaymentModeIntegrity godoc
// @Summary Verify a payment mode's balance integrity
// @Description Recomputes the balance from approved history and compares it to the stored running balance
// @Tags masters
// @Produce json
// @Param mode_id path string true "Payment mode ID"
// @Success 200 {object} dto.APIResponse{data=domain.BalanceIntegrity}
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/payment-modes/{mode_id}/integrity [get]
func (h *masterHandler) verifyPaymentModeIntegrity(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	result, err := h.reportService.VerifyPaymentModeIntegrity(c.Request.Context(), c.Param("mode_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(result))
}

// previewBalanceImpact godoc
// @Summary Preview a transaction's balance impact
// @Description Projects the payment mode balance after a hypothetical transaction, without persisting anything
// @Tags masters
// @Produce json
// @Param mode_id path string true "Payment mode ID"
// @Param transactionType query string true "CREDIT, DEBIT or SELF_TRANSFER"
// @Param amount query number true "Amount"
// @Success 200 {object} dto.APIResponse{data=accounting.BalancePreview}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Security BearerAuth
// @Router /finance/payment-modes/{mode_id}/balance-preview [get]
func (h *masterHandler) previewBalanceImpact(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var params dto.BalancePreviewParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	preview, err := h.ledgerService.PreviewBalanceImpact(c.Request.Context(), c.Param("mode_id"),
		domain.TransactionType(params.TransactionType), params.Amount, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(preview))
}

// createParty godoc
// @Summary Create a party
// @Tags masters
// @Accept json
// @Produce json
// @Param request body dto.CreateNamedMasterRequest true "Party details"
// @Success 201 {object} dto.APIResponse{data=domain.Party}
// @Failure 409 {object} dto.APIResponse "Name taken"
// @Security BearerAuth
// @Router /finance/parties [post]
func (h *masterHandler) createParty(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateNamedMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	party, err := h.masterService.CreateParty(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(party))
}

// listParties godoc
// @Summary List parties
// @Tags masters
// @Produce json
// @Param includeInactive query bool false "Include deactivated parties"
// @Success 200 {object} dto.APIResponse{data=[]domain.Party}
// @Security BearerAuth
// @Router /finance/parties [get]
func (h *masterHandler) listParties(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	parties, err := h.masterService.ListParties(c.Request.Context(), includeInactiveParam(c), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(parties))
}

// deactivateParty godoc
// @Summary Deactivate a party
// @Tags masters
// @Produce json
// @Param party_id path string true "Party ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/parties/{party_id} [delete]
func (h *masterHandler) deactivateParty(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.masterService.DeactivateParty(c.Request.Context(), c.Param("party_id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(nil, "Party deactivated"))
}

// createHead godoc
// @Summary Create a head
// @Tags masters
// @Accept json
// @Produce json
// @Param request body dto.CreateNamedMasterRequest true "Head details"
// @Success 201 {object} dto.APIResponse{data=domain.Head}
// @Failure 409 {object} dto.APIResponse "Name taken"
// @Security BearerAuth
// @Router /finance/heads [post]
func (h *masterHandler) createHead(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateNamedMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	head, err := h.masterService.CreateHead(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(head))
}

// listHeads godoc
// @Summary List heads
// @Tags masters
// @Produce json
// @Param includeInactive query bool false "Include deactivated heads"
// @Success 200 {object} dto.APIResponse{data=[]domain.Head}
// @Security BearerAuth
// @Router /finance/heads [get]
func (h *masterHandler) listHeads(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	heads, err := h.masterService.ListHeads(c.Request.Context(), includeInactiveParam(c), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(heads))
}

// deactivateHead godoc
// @Summary Deactivate a head
// @Tags masters
// @Produce json
// @Param head_id path string true "Head ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/heads/{head_id} [delete]
func (h *masterHandler) deactivateHead(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.masterService.DeactivateHead(c.Request.Context(), c.Param("head_id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(nil, "Head deactivated"))
}

// createPaymentType godoc
// @Summary Create a payment type
// @Tags masters
// @Accept json
// @Produce json
// @Param request body dto.CreateNamedMasterRequest true "Payment type details"
// @Success 201 {object} dto.APIResponse{data=domain.PaymentType}
// @Failure 409 {object} dto.APIResponse "Name taken"
// @Security BearerAuth
// @Router /finance/payment-types [post]
func (h *masterHandler) createPaymentType(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateNamedMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	pt, err := h.masterService.CreatePaymentType(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(pt))
}

// listPaymentTypes godoc
// @Summary List payment types
// @Tags masters
// @Produce json
// @Param includeInactive query bool false "Include deactivated types"
// @Success 200 {object} dto.APIResponse{data=[]domain.PaymentType}
// @Security BearerAuth
// @Router /finance/payment-types [get]
func (h *masterHandler) listPaymentTypes(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	types, err := h.masterService.ListPaymentTypes(c.Request.Context(), includeInactiveParam(c), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(types))
}

// deactivatePaymentType godoc
// @Summary Deactivate a payment type
// @Tags masters
// @Produce json
// @Param type_id path string true "Payment type ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Not found"
// @Security BearerAuth
// @Router /finance/payment-types/{type_id} [delete]
func (h *masterHandler) deactivatePaymentType(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.masterService.DeactivatePaymentType(c.Request.Context(), c.Param("type_id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKWithMessage(nil, "Payment type deactivated"))
}
