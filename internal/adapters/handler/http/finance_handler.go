package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

// FinanceHandler serves card purchases, their installments, recurring
// series and the per-month view. Amounts are accepted as decimal strings
// ("100.00") and returned in cents.
type FinanceHandler struct {
	svc *services.FinanceService
}

func NewFinanceHandler(svc *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{svc: svc}
}

type createPurchaseRequest struct {
	Description      string `json:"description"`
	TotalAmount      string `json:"total_amount" binding:"required"`
	Installments     int    `json:"installments" binding:"required"`
	FirstPaymentDate string `json:"first_payment_date" binding:"required"`
}

type editInstallmentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type createRecurringRequest struct {
	Description  string `json:"description"`
	Amount       string `json:"amount" binding:"required"`
	Frequency    string `json:"frequency"`
	AnchorDate   string `json:"anchor_date" binding:"required"`
	Horizon      int    `json:"horizon"`
	SettleAnchor bool   `json:"settle_anchor"`
}

type extendRecurringRequest struct {
	Count int `json:"count" binding:"required"`
}

func (h *FinanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/purchases")
	{
		purchases.POST("", h.CreatePurchase)
		purchases.GET("", h.ListPurchases)
		purchases.GET("/:id", h.GetPurchase)
		purchases.DELETE("/:id", h.DeletePurchase)
	}

	installments := router.Group("/installments")
	{
		installments.PATCH("/:id", h.EditInstallment)
		installments.POST("/:id/pay", h.PayInstallment)
	}

	recurring := router.Group("/recurring")
	{
		recurring.POST("", h.CreateRecurring)
		recurring.GET("/groups/:id", h.Series)
		recurring.POST("/groups/:id/extend", h.ExtendRecurring)
		recurring.DELETE("/groups/:id", h.DeleteRecurring)
		recurring.POST("/members/:id/settle", h.SettleRecurring)
	}

	router.GET("/months/:month", h.Month)
}

// CreatePurchase godoc
// @Summary      Create a card purchase
// @Description  Splits the total into equal installments with the rounding remainder on the last one.
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        body body createPurchaseRequest true "Purchase"
// @Success      201 {object} services.PurchaseDetail
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /purchases [post]
func (h *FinanceHandler) CreatePurchase(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req createPurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	total, err := domain.ParseCents(req.TotalAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	first, err := parseDate(req.FirstPaymentDate)
	if err != nil {
		handleError(c, err)
		return
	}

	detail, err := h.svc.CreatePurchase(c.Request.Context(), uc, services.CreatePurchaseInput{
		Description:       req.Description,
		TotalAmount:       total,
		InstallmentsCount: req.Installments,
		FirstPaymentDate:  first,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *FinanceHandler) ListPurchases(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	list, err := h.svc.ListPurchases(c.Request.Context(), uc)
	if err != nil {
		handleError(c, err)
		return
	}
	if list == nil {
		list = []*domain.CardPurchase{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *FinanceHandler) GetPurchase(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	detail, err := h.svc.GetPurchase(c.Request.Context(), uc, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *FinanceHandler) DeletePurchase(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	if err := h.svc.DeletePurchase(c.Request.Context(), uc, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHandler) EditInstallment(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req editInstallmentRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := domain.ParseCents(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.svc.EditInstallmentAmount(c.Request.Context(), uc, c.Param("id"), amount)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *FinanceHandler) PayInstallment(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	inst, err := h.svc.PayInstallment(c.Request.Context(), uc, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

func (h *FinanceHandler) CreateRecurring(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req createRecurringRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := domain.ParseCents(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	anchor, err := parseDate(req.AnchorDate)
	if err != nil {
		handleError(c, err)
		return
	}

	members, err := h.svc.CreateRecurring(c.Request.Context(), uc, services.CreateRecurringInput{
		Description:  req.Description,
		Amount:       amount,
		Frequency:    domain.Frequency(req.Frequency),
		AnchorDate:   anchor,
		Horizon:      req.Horizon,
		SettleAnchor: req.SettleAnchor,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"group_id": members[0].GroupID,
		"members":  members,
	})
}

func (h *FinanceHandler) Series(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	members, err := h.svc.Series(c.Request.Context(), uc, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *FinanceHandler) ExtendRecurring(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req extendRecurringRequest
	if !bindJSON(c, &req) {
		return
	}

	added, err := h.svc.ExtendRecurring(c.Request.Context(), uc, c.Param("id"), req.Count)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (h *FinanceHandler) DeleteRecurring(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteRecurring(c.Request.Context(), uc, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHandler) SettleRecurring(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	member, err := h.svc.SettleRecurring(c.Request.Context(), uc, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *FinanceHandler) Month(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	view, err := h.svc.Month(c.Request.Context(), uc, c.Param("month"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
