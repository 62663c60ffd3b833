package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type XPHandler struct {
	ledger    *services.LedgerService
	checkinXP int64
}

func NewXPHandler(ledger *services.LedgerService, checkinXP int64) *XPHandler {
	return &XPHandler{
		ledger:    ledger,
		checkinXP: checkinXP,
	}
}

type checkinRequest struct {
	Note string `json:"note"`
}

type awardResponse struct {
	Transaction *domain.XPTransaction `json:"transaction"`
	Level       domain.LevelInfo      `json:"level"`
}

func (h *XPHandler) RegisterRoutes(router *gin.RouterGroup) {
	xp := router.Group("/xp")
	{
		xp.GET("/total", h.Total)
		xp.GET("/level", h.Level)
		xp.GET("/history", h.History)
		xp.GET("/summary", h.Summary)
		xp.POST("/checkin", h.Checkin)
	}
}

// RegisterPublicRoutes exposes the tier table without authentication.
func (h *XPHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/xp/tiers", h.Tiers)
}

func (h *XPHandler) Total(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	total, err := h.ledger.Total(c.Request.Context(), uc)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"xp_total": total})
}

// Level godoc
// @Summary      Current level
// @Tags         xp
// @Produce      json
// @Success      200 {object} domain.LevelInfo
// @Security     BearerAuth
// @Router       /xp/level [get]
func (h *XPHandler) Level(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	level, err := h.ledger.Level(c.Request.Context(), uc)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *XPHandler) Tiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Tiers())
}

func (h *XPHandler) History(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		handleError(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	loc := uc.Loc()
	if !from.IsZero() {
		from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	}
	if !to.IsZero() {
		to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-1), loc)
	}

	txs, err := h.ledger.History(c.Request.Context(), uc, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	if txs == nil {
		txs = []*domain.XPTransaction{}
	}
	c.JSON(http.StatusOK, txs)
}

// Summary godoc
// @Summary      Daily XP summary
// @Description  Gained, lost and net XP per day between start and end (default: the last 7 days).
// @Tags         xp
// @Produce      json
// @Param        start query string false "YYYY-MM-DD"
// @Param        end   query string false "YYYY-MM-DD"
// @Success      200 {object} domain.XPSummary
// @Security     BearerAuth
// @Router       /xp/summary [get]
func (h *XPHandler) Summary(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	end, err := parseDate(c.Query("end"))
	if err != nil {
		handleError(c, err)
		return
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		handleError(c, err)
		return
	}
	if end.IsZero() {
		end = uc.Today()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -6)
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must not be after end"})
		return
	}
	if end.Sub(start) > 366*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range too large (max 1 year)"})
		return
	}

	summary, err := h.ledger.Summary(c.Request.Context(), domain.StatsInput{
		UserID:    uc.UserID,
		StartDate: start,
		EndDate:   end,
		Location:  uc.Loc(),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Checkin awards the configured check-in XP through the public award path.
func (h *XPHandler) Checkin(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req checkinRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	note := req.Note
	if note == "" {
		note = "Daily check-in"
	}

	tx, level, err := h.ledger.Award(c.Request.Context(), uc, domain.AwardInput{
		Amount:     h.checkinXP,
		SourceType: domain.SourceCheckin,
		SourceID:   uc.Today().Format(domain.DateLayout),
		Note:       note,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, awardResponse{Transaction: tx, Level: level})
}
