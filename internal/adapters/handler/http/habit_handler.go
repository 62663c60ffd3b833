package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type HabitHandler struct {
	svc         *services.HabitService
	progression *services.ProgressionService
}

func NewHabitHandler(svc *services.HabitService, progression *services.ProgressionService) *HabitHandler {
	return &HabitHandler{
		svc:         svc,
		progression: progression,
	}
}

type createHabitRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	XPReward    *int64 `json:"xp_reward"`
	GoalID      string `json:"goal_id"`
}

type updateHabitRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	XPReward    *int64  `json:"xp_reward"`
	GoalID      *string `json:"goal_id"`
	Version     int     `json:"version"`
}

type completeHabitRequest struct {
	Date string `json:"date"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
		habits.POST("/:id/complete", h.Complete)
		habits.DELETE("/:id/complete", h.Uncomplete)
		habits.GET("/:id/completions", h.Completions)
	}
}

// Create godoc
// @Summary      Create a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Param        habit body createHabitRequest true "Habit"
// @Success      201 {object} domain.Habit
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if !bindJSON(c, &req) {
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:      uc.UserID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		XPReward:    req.XPReward,
		GoalID:      req.GoalID,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	if list == nil {
		list = []*domain.Habit{}
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if !bindJSON(c, &req) {
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      uc.UserID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		XPReward:    req.XPReward,
		GoalID:      req.GoalID,
		Version:     req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), uc.UserID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	habit, err := h.svc.Archive(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Restore(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// Complete godoc
// @Summary      Complete a habit for a day
// @Description  Marks the habit done for the given date (today in the user's timezone when omitted) and awards its XP.
// @Tags         habits
// @Accept       json
// @Produce      json
// @Param        id   path string true "Habit ID"
// @Param        body body completeHabitRequest false "Date (YYYY-MM-DD)"
// @Success      200 {object} domain.CompletionResult
// @Failure      409 {object} map[string]string
// @Security     BearerAuth
// @Router       /habits/{id}/complete [post]
func (h *HabitHandler) Complete(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req completeHabitRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	res, err := h.progression.CompleteHabit(c.Request.Context(), uc, c.Param("id"), date)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HabitHandler) Uncomplete(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		handleError(c, err)
		return
	}

	res, err := h.progression.UncompleteHabit(c.Request.Context(), uc, c.Param("id"), date)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Completions lists records between from and to (inclusive), defaulting to
// the last 30 days.
func (h *HabitHandler) Completions(c *gin.Context) {
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
	if to.IsZero() {
		to = uc.Today()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -29)
	}

	list, err := h.svc.Completions(c.Request.Context(), c.Param("id"), uc.UserID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":        from.Format(time.DateOnly),
		"to":          to.Format(time.DateOnly),
		"completions": list,
	})
}
