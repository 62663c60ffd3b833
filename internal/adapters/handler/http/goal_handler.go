package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type GoalHandler struct {
	svc         *services.GoalService
	progression *services.ProgressionService
}

func NewGoalHandler(svc *services.GoalService, progression *services.ProgressionService) *GoalHandler {
	return &GoalHandler{
		svc:         svc,
		progression: progression,
	}
}

type createGoalRequest struct {
	Title         string `json:"title" binding:"required"`
	GoalType      string `json:"goal_type" binding:"required"`
	TargetValue   int64  `json:"target_value"`
	Unit          string `json:"unit"`
	XPOnComplete  *int64 `json:"xp_on_complete"`
	XPPerProgress int64  `json:"xp_per_progress"`
}

type progressGoalRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

type addMilestoneRequest struct {
	Title    string `json:"title" binding:"required"`
	XPReward *int64 `json:"xp_reward"`
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.POST("", h.Create)
		goals.GET("", h.List)
		goals.GET("/:id", h.Get)
		goals.POST("/:id/archive", h.Archive)
		goals.POST("/:id/restore", h.Restore)
		goals.POST("/:id/progress", h.Progress)
		goals.POST("/:id/milestones", h.AddMilestone)
	}

	milestones := router.Group("/milestones")
	{
		milestones.POST("/:id/complete", h.CompleteMilestone)
		milestones.DELETE("/:id/complete", h.UncompleteMilestone)
	}
}

func (h *GoalHandler) Create(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req createGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	goal, err := h.svc.Create(c.Request.Context(), services.CreateGoalInput{
		UserID:        uc.UserID,
		Title:         req.Title,
		GoalType:      domain.GoalType(req.GoalType),
		TargetValue:   req.TargetValue,
		Unit:          req.Unit,
		XPOnComplete:  req.XPOnComplete,
		XPPerProgress: req.XPPerProgress,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *GoalHandler) List(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), uc.UserID, domain.GoalStatus(c.Query("status")))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *GoalHandler) Get(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *GoalHandler) Archive(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	goal, err := h.svc.Archive(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) Restore(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	goal, err := h.svc.Restore(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Progress godoc
// @Summary      Apply progress to an accumulative goal
// @Description  Crossing the target completes the goal and awards xp_on_complete once; the progress reward is suppressed on that update.
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id   path string true "Goal ID"
// @Param        body body progressGoalRequest true "Delta"
// @Success      200 {object} domain.CompletionResult
// @Failure      409 {object} map[string]string "goal already complete"
// @Security     BearerAuth
// @Router       /goals/{id}/progress [post]
func (h *GoalHandler) Progress(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req progressGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.progression.ProgressGoal(c.Request.Context(), uc, c.Param("id"), req.Delta)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *GoalHandler) AddMilestone(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req addMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}

	milestone, err := h.svc.AddMilestone(c.Request.Context(), services.AddMilestoneInput{
		UserID:   uc.UserID,
		GoalID:   c.Param("id"),
		Title:    req.Title,
		XPReward: req.XPReward,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

func (h *GoalHandler) CompleteMilestone(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	res, err := h.progression.CompleteMilestone(c.Request.Context(), uc, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *GoalHandler) UncompleteMilestone(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	handleError(c, h.progression.UncompleteMilestone(c.Request.Context(), uc, c.Param("id")))
}
