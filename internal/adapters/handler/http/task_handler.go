package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type TaskHandler struct {
	svc         *services.TaskService
	progression *services.ProgressionService
}

func NewTaskHandler(svc *services.TaskService, progression *services.ProgressionService) *TaskHandler {
	return &TaskHandler{
		svc:         svc,
		progression: progression,
	}
}

type createTaskRequest struct {
	Title    string `json:"title" binding:"required"`
	Notes    string `json:"notes"`
	XPReward *int64 `json:"xp_reward"`
	DueDate  string `json:"due_date"`
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.POST("", h.Create)
		tasks.GET("", h.List)
		tasks.GET("/:id", h.Get)
		tasks.DELETE("/:id", h.Delete)
		tasks.POST("/:id/complete", h.Complete)
		tasks.DELETE("/:id/complete", h.Uncomplete)
	}
}

func (h *TaskHandler) Create(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.CreateTaskInput{
		UserID:   uc.UserID,
		Title:    req.Title,
		Notes:    req.Notes,
		XPReward: req.XPReward,
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			handleError(c, err)
			return
		}
		input.DueDate = &due
	}

	task, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	pending, _ := strconv.ParseBool(c.Query("pending"))

	list, err := h.svc.List(c.Request.Context(), uc.UserID, pending)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TaskHandler) Get(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	task, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), uc.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
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

// Complete godoc
// @Summary      Complete a task
// @Description  Terminal transition. Overdue tasks earn half their reward, rounded up.
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} domain.CompletionResult
// @Failure      409 {object} map[string]string "already completed"
// @Security     BearerAuth
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	res, err := h.progression.CompleteTask(c.Request.Context(), uc, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *TaskHandler) Uncomplete(c *gin.Context) {
	uc, ok := userContext(c)
	if !ok {
		return
	}

	handleError(c, h.progression.UncompleteTask(c.Request.Context(), uc, c.Param("id")))
}
