package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

func TestTaskHandler(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/tasks", `{"title": "File taxes", "xp_reward": 30}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[domain.Task](t, w)

	t.Run("Bad due date is 400", func(t *testing.T) {
		w := api.do(http.MethodPost, "/tasks", `{"title": "x", "due_date": "tomorrow"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Negative reward is 400", func(t *testing.T) {
		w := api.do(http.MethodPost, "/tasks", `{"title": "x", "xp_reward": -1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Complete awards the full reward once", func(t *testing.T) {
		w := api.do(http.MethodPost, "/tasks/"+task.ID+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		res := decode[domain.CompletionResult](t, w)
		assert.Equal(t, int64(30), res.XPDelta)
		require.Len(t, res.Transactions, 1)
		assert.Equal(t, domain.SourceTask, res.Transactions[0].SourceType)

		w = api.do(http.MethodPost, "/tasks/"+task.ID+"/complete", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Uncomplete is refused", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/tasks/"+task.ID+"/complete", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Pending filter hides completed tasks", func(t *testing.T) {
		w := api.do(http.MethodPost, "/tasks", `{"title": "Open task"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = api.do(http.MethodGet, "/tasks?pending=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		tasks := decode[[]domain.Task](t, w)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Open task", tasks[0].Title)

		w = api.do(http.MethodGet, "/tasks", nil)
		assert.Len(t, decode[[]domain.Task](t, w), 2)
	})

	t.Run("Foreign task is 404", func(t *testing.T) {
		w := api.doAs("intruder", http.MethodPost, "/tasks/"+task.ID+"/complete", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
