package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

const testUserHeader = "X-Test-User"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *repository.MemoryStore
}

// newTestAPI mounts every handler on an in-memory store. The acting user
// comes from the X-Test-User header instead of a bearer token.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	ledger, err := services.NewLedgerService(store, services.LedgerConfig{})
	require.NoError(t, err)

	progression := services.NewProgressionService(store, ledger)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		userID := c.GetHeader(testUserHeader)
		if userID == "" {
			userID = "user-1"
		}
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextUserKey, &domain.User{ID: userID, Timezone: "UTC", SFXEnabled: true})
		c.Next()
	})

	adapterHTTP.NewHabitHandler(services.NewHabitService(store), progression).RegisterRoutes(api)
	adapterHTTP.NewTaskHandler(services.NewTaskService(store), progression).RegisterRoutes(api)
	adapterHTTP.NewGoalHandler(services.NewGoalService(store), progression).RegisterRoutes(api)
	xp := adapterHTTP.NewXPHandler(ledger, 5)
	xp.RegisterRoutes(api)
	xp.RegisterPublicRoutes(api)
	adapterHTTP.NewFinanceHandler(services.NewFinanceService(store, nil, nil)).RegisterRoutes(api)

	return &testAPI{t: t, router: router, store: store}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	return a.doAs("user-1", method, path, body)
}

func (a *testAPI) doAs(userID, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req, err := http.NewRequest(method, "/api/v1"+path, &buf)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(testUserHeader, userID)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
