package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

var errDateFormat = errors.New("invalid date format, use YYYY-MM-DD")

// handleError maps the domain taxonomy onto status codes. Anything
// unclassified is attached to the gin context for the request logger and
// reported as a bare 500.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err), errors.Is(err, errDateFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "Data has been modified elsewhere. Please sync.",
		})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func userContext(c *gin.Context) (domain.UserContext, bool) {
	uc, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
	}
	return uc, ok
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// parseDate reads an optional YYYY-MM-DD value; empty yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, errDateFormat
	}
	return t, nil
}
