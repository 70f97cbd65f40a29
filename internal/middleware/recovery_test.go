package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func panicRouter(environment string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Recovery(environment), ErrorHandler(environment))
	router.GET("/boom", func(c *gin.Context) {
		panic("nil owner on property")
	})
	return router
}

func TestRecovery_ExposesStackOutsideProduction(t *testing.T) {
	w := httptest.NewRecorder()
	panicRouter("development").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, "nil owner on property", body["detail"])

	stack, ok := body["stack"].(string)
	assert.True(t, ok)
	assert.Contains(t, stack, "panicRouter")
}

func TestRecovery_HidesStackInProduction(t *testing.T) {
	w := httptest.NewRecorder()
	panicRouter("production").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "stack")
}
